// internal/preferences/store.go
package preferences

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"meter-print-service/internal/model"
	"meter-print-service/internal/repository"
)

// Persisted preference keys
const (
	KeyAddress = "zpl:bt:addr"
	KeyWidth   = "zpl:pw:dots"
)

// Store keeps the default printer address and print width across restarts
type Store struct {
	repo   repository.PreferenceRepository
	logger *zap.Logger
}

// NewStore creates a preference store
func NewStore(repo repository.PreferenceRepository, logger *zap.Logger) *Store {
	return &Store{
		repo:   repo,
		logger: logger.With(zap.String("component", "preferences")),
	}
}

// NormalizeWidth maps any number to a usable print width
func NormalizeWidth(n float64) int {
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return model.DefaultPrintWidth
	}
	w := math.Floor(n)
	if w < model.MinPrintWidth {
		return model.MinPrintWidth
	}
	if w > model.MaxPrintWidth {
		return model.MaxPrintWidth
	}
	return int(w)
}

// ParseWidth converts user input to a number; non-numeric text yields NaN
func ParseWidth(raw string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

// Width returns the persisted width, or the default when it is missing or unreadable
func (s *Store) Width(ctx context.Context) int {
	raw, found, err := s.repo.Get(ctx, KeyWidth)
	if err != nil {
		s.logger.Warn("Failed to read print width, using default", zap.Error(err))
		return model.DefaultPrintWidth
	}
	if !found {
		return model.DefaultPrintWidth
	}
	return NormalizeWidth(ParseWidth(raw))
}

// SetWidth normalizes and persists n, returning the stored value
func (s *Store) SetWidth(ctx context.Context, n float64) (int, error) {
	w := NormalizeWidth(n)
	if err := s.repo.Set(ctx, KeyWidth, strconv.Itoa(w)); err != nil {
		return 0, fmt.Errorf("failed to save print width: %w", err)
	}
	s.logger.Info("Print width saved", zap.Int("width", w))
	return w, nil
}

// SavedAddress returns the default printer address if a valid one is stored
func (s *Store) SavedAddress(ctx context.Context) (string, bool) {
	addr, found, err := s.repo.Get(ctx, KeyAddress)
	if err != nil {
		s.logger.Warn("Failed to read saved printer address", zap.Error(err))
		return "", false
	}
	if !found || !model.IsValidMAC(addr) {
		return "", false
	}
	return addr, true
}

// SaveAddress stores addr as the default printer. Malformed addresses are ignored.
func (s *Store) SaveAddress(ctx context.Context, addr string) error {
	if !model.IsValidMAC(addr) {
		return nil
	}
	if err := s.repo.Set(ctx, KeyAddress, addr); err != nil {
		return fmt.Errorf("failed to save printer address: %w", err)
	}
	return nil
}

// ForgetAddress removes the default printer
func (s *Store) ForgetAddress(ctx context.Context) error {
	if err := s.repo.Delete(ctx, KeyAddress); err != nil {
		return fmt.Errorf("failed to forget printer address: %w", err)
	}
	s.logger.Info("Saved printer forgotten")
	return nil
}

// All returns every stored preference row
func (s *Store) All(ctx context.Context) ([]*repository.Preference, error) {
	prefs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	return prefs, nil
}
