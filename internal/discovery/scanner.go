// internal/discovery/scanner.go
package discovery

import (
	"context"

	"go.uber.org/zap"

	"meter-print-service/internal/bluetooth"
	"meter-print-service/internal/model"
)

// Scanner lists printers the platform already trusts
type Scanner struct {
	gate     *bluetooth.Gate
	provider *bluetooth.Provider
	logger   *zap.Logger
}

// NewScanner creates a new scanner
func NewScanner(gate *bluetooth.Gate, provider *bluetooth.Provider, logger *zap.Logger) *Scanner {
	return &Scanner{
		gate:     gate,
		provider: provider,
		logger:   logger.With(zap.String("component", "discovery")),
	}
}

// Scan returns bonded devices. No inquiry is run, so Found is always empty.
func (s *Scanner) Scan(ctx context.Context) (model.ScanResult, error) {
	if err := s.gate.EnsureReady(ctx); err != nil {
		return model.ScanResult{}, err
	}

	adapter, err := s.provider.Adapter(ctx)
	if err != nil {
		return model.ScanResult{}, err
	}

	paired, err := adapter.BondedDevices(ctx)
	if err != nil {
		return model.ScanResult{}, model.NewPrintError(model.ErrBluetoothUnavailable, "failed to list bonded devices", err)
	}
	if paired == nil {
		paired = []model.RawDevice{}
	}

	s.logger.Info("Scan completed", zap.Int("paired", len(paired)))
	return model.ScanResult{Paired: paired, Found: []model.RawDevice{}}, nil
}
