// internal/repository/preference_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"meter-print-service/internal/database"
	"meter-print-service/internal/utils"
)

// preferenceRepository implements PreferenceRepository over database/sql.
// Queries use $N placeholders, accepted by both sqlite3 and lib/pq.
type preferenceRepository struct {
	db     *database.DB
	logger *utils.ServiceLogger
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *database.DB, logger *zap.Logger) PreferenceRepository {
	return &preferenceRepository{
		db:     db,
		logger: utils.NewServiceLogger(logger, "preference-repository"),
	}
}

// Get retrieves a preference value by key
func (r *preferenceRepository) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM printer_preferences WHERE pref_key = $1`

	start := time.Now()
	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.LogDatabaseQuery(query, time.Since(start), nil)
		return "", false, nil
	}
	r.logger.LogDatabaseQuery(query, time.Since(start), err)
	if err != nil {
		return "", false, fmt.Errorf("failed to get preference %s: %w", key, err)
	}
	return value, true, nil
}

// Set inserts or replaces a preference value
func (r *preferenceRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO printer_preferences (pref_key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (pref_key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at
	`

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query, key, value, start.UTC())
	r.logger.LogDatabaseQuery(query, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to set preference %s: %w", key, err)
	}

	r.logger.Debug("Preference saved", zap.String("key", key))
	return nil
}

// Delete removes a preference; deleting a missing key is not an error
func (r *preferenceRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM printer_preferences WHERE pref_key = $1`

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query, key)
	r.logger.LogDatabaseQuery(query, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to delete preference %s: %w", key, err)
	}
	return nil
}

// List returns every stored preference ordered by key
func (r *preferenceRepository) List(ctx context.Context) ([]*Preference, error) {
	query := `SELECT pref_key, value, updated_at FROM printer_preferences ORDER BY pref_key`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	defer rows.Close()

	var prefs []*Preference
	for rows.Next() {
		p := &Preference{}
		if err := rows.Scan(&p.Key, &p.Value, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate preferences: %w", err)
	}
	return prefs, nil
}
