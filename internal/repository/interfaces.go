// internal/repository/interfaces.go
package repository

import (
	"context"
	"time"
)

// PreferenceRepository defines key/value access for printer preferences
type PreferenceRepository interface {
	// Get returns the stored value; found is false when the key is absent
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]*Preference, error)
}

// Preference is a single stored key/value row
type Preference struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
