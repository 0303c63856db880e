// Package storage defines the persistence contract for user snapshots and
// settings, and the JSON file backend. SQL and document backends live in
// subpackages.
package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/ihsan/internal/models"
)

var (
	// ErrNotFound is returned by LoadSnapshot when the user has no saved state.
	ErrNotFound = errors.New("snapshot not found")
	// ErrNotInitialized is returned when the backing store has not been created yet.
	ErrNotInitialized = errors.New("storage not initialized, run 'ihsan init' first")
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Snapshots
	LoadSnapshot(ctx context.Context, userID string) (models.Snapshot, error)
	// SaveSnapshot writes the full snapshot for userID. Log days present in
	// snap replace the stored days; days absent from snap are left alone.
	SaveSnapshot(ctx context.Context, userID string, snap models.Snapshot) error
	ListUsers(ctx context.Context) ([]string, error)

	// Utils
	GetConfigPath() string
}
