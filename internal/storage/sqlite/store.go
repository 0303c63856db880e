package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/ihsan/internal/logger"
	"github.com/julianstephens/ihsan/internal/migration"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/storage"
	"github.com/julianstephens/ihsan/internal/storage/sqlstore"
	"github.com/julianstephens/ihsan/migrations"
)

type Store struct {
	path string
	db   *sql.DB
	q    *sqlstore.Store
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) open() error {
	// The busy timeout lets a debounced save wait out a concurrent CLI write.
	db, err := sql.Open("sqlite", s.path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	s.q = sqlstore.New(db, migration.SQLite)
	return nil
}

func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if _, err := s.Migrate(func(msg string) { logger.Info(msg) }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if _, err := s.q.GetSettings(); err != nil {
		if err := s.q.SaveSettings(models.DefaultSettings()); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return storage.ErrNotInitialized
	}
	if err := s.open(); err != nil {
		return err
	}
	return s.runner().Validate()
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db, s.q = nil, nil
		return err
	}
	return nil
}

func (s *Store) runner() *migration.Runner {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		// The embedded tree is fixed at build time.
		panic(fmt.Sprintf("sqlite migrations missing from build: %v", err))
	}
	return migration.NewRunner(s.db, sub, migration.SQLite)
}

// Migrate applies pending schema migrations and returns how many ran.
func (s *Store) Migrate(logFn func(string)) (int, error) {
	if s.db == nil {
		return 0, storage.ErrNotInitialized
	}
	return s.runner().Apply(logFn)
}

// MigrationStatus reports the applied and latest schema versions.
func (s *Store) MigrationStatus() (migration.Status, error) {
	if s.db == nil {
		return migration.Status{}, storage.ErrNotInitialized
	}
	return s.runner().Status()
}

func (s *Store) GetSettings() (models.Settings, error) {
	if s.q == nil {
		return models.Settings{}, storage.ErrNotInitialized
	}
	return s.q.GetSettings()
}

func (s *Store) SaveSettings(settings models.Settings) error {
	if s.q == nil {
		return storage.ErrNotInitialized
	}
	return s.q.SaveSettings(settings)
}

func (s *Store) LoadSnapshot(ctx context.Context, userID string) (models.Snapshot, error) {
	if s.q == nil {
		return models.Snapshot{}, storage.ErrNotInitialized
	}
	return s.q.LoadSnapshot(ctx, userID)
}

func (s *Store) SaveSnapshot(ctx context.Context, userID string, snap models.Snapshot) error {
	if s.q == nil {
		return storage.ErrNotInitialized
	}
	return s.q.SaveSnapshot(ctx, userID, snap)
}

func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	if s.q == nil {
		return nil, storage.ErrNotInitialized
	}
	return s.q.ListUsers(ctx)
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection, or nil before Init/Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}
