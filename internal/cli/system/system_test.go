package system

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/julianstephens/ihsan/internal/cli"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/storage"
	"github.com/julianstephens/ihsan/internal/storage/sqlite"
)

func setupTestSQLiteStore(t *testing.T) (*cli.Context, *sqlite.Store) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return &cli.Context{Store: store}, store
}

func seedSnapshot(t *testing.T, store storage.Provider, user string, xp, level int) {
	t.Helper()
	snap := models.NewSnapshot()
	snap.Profile.XP = xp
	snap.Profile.Level = level
	snap.Habits = []models.Habit{{ID: "h1", Title: "Read Quran", Category: models.HabitCategoryDeen, XP: 10}}
	snap.HabitLog["2026-03-09"] = map[string]bool{"h1": true}
	if err := store.SaveSnapshot(context.Background(), user, snap); err != nil {
		t.Fatalf("failed to seed snapshot: %v", err)
	}
}
