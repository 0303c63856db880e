package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/julianstephens/ihsan/internal/models"
)

func setupTestJSONStore(t *testing.T) (*JSONStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ihsan.json")
	store := NewJSONStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	return store, path
}

func TestJSONStoreLoadMissing(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "missing.json"))
	if err := store.Load(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestJSONStoreSettings(t *testing.T) {
	store, path := setupTestJSONStore(t)

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings != models.DefaultSettings() {
		t.Errorf("expected defaults, got %+v", settings)
	}

	settings.Timezone = "Europe/London"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	reopened := NewJSONStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got, _ := reopened.GetSettings()
	if got.Timezone != "Europe/London" {
		t.Errorf("timezone not persisted: %+v", got)
	}
}

func TestJSONStoreSnapshots(t *testing.T) {
	store, path := setupTestJSONStore(t)
	ctx := context.Background()

	if _, err := store.LoadSnapshot(ctx, "amina"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	snap := models.NewSnapshot()
	snap.Profile.XP = 120
	snap.Profile.Level = 2
	snap.HabitLog["2026-03-09"] = map[string]bool{"h1": true}
	snap.PrayerLog["2026-03-09"] = map[string]models.PrayerStatus{"Fajr": models.PrayerOnTime}
	if err := store.SaveSnapshot(ctx, "amina", snap); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	snap.HabitLog["2026-03-09"]["h1"] = false

	next := models.NewSnapshot()
	next.Profile.XP = 140
	next.HabitLog["2026-03-10"] = map[string]bool{"h1": true}
	if err := store.SaveSnapshot(ctx, "amina", next); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	reopened := NewJSONStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got, err := reopened.LoadSnapshot(ctx, "amina")
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if got.Profile.XP != 140 {
		t.Errorf("xp = %d, want 140", got.Profile.XP)
	}
	if !got.HabitLog.Done("2026-03-09", "h1") || !got.HabitLog.Done("2026-03-10", "h1") {
		t.Errorf("habit log days should merge, got %v", got.HabitLog)
	}
	if got.PrayerLog.Status("2026-03-09", "Fajr") != models.PrayerOnTime {
		t.Errorf("prayer log day should be kept, got %v", got.PrayerLog)
	}

	users, err := reopened.ListUsers(ctx)
	if err != nil || len(users) != 1 || users[0] != "amina" {
		t.Errorf("ListUsers = %v, %v", users, err)
	}
}
