package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/storage"
)

func setupTestSQLiteStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleSnapshot() models.Snapshot {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := models.NewSnapshot()
	snap.Profile.XP = 420
	snap.Profile.Level = 3
	snap.Profile.ActiveChallenges["quran-juz"] = created
	snap.Profile.CompletedChallenges["charity-secret"] = created.Add(time.Hour)
	snap.Profile.CustomChallenges = []models.Challenge{{
		ID: "custom-1", Title: "Memorize Al-Mulk", XP: 250, Icon: "⭐",
		Category: models.ChallengeCategoryFaith, Difficulty: models.DifficultyHard, IsCustom: true,
	}}
	snap.Habits = []models.Habit{
		{ID: "h1", Title: "Read Quran", Category: models.HabitCategoryDeen, XP: 15, CreatedAt: created},
		{ID: "h2", Title: "Gym", Category: models.HabitCategoryHealth, XP: 10, CreatedAt: created,
			Frequency: []time.Weekday{time.Monday, time.Thursday}},
	}
	snap.HabitLog["2026-03-09"] = map[string]bool{"h1": true, "h2": false}
	snap.PrayerLog["2026-03-09"] = map[string]models.PrayerStatus{
		"Fajr": models.PrayerOnTime, "Asr": models.PrayerMissed,
	}
	return snap
}

func TestInitCreatesDefaults(t *testing.T) {
	store := setupTestSQLiteStore(t)

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings != models.DefaultSettings() {
		t.Errorf("expected default settings, got %+v", settings)
	}

	st, err := store.MigrationStatus()
	if err != nil {
		t.Fatalf("MigrationStatus failed: %v", err)
	}
	if !st.UpToDate() || st.Current == 0 {
		t.Errorf("expected fully migrated schema, got %+v", st)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	store := setupTestSQLiteStore(t)
	settings, _ := store.GetSettings()
	settings.Latitude = 33.6844
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	if err := store.Init(); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	got, _ := store.GetSettings()
	if got.Latitude != 33.6844 {
		t.Errorf("second Init overwrote settings: %+v", got)
	}
}

func TestLoadBeforeInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); !errors.Is(err, storage.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if _, err := store.LoadSnapshot(context.Background(), "u"); !errors.Is(err, storage.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	store := setupTestSQLiteStore(t)

	want := models.Settings{
		Timezone:             "Asia/Karachi",
		Latitude:             24.8607,
		Longitude:            67.0011,
		CalculationMethod:    1,
		NotificationsEnabled: false,
		SaveDebounceMs:       500,
		UserID:               "amina",
	}
	if err := store.SaveSettings(want); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	got, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := setupTestSQLiteStore(t)
	ctx := context.Background()

	if _, err := store.LoadSnapshot(ctx, "amina"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for new user, got %v", err)
	}

	want := sampleSnapshot()
	if err := store.SaveSnapshot(ctx, "amina", want); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	got, err := store.LoadSnapshot(ctx, "amina")
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if got.Profile.XP != 420 || got.Profile.Level != 3 {
		t.Errorf("profile = %+v", got.Profile)
	}
	if !got.Profile.ActiveChallenges["quran-juz"].Equal(want.Profile.ActiveChallenges["quran-juz"]) {
		t.Errorf("active challenges = %v", got.Profile.ActiveChallenges)
	}
	if _, ok := got.Profile.CompletedChallenges["charity-secret"]; !ok {
		t.Errorf("completed challenges = %v", got.Profile.CompletedChallenges)
	}
	if len(got.Profile.CustomChallenges) != 1 || !got.Profile.CustomChallenges[0].IsCustom {
		t.Errorf("custom challenges = %+v", got.Profile.CustomChallenges)
	}
	if len(got.Habits) != 2 || got.Habits[0].ID != "h1" || got.Habits[1].ID != "h2" {
		t.Fatalf("habits = %+v", got.Habits)
	}
	if len(got.Habits[1].Frequency) != 2 || got.Habits[1].Frequency[1] != time.Thursday {
		t.Errorf("frequency = %v", got.Habits[1].Frequency)
	}
	if !got.HabitLog.Done("2026-03-09", "h1") || got.HabitLog.Done("2026-03-09", "h2") {
		t.Errorf("habit log = %v", got.HabitLog)
	}
	if got.PrayerLog.Status("2026-03-09", "Fajr") != models.PrayerOnTime ||
		got.PrayerLog.Status("2026-03-09", "Asr") != models.PrayerMissed {
		t.Errorf("prayer log = %v", got.PrayerLog)
	}
}

func TestSaveSnapshotMergesLogDays(t *testing.T) {
	store := setupTestSQLiteStore(t)
	ctx := context.Background()

	if err := store.SaveSnapshot(ctx, "amina", sampleSnapshot()); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	// A later snapshot that only carries a new day, and clears Asr on the old day.
	next := sampleSnapshot()
	next.HabitLog = models.HabitLog{"2026-03-10": {"h1": true}}
	next.PrayerLog = models.PrayerLog{"2026-03-09": {"Fajr": models.PrayerOnTime}}
	if err := store.SaveSnapshot(ctx, "amina", next); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	got, err := store.LoadSnapshot(ctx, "amina")
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if !got.HabitLog.Done("2026-03-09", "h1") {
		t.Error("days absent from the snapshot should be kept")
	}
	if !got.HabitLog.Done("2026-03-10", "h1") {
		t.Error("new day should be written")
	}
	if s := got.PrayerLog.Status("2026-03-09", "Asr"); s != models.PrayerNone {
		t.Errorf("cleared prayer should read as none, got %s", s)
	}
}

func TestListUsers(t *testing.T) {
	store := setupTestSQLiteStore(t)
	ctx := context.Background()

	for _, id := range []string{"zaid", "amina"} {
		if err := store.SaveSnapshot(ctx, id, models.NewSnapshot()); err != nil {
			t.Fatalf("SaveSnapshot(%s) failed: %v", id, err)
		}
	}
	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 || users[0] != "amina" || users[1] != "zaid" {
		t.Errorf("users = %v", users)
	}
}

func TestReopenValidatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.SaveSnapshot(context.Background(), "amina", sampleSnapshot()); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	store.Close()

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.LoadSnapshot(context.Background(), "amina"); err != nil {
		t.Fatalf("LoadSnapshot after reopen failed: %v", err)
	}
}
