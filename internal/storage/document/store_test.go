package document

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/storage"
)

func TestIsConfig(t *testing.T) {
	assert.True(t, IsConfig("firestore://my-project"))
	assert.False(t, IsConfig("postgres://localhost"))
	assert.False(t, IsConfig("~/.config/ihsan/ihsan.db"))
	assert.Equal(t, "firestore://my-project", New("firestore://my-project").GetConfigPath())
}

func TestMergeUpdatePaths(t *testing.T) {
	snap := models.NewSnapshot()
	snap.HabitLog["2026-03-10"] = map[string]bool{"h1": true}
	snap.HabitLog["2026-03-09"] = map[string]bool{"h1": false}
	snap.PrayerLog["2026-03-10"] = map[string]models.PrayerStatus{"Fajr": models.PrayerLate}

	data, paths := mergeUpdate(snap)

	assert.Equal(t, []firestore.FieldPath{
		{"profile"}, {"habits"}, {"updatedAt"},
		{"habitLog", "2026-03-09"}, {"habitLog", "2026-03-10"},
		{"prayerLog", "2026-03-10"},
	}, paths)

	habitLog, ok := data["habitLog"].(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, habitLog, 2)
	assert.Contains(t, data, "profile")
	assert.Contains(t, data, "prayerLog")
}

func TestMergeUpdateEmptySnapshot(t *testing.T) {
	data, paths := mergeUpdate(models.Snapshot{})
	assert.Len(t, paths, 3)
	assert.NotContains(t, data, "habitLog")
	assert.NotContains(t, data, "prayerLog")
}

func TestStoreBeforeLoad(t *testing.T) {
	s := New("firestore://p")
	_, err := s.LoadSnapshot(context.Background(), "u")
	assert.True(t, errors.Is(err, storage.ErrNotInitialized))
	assert.NoError(t, s.Close())
}

func TestConnectRequiresProject(t *testing.T) {
	err := New("firestore://").Load()
	assert.Error(t, err)
}

// TestStoreEmulator runs against the Firestore emulator when FIRESTORE_EMULATOR_HOST is set.
func TestStoreEmulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set, skipping Firestore emulator test")
	}

	s := New("firestore://ihsan-test")
	require.NoError(t, s.Init())
	defer s.Close()

	ctx := context.Background()
	userID := "emu-" + time.Now().Format("150405.000000")

	_, err := s.LoadSnapshot(ctx, userID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	snap := models.NewSnapshot()
	snap.Profile.XP = 150
	snap.Profile.Level = 2
	snap.PrayerLog["2026-03-10"] = map[string]models.PrayerStatus{"Fajr": models.PrayerOnTime, "Asr": models.PrayerLate}
	require.NoError(t, s.SaveSnapshot(ctx, userID, snap))

	snap.PrayerLog["2026-03-10"] = map[string]models.PrayerStatus{"Fajr": models.PrayerOnTime}
	require.NoError(t, s.SaveSnapshot(ctx, userID, snap))

	got, err := s.LoadSnapshot(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 150, got.Profile.XP)
	assert.Equal(t, models.PrayerNone, got.PrayerLog.Status("2026-03-10", "Asr"))

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Contains(t, users, userID)
}
