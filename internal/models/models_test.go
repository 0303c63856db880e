package models

import (
	"testing"
	"time"
)

func TestSettingsRoundTripThroughMap(t *testing.T) {
	in := Settings{
		Timezone:             "Asia/Karachi",
		Latitude:             24.8607,
		Longitude:            67.0011,
		CalculationMethod:    1,
		NotificationsEnabled: true,
		SaveDebounceMs:       500,
		UserID:               "amina",
	}

	out, err := MapToSettings(SettingsToMap(in))
	if err != nil {
		t.Fatalf("MapToSettings failed: %v", err)
	}
	if out != in {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}

func TestMapToSettingsRejectsBadNumbers(t *testing.T) {
	if _, err := MapToSettings(map[string]string{"latitude": "north"}); err == nil {
		t.Error("expected error for non-numeric latitude")
	}
	if _, err := MapToSettings(map[string]string{"save_debounce_ms": "soon"}); err == nil {
		t.Error("expected error for non-numeric debounce")
	}
}

func TestApplyDefaultSettings(t *testing.T) {
	s := Settings{}
	ApplyDefaultSettings(&s)
	if s.Timezone != "Local" || s.UserID != "local" || s.SaveDebounceMs != 1500 || s.CalculationMethod != 2 {
		t.Errorf("unexpected defaults: %+v", s)
	}
}

func TestHabitDueOn(t *testing.T) {
	daily := Habit{ID: "h1"}
	if !daily.DueOn(time.Wednesday) {
		t.Error("habit without frequency should be due every day")
	}

	weekly := Habit{ID: "h2", Frequency: []time.Weekday{time.Monday, time.Thursday}}
	if !weekly.DueOn(time.Thursday) {
		t.Error("expected habit to be due on Thursday")
	}
	if weekly.DueOn(time.Friday) {
		t.Error("expected habit not to be due on Friday")
	}
}

func TestPrayerLogStatusDefaultsToNone(t *testing.T) {
	log := PrayerLog{"2025-03-01": {"Fajr": PrayerOnTime}}
	if got := log.Status("2025-03-01", "Fajr"); got != PrayerOnTime {
		t.Errorf("expected on_time, got %s", got)
	}
	if got := log.Status("2025-03-01", "Isha"); got != PrayerNone {
		t.Errorf("expected none for missing prayer, got %s", got)
	}
	if got := log.Status("2025-03-02", "Fajr"); got != PrayerNone {
		t.Errorf("expected none for missing day, got %s", got)
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	snap := NewSnapshot()
	snap.Habits = append(snap.Habits, Habit{ID: "h1", Frequency: []time.Weekday{time.Monday}})
	snap.HabitLog["2025-03-01"] = map[string]bool{"h1": true}
	snap.PrayerLog["2025-03-01"] = map[string]PrayerStatus{"Fajr": PrayerLate}
	snap.Profile.ActiveChallenges["c1"] = time.Now()

	clone := snap.Clone()
	clone.Habits[0].Frequency[0] = time.Sunday
	clone.HabitLog["2025-03-01"]["h1"] = false
	clone.PrayerLog["2025-03-01"]["Fajr"] = PrayerMissed
	delete(clone.Profile.ActiveChallenges, "c1")

	if snap.Habits[0].Frequency[0] != time.Monday {
		t.Error("clone shares habit frequency with original")
	}
	if !snap.HabitLog["2025-03-01"]["h1"] {
		t.Error("clone shares habit log with original")
	}
	if snap.PrayerLog["2025-03-01"]["Fajr"] != PrayerLate {
		t.Error("clone shares prayer log with original")
	}
	if _, ok := snap.Profile.ActiveChallenges["c1"]; !ok {
		t.Error("clone shares active challenges with original")
	}
}
