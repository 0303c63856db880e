package models

import (
	"maps"
	"slices"
	"time"
)

// Snapshot is the full per-user document exchanged with persistence.
type Snapshot struct {
	Profile   UserProfile `json:"profile" firestore:"profile"`
	Habits    []Habit     `json:"habits" firestore:"habits"`
	HabitLog  HabitLog    `json:"habit_log" firestore:"habitLog"`
	PrayerLog PrayerLog   `json:"prayer_log" firestore:"prayerLog"`
}

// NewSnapshot returns the state of a user who has never logged anything.
func NewSnapshot() Snapshot {
	return Snapshot{
		Profile:   NewProfile(),
		Habits:    []Habit{},
		HabitLog:  make(HabitLog),
		PrayerLog: make(PrayerLog),
	}
}

// Normalize initializes nil collections so callers can write into them.
func (s *Snapshot) Normalize() {
	s.Profile.EnsureMaps()
	if s.Habits == nil {
		s.Habits = []Habit{}
	}
	if s.HabitLog == nil {
		s.HabitLog = make(HabitLog)
	}
	if s.PrayerLog == nil {
		s.PrayerLog = make(PrayerLog)
	}
}

// Clone returns a deep copy that shares no maps or slices with s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Profile: UserProfile{
			XP:                  s.Profile.XP,
			Level:               s.Profile.Level,
			ActiveChallenges:    cloneTimes(s.Profile.ActiveChallenges),
			CompletedChallenges: cloneTimes(s.Profile.CompletedChallenges),
			CustomChallenges:    slices.Clone(s.Profile.CustomChallenges),
		},
		Habits:    make([]Habit, len(s.Habits)),
		HabitLog:  make(HabitLog, len(s.HabitLog)),
		PrayerLog: make(PrayerLog, len(s.PrayerLog)),
	}
	for i, h := range s.Habits {
		h.Frequency = slices.Clone(h.Frequency)
		out.Habits[i] = h
	}
	for day, entries := range s.HabitLog {
		out.HabitLog[day] = maps.Clone(entries)
	}
	for day, entries := range s.PrayerLog {
		out.PrayerLog[day] = maps.Clone(entries)
	}
	out.Normalize()
	return out
}

// FindHabit returns the habit with the given id.
func (s Snapshot) FindHabit(id string) (Habit, bool) {
	for _, h := range s.Habits {
		if h.ID == id {
			return h, true
		}
	}
	return Habit{}, false
}

func cloneTimes(m map[string]time.Time) map[string]time.Time {
	if m == nil {
		return make(map[string]time.Time)
	}
	return maps.Clone(m)
}
