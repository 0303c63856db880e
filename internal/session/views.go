package session

import (
	"slices"

	"github.com/julianstephens/ihsan/internal/challenges"
	"github.com/julianstephens/ihsan/internal/constants"
	errs "github.com/julianstephens/ihsan/internal/errors"
	"github.com/julianstephens/ihsan/internal/ledger"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/progress"
	"github.com/julianstephens/ihsan/internal/stats"
)

// view runs fn against the loaded snapshot under the lock.
func (s *Session) view(fn func(snap *models.Snapshot)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return errs.ErrMissingProfile
	}
	fn(s.snap)
	return nil
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() (models.Snapshot, error) {
	var out models.Snapshot
	err := s.view(func(snap *models.Snapshot) { out = snap.Clone() })
	return out, err
}

// Progress returns the level summary for the profile.
func (s *Session) Progress() (progress.View, error) {
	var v progress.View
	err := s.view(func(snap *models.Snapshot) { v = progress.Summarize(snap.Profile) })
	return v, err
}

// CompletionRate returns the day's completion percentage.
func (s *Session) CompletionRate(day string) (int, error) {
	var rate int
	err := s.view(func(snap *models.Snapshot) {
		rate = stats.DailyCompletionRate(day, snap.Habits, snap.HabitLog, snap.PrayerLog)
	})
	return rate, err
}

// Summary returns the day's completion counts.
func (s *Session) Summary(day string) (stats.DailySummary, error) {
	var sum stats.DailySummary
	err := s.view(func(snap *models.Snapshot) {
		sum = stats.Summarize(day, snap.Habits, snap.HabitLog, snap.PrayerLog)
	})
	return sum, err
}

// HabitStatus is a due habit with its completion state for one day.
type HabitStatus struct {
	Habit models.Habit `json:"habit"`
	Done  bool         `json:"done"`
}

// DueHabits lists the habits offered on day, in the user's order.
func (s *Session) DueHabits(day string) ([]HabitStatus, error) {
	var out []HabitStatus
	err := s.view(func(snap *models.Snapshot) {
		due := ledger.DueHabits(snap.Habits, day)
		out = make([]HabitStatus, len(due))
		for i, h := range due {
			h.Frequency = slices.Clone(h.Frequency)
			out[i] = HabitStatus{Habit: h, Done: snap.HabitLog.Done(day, h.ID)}
		}
	})
	return out, err
}

// PrayerStatuses returns the status of each of the five prayers on day.
func (s *Session) PrayerStatuses(day string) (map[string]models.PrayerStatus, error) {
	var out map[string]models.PrayerStatus
	err := s.view(func(snap *models.Snapshot) {
		out = make(map[string]models.PrayerStatus, constants.PrayerCount)
		for _, name := range constants.PrayerNames {
			out[name] = snap.PrayerLog.Status(day, name)
		}
	})
	return out, err
}

// ChallengeBoard lists every challenge with its lifecycle state.
func (s *Session) ChallengeBoard() ([]challenges.Entry, error) {
	var out []challenges.Entry
	err := s.view(func(snap *models.Snapshot) { out = challenges.Board(snap.Profile) })
	return out, err
}
