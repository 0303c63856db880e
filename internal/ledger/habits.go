// Package ledger records per-day habit completions and prayer statuses and
// reports the XP delta each change produces. Callers apply the delta to the
// profile in the same step as the ledger write.
package ledger

import (
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/utils"
)

// ToggleHabit flips the completion flag for (day, habitID) and returns the new
// value with its XP delta: +xp when marking done, -xp when unmarking.
// The day's entry is created on first use. The habit id is not checked against
// the active habit list so entries for deleted habits stay valid.
func ToggleHabit(log models.HabitLog, day, habitID string, xp int) (done bool, xpDelta int) {
	entries, ok := log[day]
	if !ok {
		entries = make(map[string]bool)
		log[day] = entries
	}

	done = !entries[habitID]
	entries[habitID] = done
	if done {
		return true, xp
	}
	return false, -xp
}

// IsDue reports whether a habit should be offered on the given day.
// Invalid date keys are treated as due so nothing is hidden by a bad key.
func IsDue(h models.Habit, day string) bool {
	wd, err := utils.WeekdayOf(day)
	if err != nil {
		return true
	}
	return h.DueOn(wd)
}

// DueHabits filters habits down to those due on day, preserving order.
func DueHabits(habits []models.Habit, day string) []models.Habit {
	due := make([]models.Habit, 0, len(habits))
	for _, h := range habits {
		if IsDue(h, day) {
			due = append(due, h)
		}
	}
	return due
}
