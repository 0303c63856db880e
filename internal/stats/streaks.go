package stats

import (
	"slices"

	"github.com/julianstephens/ihsan/internal/ledger"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/utils"
)

// HabitStreak counts consecutive due days, ending at today, on which the habit
// was completed. Days the habit is not due are skipped. An unfinished today
// does not break the streak.
func HabitStreak(h models.Habit, log models.HabitLog, today string) (int, error) {
	earliest := earliestKey(keys(log))
	return streak(today, earliest, func(day string) (counts, done bool) {
		if !ledger.IsDue(h, day) {
			return false, false
		}
		return true, log.Done(day, h.ID)
	})
}

// PrayerStreak counts consecutive days, ending at today, on which all five
// prayers were prayed on time or late. An unfinished today does not break the streak.
func PrayerStreak(log models.PrayerLog, today string) (int, error) {
	earliest := earliestKey(keys(log))
	return streak(today, earliest, func(day string) (counts, done bool) {
		for _, s := range ledger.DayStatuses(log, day) {
			if !s.Performed() {
				return true, false
			}
		}
		return true, true
	})
}

// streak walks backwards from today until a counted day is not done or the
// walk passes the earliest logged day.
func streak(today, earliest string, check func(day string) (counts, done bool)) (int, error) {
	if earliest == "" {
		return 0, nil
	}
	if _, err := utils.ParseDateKey(today); err != nil {
		return 0, err
	}

	n := 0
	day := today
	for day >= earliest {
		counts, done := check(day)
		if counts {
			if done {
				n++
			} else if day != today {
				break
			}
		}
		prev, err := utils.AddDays(day, -1)
		if err != nil {
			return 0, err
		}
		day = prev
	}
	return n, nil
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func earliestKey(ks []string) string {
	valid := slices.DeleteFunc(ks, func(k string) bool {
		_, err := utils.ParseDateKey(k)
		return err != nil
	})
	if len(valid) == 0 {
		return ""
	}
	return slices.Min(valid)
}
