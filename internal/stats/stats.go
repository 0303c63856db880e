// Package stats computes read-only completion metrics over the habit and prayer ledgers.
package stats

import (
	"math"

	"github.com/julianstephens/ihsan/internal/constants"
	"github.com/julianstephens/ihsan/internal/ledger"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/utils"
)

// DailySummary holds the counts behind a day's completion rate.
type DailySummary struct {
	Date          string `json:"date"`
	DueHabits     int    `json:"due_habits"`
	DoneHabits    int    `json:"done_habits"`
	PrayersDone   int    `json:"prayers_done"`
	PrayersOnTime int    `json:"prayers_on_time"`
	PrayersLate   int    `json:"prayers_late"`
	PrayersMissed int    `json:"prayers_missed"`
	Rate          int    `json:"rate"`
}

// RatePoint is one day of a RateSeries.
type RatePoint struct {
	Date string `json:"date"`
	Rate int    `json:"rate"`
}

// Summarize tallies due habits and prayers for day.
func Summarize(day string, habits []models.Habit, habitLog models.HabitLog, prayerLog models.PrayerLog) DailySummary {
	s := DailySummary{Date: day}
	for _, h := range ledger.DueHabits(habits, day) {
		s.DueHabits++
		if habitLog.Done(day, h.ID) {
			s.DoneHabits++
		}
	}
	for _, status := range ledger.DayStatuses(prayerLog, day) {
		switch status {
		case models.PrayerOnTime:
			s.PrayersOnTime++
		case models.PrayerLate:
			s.PrayersLate++
		case models.PrayerMissed:
			s.PrayersMissed++
		}
	}
	s.PrayersDone = s.PrayersOnTime + s.PrayersLate
	s.Rate = rate(s.DoneHabits+s.PrayersDone, s.DueHabits+constants.PrayerCount)
	return s
}

// DailyCompletionRate is the percentage of due habits and the five prayers
// completed on day. Late prayers count as done; missed ones do not.
func DailyCompletionRate(day string, habits []models.Habit, habitLog models.HabitLog, prayerLog models.PrayerLog) int {
	return Summarize(day, habits, habitLog, prayerLog).Rate
}

// RateSeries returns the completion rate for the given number of days ending at end, oldest first.
func RateSeries(end string, days int, habits []models.Habit, habitLog models.HabitLog, prayerLog models.PrayerLog) ([]RatePoint, error) {
	if days <= 0 {
		return []RatePoint{}, nil
	}
	out := make([]RatePoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day, err := utils.AddDays(end, -i)
		if err != nil {
			return nil, err
		}
		out = append(out, RatePoint{Date: day, Rate: DailyCompletionRate(day, habits, habitLog, prayerLog)})
	}
	return out, nil
}

// AverageRate returns the rounded mean of a series, or 0 when it is empty.
func AverageRate(points []RatePoint) int {
	if len(points) == 0 {
		return 0
	}
	total := 0
	for _, p := range points {
		total += p.Rate
	}
	return int(math.Round(float64(total) / float64(len(points))))
}

func rate(done, total int) int {
	if total <= 0 {
		return 0
	}
	r := math.Round(float64(done) / float64(total) * 100)
	return int(math.Max(0, math.Min(100, r)))
}
