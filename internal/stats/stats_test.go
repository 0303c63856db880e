package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/ihsan/internal/models"
)

// 2026-03-10 is a Tuesday.
const tuesday = "2026-03-10"

func habit(id string, days ...time.Weekday) models.Habit {
	return models.Habit{ID: id, Title: id, Category: models.HabitCategoryDeen, Frequency: days, XP: 10}
}

func TestDailyCompletionRateExample(t *testing.T) {
	habits := []models.Habit{habit("quran"), habit("walk")}
	habitLog := models.HabitLog{tuesday: {"quran": true}}
	prayerLog := models.PrayerLog{tuesday: {
		"Fajr":  models.PrayerOnTime,
		"Dhuhr": models.PrayerOnTime,
		"Asr":   models.PrayerLate,
	}}

	// (1 + 3) / (2 + 5) = 57.14
	assert.Equal(t, 57, DailyCompletionRate(tuesday, habits, habitLog, prayerLog))
}

func TestDailyCompletionRate(t *testing.T) {
	allPrayers := map[string]models.PrayerStatus{
		"Fajr": models.PrayerOnTime, "Dhuhr": models.PrayerOnTime, "Asr": models.PrayerOnTime,
		"Maghrib": models.PrayerLate, "Isha": models.PrayerLate,
	}

	tests := []struct {
		name      string
		habits    []models.Habit
		habitLog  models.HabitLog
		prayerLog models.PrayerLog
		want      int
	}{
		{
			name: "empty day",
			want: 0,
		},
		{
			name:      "all prayers no habits",
			prayerLog: models.PrayerLog{tuesday: allPrayers},
			want:      100,
		},
		{
			name:      "missed prayers do not count",
			prayerLog: models.PrayerLog{tuesday: {"Fajr": models.PrayerMissed, "Isha": models.PrayerOnTime}},
			want:      20,
		},
		{
			name:     "habits not due today are ignored",
			habits:   []models.Habit{habit("friday-only", time.Friday), habit("daily")},
			habitLog: models.HabitLog{tuesday: {"daily": true, "friday-only": true}},
			want:     17, // 1 / 6
		},
		{
			name:      "everything done",
			habits:    []models.Habit{habit("a"), habit("b", time.Tuesday)},
			habitLog:  models.HabitLog{tuesday: {"a": true, "b": true}},
			prayerLog: models.PrayerLog{tuesday: allPrayers},
			want:      100,
		},
		{
			name:      "unknown prayer names are not counted",
			prayerLog: models.PrayerLog{tuesday: {"Witr": models.PrayerOnTime}},
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DailyCompletionRate(tuesday, tt.habits, tt.habitLog, tt.prayerLog)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestSummarize(t *testing.T) {
	habits := []models.Habit{habit("a"), habit("b")}
	s := Summarize(tuesday, habits, models.HabitLog{tuesday: {"b": true}}, models.PrayerLog{tuesday: {
		"Fajr": models.PrayerOnTime, "Asr": models.PrayerLate, "Isha": models.PrayerMissed,
	}})

	assert.Equal(t, DailySummary{
		Date:          tuesday,
		DueHabits:     2,
		DoneHabits:    1,
		PrayersDone:   2,
		PrayersOnTime: 1,
		PrayersLate:   1,
		PrayersMissed: 1,
		Rate:          43, // 3 / 7
	}, s)
}

func TestRateSeries(t *testing.T) {
	prayerLog := models.PrayerLog{
		"2026-03-08": {"Fajr": models.PrayerOnTime},
		tuesday:      {"Fajr": models.PrayerOnTime, "Dhuhr": models.PrayerOnTime},
	}

	series, err := RateSeries(tuesday, 3, nil, nil, prayerLog)
	require.NoError(t, err)
	assert.Equal(t, []RatePoint{
		{Date: "2026-03-08", Rate: 20},
		{Date: "2026-03-09", Rate: 0},
		{Date: tuesday, Rate: 40},
	}, series)
	assert.Equal(t, 20, AverageRate(series))

	empty, err := RateSeries(tuesday, 0, nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, 0, AverageRate(empty))

	_, err = RateSeries("03/10/2026", 2, nil, nil, nil)
	assert.Error(t, err)
}

func TestHabitStreak(t *testing.T) {
	daily := habit("daily")
	log := models.HabitLog{
		"2026-03-06": {"daily": true},
		"2026-03-08": {"daily": true},
		"2026-03-09": {"daily": true},
	}

	// today (Tuesday) not done yet: streak is still 2
	n, err := HabitStreak(daily, log, tuesday)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	log[tuesday] = map[string]bool{"daily": true}
	n, err = HabitStreak(daily, log, tuesday)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestHabitStreakSkipsNonDueDays(t *testing.T) {
	// Mondays and Tuesdays only
	h := habit("gym", time.Monday, time.Tuesday)
	log := models.HabitLog{
		"2026-03-02": {"gym": true}, // Mon
		"2026-03-03": {"gym": true}, // Tue
		"2026-03-09": {"gym": true}, // Mon
		tuesday:      {"gym": true},
	}

	n, err := HabitStreak(h, log, tuesday)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestHabitStreakEmpty(t *testing.T) {
	n, err := HabitStreak(habit("x"), models.HabitLog{}, tuesday)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPrayerStreak(t *testing.T) {
	full := func() map[string]models.PrayerStatus {
		return map[string]models.PrayerStatus{
			"Fajr": models.PrayerOnTime, "Dhuhr": models.PrayerLate, "Asr": models.PrayerOnTime,
			"Maghrib": models.PrayerOnTime, "Isha": models.PrayerOnTime,
		}
	}
	partial := full()
	partial["Isha"] = models.PrayerMissed

	log := models.PrayerLog{
		"2026-03-07": full(),
		"2026-03-08": partial,
		"2026-03-09": full(),
		tuesday:      {"Fajr": models.PrayerOnTime},
	}

	n, err := PrayerStreak(log, tuesday)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = PrayerStreak(log, "not-a-date")
	assert.Error(t, err)
}
