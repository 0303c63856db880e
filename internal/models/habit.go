package models

import (
	"slices"
	"time"
)

// HabitCategory groups habits on the dashboard
type HabitCategory string

const (
	HabitCategoryDeen         HabitCategory = "deen"
	HabitCategoryHealth       HabitCategory = "health"
	HabitCategoryProductivity HabitCategory = "productivity"
	HabitCategoryGeneral      HabitCategory = "general"
)

// HabitCategories lists the known habit categories in display order.
var HabitCategories = []HabitCategory{
	HabitCategoryDeen,
	HabitCategoryHealth,
	HabitCategoryProductivity,
	HabitCategoryGeneral,
}

// Habit represents a recurring practice to track
type Habit struct {
	ID        string         `json:"id" firestore:"id"`
	Title     string         `json:"title" firestore:"title"`
	Category  HabitCategory  `json:"category" firestore:"category"`
	Frequency []time.Weekday `json:"frequency,omitempty" firestore:"frequency,omitempty"` // empty means every day
	XP        int            `json:"xp" firestore:"xp"`
	CreatedAt time.Time      `json:"created_at" firestore:"createdAt"`
}

// IsDaily reports whether the habit is due on every day of the week.
func (h Habit) IsDaily() bool {
	return len(h.Frequency) == 0
}

// DueOn reports whether the habit is offered on the given weekday.
func (h Habit) DueOn(wd time.Weekday) bool {
	return h.IsDaily() || slices.Contains(h.Frequency, wd)
}

// HabitLog maps a date key (YYYY-MM-DD) to the completion state of each habit on that day.
type HabitLog map[string]map[string]bool

// Done reports whether the habit was completed on the given day. Missing entries read as false.
func (l HabitLog) Done(day, habitID string) bool {
	return l[day][habitID]
}
