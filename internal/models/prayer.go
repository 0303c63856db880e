package models

// PrayerStatus is the logged outcome of a single prayer on a given day.
type PrayerStatus string

const (
	PrayerNone   PrayerStatus = "none"
	PrayerOnTime PrayerStatus = "on_time"
	PrayerLate   PrayerStatus = "late"
	PrayerMissed PrayerStatus = "missed"
)

// PrayerStatuses lists every status in the order they are offered to the user.
var PrayerStatuses = []PrayerStatus{PrayerNone, PrayerOnTime, PrayerLate, PrayerMissed}

// Valid reports whether s is a known status.
func (s PrayerStatus) Valid() bool {
	switch s {
	case PrayerNone, PrayerOnTime, PrayerLate, PrayerMissed:
		return true
	}
	return false
}

// Performed reports whether the prayer counts as done for completion metrics.
func (s PrayerStatus) Performed() bool {
	return s == PrayerOnTime || s == PrayerLate
}

// Label returns a short human-readable form of the status.
func (s PrayerStatus) Label() string {
	switch s {
	case PrayerOnTime:
		return "on time"
	case PrayerLate:
		return "late"
	case PrayerMissed:
		return "missed"
	default:
		return "not logged"
	}
}

// PrayerLog maps a date key (YYYY-MM-DD) to the status of each prayer on that day.
type PrayerLog map[string]map[string]PrayerStatus

// Status returns the logged status for a prayer. Absent entries are PrayerNone.
func (l PrayerLog) Status(day, prayer string) PrayerStatus {
	if s, ok := l[day][prayer]; ok && s != "" {
		return s
	}
	return PrayerNone
}

// PrayerTime is the display time of one prayer on a given day.
type PrayerTime struct {
	Name string `json:"name"`
	Time string `json:"time"` // HH:MM, or a placeholder when unknown
}
