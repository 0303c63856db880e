package ledger

import (
	"fmt"

	"github.com/julianstephens/ihsan/internal/constants"
	errs "github.com/julianstephens/ihsan/internal/errors"
	"github.com/julianstephens/ihsan/internal/models"
)

// Weight is the absolute XP a prayer slot contributes while it holds status s.
func Weight(s models.PrayerStatus) int {
	switch s {
	case models.PrayerOnTime:
		return constants.PrayerWeightOnTime
	case models.PrayerLate:
		return constants.PrayerWeightLate
	case models.PrayerMissed:
		return constants.PrayerWeightMissed
	default:
		return constants.PrayerWeightNone
	}
}

// SetPrayerStatus records status for (day, prayer) and returns the XP delta.
//
// Re-selecting the current status is a no-op with a zero delta. Any real change
// yields Weight(new) - Weight(current), so the XP attributed to a slot always
// equals the weight of its current status no matter how often it changed.
func SetPrayerStatus(log models.PrayerLog, day, prayer string, status models.PrayerStatus) (xpDelta int, changed bool, err error) {
	if !status.Valid() {
		return 0, false, fmt.Errorf("%w: %q", errs.ErrInvalidStatus, status)
	}

	current := log.Status(day, prayer)
	if current == status {
		return 0, false, nil
	}

	entries, ok := log[day]
	if !ok {
		entries = make(map[string]models.PrayerStatus)
		log[day] = entries
	}
	if status == models.PrayerNone {
		delete(entries, prayer)
	} else {
		entries[prayer] = status
	}

	return Weight(status) - Weight(current), true, nil
}

// DayStatuses returns the status of every fixed prayer on day, in prayer order.
func DayStatuses(log models.PrayerLog, day string) []models.PrayerStatus {
	out := make([]models.PrayerStatus, len(constants.PrayerNames))
	for i, name := range constants.PrayerNames {
		out[i] = log.Status(day, name)
	}
	return out
}

// AttributedXP is the net XP the ledger currently credits for a day.
func AttributedXP(log models.PrayerLog, day string) int {
	total := 0
	for _, s := range log[day] {
		total += Weight(s)
	}
	return total
}
