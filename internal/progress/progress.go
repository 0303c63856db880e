// Package progress derives levels and progress-bar values from cumulative XP.
//
// Level N is entered at (N-1)^2*100 XP and left at N^2*100 XP, so the level is a
// pure function of XP and is recomputed on every mutation instead of being stored
// as independent state.
package progress

import (
	"math"

	"github.com/julianstephens/ihsan/internal/constants"
	"github.com/julianstephens/ihsan/internal/models"
)

// View is the read-only progress summary shown on dashboards.
type View struct {
	XP            int `json:"xp"`
	Level         int `json:"level"`
	Percent       int `json:"percent"`
	NextThreshold int `json:"next_threshold"`
}

// LevelForXP returns floor(sqrt(xp/100)) + 1. Negative XP is treated as 0.
func LevelForXP(xp int) int {
	if xp <= 0 {
		return 1
	}
	// floor(sqrt(x)) == floor(sqrt(floor(x))) for x >= 0, so integer division is exact here.
	return isqrt(xp/constants.XPPerLevelUnit) + 1
}

// LevelBounds returns the XP at which level is entered and left.
func LevelBounds(level int) (lo, hi int) {
	if level < 1 {
		level = 1
	}
	lo = (level - 1) * (level - 1) * constants.XPPerLevelUnit
	hi = level * level * constants.XPPerLevelUnit
	return lo, hi
}

// ApplyXPDelta adds delta to the profile's XP, clamps at zero, and re-derives the level.
// It returns true when the level increased.
func ApplyXPDelta(p *models.UserProfile, delta int) bool {
	if p == nil {
		return false
	}
	before := p.Level
	p.XP = max(0, p.XP+delta)
	p.Level = LevelForXP(p.XP)
	return p.Level > before
}

// Recompute re-derives the level from XP, repairing any stored value that drifted.
func Recompute(p *models.UserProfile) {
	if p == nil {
		return
	}
	p.XP = max(0, p.XP)
	p.Level = LevelForXP(p.XP)
}

// LevelProgressPercent returns how far the profile is through its current level, in [0,100].
func LevelProgressPercent(p models.UserProfile) int {
	lo, hi := LevelBounds(p.Level)
	span := hi - lo
	if span == 0 {
		return 0
	}
	ratio := float64(p.XP-lo) / float64(span)
	ratio = math.Min(1, math.Max(0, ratio))
	return int(math.Round(ratio * 100))
}

// NextLevelThreshold returns the XP needed to leave the current level.
func NextLevelThreshold(p models.UserProfile) int {
	return p.Level * p.Level * constants.XPPerLevelUnit
}

// Summarize builds the dashboard view for a profile.
func Summarize(p models.UserProfile) View {
	return View{
		XP:            p.XP,
		Level:         p.Level,
		Percent:       LevelProgressPercent(p),
		NextThreshold: NextLevelThreshold(p),
	}
}

func isqrt(n int) int {
	r := int(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}
