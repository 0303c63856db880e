package validation

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/ihsan/internal/challenges"
	"github.com/julianstephens/ihsan/internal/constants"
	errs "github.com/julianstephens/ihsan/internal/errors"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/progress"
	"github.com/julianstephens/ihsan/internal/utils"
)

const (
	MaxHabitTitleLength     = 80
	MaxChallengeTitleLength = 80
	MaxHabitXP              = 100
)

// ConflictType represents the type of consistency problem found in a snapshot
type ConflictType string

const (
	ConflictLevelMismatch      ConflictType = "level_mismatch"
	ConflictNegativeXP         ConflictType = "negative_xp"
	ConflictChallengeBothState ConflictType = "challenge_active_and_completed"
	ConflictUnknownChallenge   ConflictType = "unknown_challenge"
	ConflictDuplicateHabitID   ConflictType = "duplicate_habit_id"
	ConflictInvalidDateKey     ConflictType = "invalid_date_key"
	ConflictUnknownPrayer      ConflictType = "unknown_prayer"
	ConflictInvalidStatus      ConflictType = "invalid_prayer_status"
)

// Conflict represents a detected inconsistency
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD (if applicable)
	Items       []string // ids or names involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// HabitDraft is the user input for a new habit.
type HabitDraft struct {
	Title     string
	Category  models.HabitCategory
	Frequency []time.Weekday
	XP        int
}

// ValidateHabitDraft checks a habit before it is added.
func ValidateHabitDraft(d HabitDraft) error {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", errs.ErrInvalidHabit)
	}
	if len([]rune(title)) > MaxHabitTitleLength {
		return fmt.Errorf("%w: title is longer than %d characters", errs.ErrInvalidHabit, MaxHabitTitleLength)
	}
	if !slices.Contains(models.HabitCategories, d.Category) {
		return fmt.Errorf("%w: unknown category %q", errs.ErrInvalidHabit, d.Category)
	}
	if d.XP <= 0 || d.XP > MaxHabitXP {
		return fmt.Errorf("%w: xp must be between 1 and %d, got %d", errs.ErrInvalidHabit, MaxHabitXP, d.XP)
	}
	seen := make(map[time.Weekday]bool, len(d.Frequency))
	for _, wd := range d.Frequency {
		if wd < time.Sunday || wd > time.Saturday {
			return fmt.Errorf("%w: weekday %d out of range", errs.ErrInvalidHabit, wd)
		}
		if seen[wd] {
			return fmt.Errorf("%w: %s listed twice", errs.ErrInvalidHabit, wd)
		}
		seen[wd] = true
	}
	return nil
}

// ValidateChallengeDraft checks a custom challenge before it is created.
func ValidateChallengeDraft(d challenges.Draft) error {
	if err := challenges.ValidateDraft(d); err != nil {
		return err
	}
	if len([]rune(strings.TrimSpace(d.Title))) > MaxChallengeTitleLength {
		return fmt.Errorf("%w: title is longer than %d characters", errs.ErrInvalidChallenge, MaxChallengeTitleLength)
	}
	return nil
}

// ValidateDateKey checks that day is a real calendar date in YYYY-MM-DD form.
func ValidateDateKey(day string) error {
	if _, err := utils.ParseDateKey(day); err != nil {
		return fmt.Errorf("%w %q, expected YYYY-MM-DD", errs.ErrInvalidDate, day)
	}
	return nil
}

// PrayerName returns the canonical spelling of a prayer name, matched case-insensitively.
func PrayerName(name string) (string, error) {
	for _, p := range constants.PrayerNames {
		if strings.EqualFold(p, strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown prayer %q (expected one of %s)", name, strings.Join(constants.PrayerNames[:], ", "))
}

// ParsePrayerStatus accepts a status as stored ("on_time") or as typed ("on-time", "ontime").
func ParsePrayerStatus(s string) (models.PrayerStatus, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	if norm == "ontime" {
		norm = string(models.PrayerOnTime)
	}
	status := models.PrayerStatus(norm)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", errs.ErrInvalidStatus, s)
	}
	return status, nil
}

// Validator checks stored snapshots for inconsistencies
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateSnapshot reports every inconsistency found in snap.
func (v *Validator) ValidateSnapshot(snap models.Snapshot) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	p := snap.Profile

	if p.XP < 0 {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictNegativeXP,
			Description: fmt.Sprintf("Profile has negative XP: %d", p.XP),
		})
	}
	if want := progress.LevelForXP(max(p.XP, 0)); p.Level != want {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictLevelMismatch,
			Description: fmt.Sprintf("Stored level %d does not match %d XP (expected level %d)", p.Level, p.XP, want),
		})
	}

	for _, id := range sortedKeys(p.ActiveChallenges) {
		if _, done := p.CompletedChallenges[id]; done {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictChallengeBothState,
				Description: fmt.Sprintf("Challenge %q is both active and completed", id),
				Items:       []string{id},
			})
		}
	}
	ids := append(sortedKeys(p.ActiveChallenges), sortedKeys(p.CompletedChallenges)...)
	reported := map[string]bool{}
	for _, id := range ids {
		if reported[id] {
			continue
		}
		if _, ok := challenges.Lookup(p, id); !ok {
			reported[id] = true
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictUnknownChallenge,
				Description: fmt.Sprintf("Challenge %q is tracked but does not exist", id),
				Items:       []string{id},
			})
		}
	}

	habitIDs := map[string]int{}
	for _, h := range snap.Habits {
		habitIDs[h.ID]++
	}
	for _, id := range sortedKeys(habitIDs) {
		if habitIDs[id] > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateHabitID,
				Description: fmt.Sprintf("Habit id %q is used %d times", id, habitIDs[id]),
				Items:       []string{id},
			})
		}
	}

	for _, day := range sortedKeys(snap.HabitLog) {
		if ValidateDateKey(day) != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDateKey,
				Description: fmt.Sprintf("Habit log has an invalid date key %q", day),
				Date:        day,
			})
		}
	}
	for _, day := range sortedKeys(snap.PrayerLog) {
		if ValidateDateKey(day) != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDateKey,
				Description: fmt.Sprintf("Prayer log has an invalid date key %q", day),
				Date:        day,
			})
		}
		entries := snap.PrayerLog[day]
		for _, name := range sortedKeys(entries) {
			if !slices.Contains(constants.PrayerNames[:], name) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictUnknownPrayer,
					Description: fmt.Sprintf("Prayer log on %s has unknown prayer %q", day, name),
					Date:        day,
					Items:       []string{name},
				})
				continue
			}
			if st := entries[name]; !st.Valid() {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictInvalidStatus,
					Description: fmt.Sprintf("Prayer %s on %s has invalid status %q", name, day, st),
					Date:        day,
					Items:       []string{name},
				})
			}
		}
	}

	return result
}

// AutoFix repairs the conflicts it knows how to repair and reports what it did.
// Unknown challenges, bad date keys, unknown prayers and bad statuses are removed;
// a challenge in both states is kept as completed; XP is clamped and the level re-derived.
func AutoFix(snap *models.Snapshot, conflicts []Conflict) []FixAction {
	var actions []FixAction
	for _, c := range conflicts {
		switch c.Type {
		case ConflictNegativeXP:
			snap.Profile.XP = 0
			actions = append(actions, FixAction{Action: "Reset XP to 0", SourceConflict: c})
		case ConflictChallengeBothState:
			delete(snap.Profile.ActiveChallenges, c.Items[0])
			actions = append(actions, FixAction{Action: fmt.Sprintf("Kept %q as completed", c.Items[0]), SourceConflict: c})
		case ConflictUnknownChallenge:
			delete(snap.Profile.ActiveChallenges, c.Items[0])
			delete(snap.Profile.CompletedChallenges, c.Items[0])
			actions = append(actions, FixAction{Action: fmt.Sprintf("Removed unknown challenge %q", c.Items[0]), SourceConflict: c})
		case ConflictInvalidDateKey:
			delete(snap.HabitLog, c.Date)
			delete(snap.PrayerLog, c.Date)
			actions = append(actions, FixAction{Action: fmt.Sprintf("Removed log entries for %q", c.Date), SourceConflict: c})
		case ConflictUnknownPrayer, ConflictInvalidStatus:
			delete(snap.PrayerLog[c.Date], c.Items[0])
			if len(snap.PrayerLog[c.Date]) == 0 {
				delete(snap.PrayerLog, c.Date)
			}
			actions = append(actions, FixAction{Action: fmt.Sprintf("Removed prayer entry %s on %s", c.Items[0], c.Date), SourceConflict: c})
		}
	}
	// Level last, after any XP repair.
	for _, c := range conflicts {
		if c.Type == ConflictLevelMismatch || c.Type == ConflictNegativeXP {
			before := snap.Profile.Level
			progress.Recompute(&snap.Profile)
			if c.Type == ConflictLevelMismatch {
				actions = append(actions, FixAction{
					Action:         fmt.Sprintf("Recomputed level %d -> %d", before, snap.Profile.Level),
					SourceConflict: c,
				})
			}
		}
	}
	return actions
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
