// Package challenges manages the per-user challenge lifecycle:
// available -> active -> completed -> (reset) -> available.
//
// Completion awards the challenge XP once. Reset does not take it back; a
// restarted challenge is a fresh attempt, not an undo.
package challenges

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/ihsan/internal/constants"
	errs "github.com/julianstephens/ihsan/internal/errors"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/progress"
)

// Draft holds the user-supplied fields of a new custom challenge.
type Draft struct {
	Title       string
	Description string
	XP          int
	Icon        string
	Category    models.ChallengeCategory
	Difficulty  models.ChallengeDifficulty
	Duration    string
}

// IDGenerator produces ids for custom challenges.
type IDGenerator func() string

// NewID is the default IDGenerator.
func NewID() string {
	return "custom-" + uuid.New().String()
}

// All returns the built-in catalog followed by the profile's custom challenges.
func All(p models.UserProfile) []models.Challenge {
	out := Catalog()
	return append(out, p.CustomChallenges...)
}

// Lookup finds a challenge by id among built-ins and the profile's custom challenges.
func Lookup(p models.UserProfile, id string) (models.Challenge, bool) {
	for _, c := range catalog {
		if c.ID == id {
			return c, true
		}
	}
	for _, c := range p.CustomChallenges {
		if c.ID == id {
			return c, true
		}
	}
	return models.Challenge{}, false
}

// StateOf reports where challenge id sits for this profile.
func StateOf(p models.UserProfile, id string) models.ChallengeState {
	if _, ok := p.ActiveChallenges[id]; ok {
		return models.ChallengeActive
	}
	if _, ok := p.CompletedChallenges[id]; ok {
		return models.ChallengeCompleted
	}
	return models.ChallengeAvailable
}

// Start moves an available challenge to active.
func Start(p *models.UserProfile, id string, now time.Time) error {
	if _, ok := Lookup(*p, id); !ok {
		return fmt.Errorf("%w: %s", errs.ErrChallengeNotFound, id)
	}
	if state := StateOf(*p, id); state != models.ChallengeAvailable {
		return errs.Transitionf("cannot start challenge %q: it is %s", id, state)
	}
	p.EnsureMaps()
	p.ActiveChallenges[id] = now
	return nil
}

// Complete moves an active challenge to completed and awards its XP.
// It returns the XP awarded and whether the award crossed a level boundary.
func Complete(p *models.UserProfile, id string, now time.Time) (awarded int, leveledUp bool, err error) {
	c, ok := Lookup(*p, id)
	if !ok {
		return 0, false, fmt.Errorf("%w: %s", errs.ErrChallengeNotFound, id)
	}
	if state := StateOf(*p, id); state != models.ChallengeActive {
		return 0, false, errs.Transitionf("cannot complete challenge %q: it is %s", id, state)
	}
	p.EnsureMaps()
	delete(p.ActiveChallenges, id)
	p.CompletedChallenges[id] = now
	leveledUp = progress.ApplyXPDelta(p, c.XP)
	return c.XP, leveledUp, nil
}

// Reset makes a completed challenge available again. Awarded XP is kept.
func Reset(p *models.UserProfile, id string) error {
	if state := StateOf(*p, id); state != models.ChallengeCompleted {
		return errs.Transitionf("cannot reset challenge %q: it is %s", id, state)
	}
	delete(p.CompletedChallenges, id)
	return nil
}

// ValidateDraft checks a custom challenge draft.
func ValidateDraft(d Draft) error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", errs.ErrInvalidChallenge)
	}
	if d.XP < constants.MinCustomChallengeXP || d.XP > constants.MaxCustomChallengeXP {
		return fmt.Errorf("%w: xp must be between %d and %d, got %d",
			errs.ErrInvalidChallenge, constants.MinCustomChallengeXP, constants.MaxCustomChallengeXP, d.XP)
	}
	switch d.Category {
	case models.ChallengeCategoryFaith, models.ChallengeCategoryCommunity, models.ChallengeCategorySelf:
	default:
		return fmt.Errorf("%w: unknown category %q", errs.ErrInvalidChallenge, d.Category)
	}
	switch d.Difficulty {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
	default:
		return fmt.Errorf("%w: unknown difficulty %q", errs.ErrInvalidChallenge, d.Difficulty)
	}
	return nil
}

// CreateCustom validates d and appends it to the profile as a custom challenge.
func CreateCustom(p *models.UserProfile, d Draft, newID IDGenerator) (models.Challenge, error) {
	if err := ValidateDraft(d); err != nil {
		return models.Challenge{}, err
	}
	if newID == nil {
		newID = NewID
	}

	id := newID()
	for {
		if _, taken := Lookup(*p, id); !taken {
			break
		}
		id = NewID()
	}

	icon := d.Icon
	if icon == "" {
		icon = "⭐"
	}
	c := models.Challenge{
		ID:          id,
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		XP:          d.XP,
		Icon:        icon,
		Category:    d.Category,
		Difficulty:  d.Difficulty,
		Duration:    strings.TrimSpace(d.Duration),
		IsCustom:    true,
	}
	p.EnsureMaps()
	p.CustomChallenges = append(p.CustomChallenges, c)
	return c, nil
}

// DeleteCustom removes a custom challenge that is neither active nor completed.
func DeleteCustom(p *models.UserProfile, id string) error {
	if isBuiltIn(id) {
		return errs.Transitionf("challenge %q is built in and cannot be deleted", id)
	}
	idx := -1
	for i, c := range p.CustomChallenges {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", errs.ErrChallengeNotFound, id)
	}
	if state := StateOf(*p, id); state != models.ChallengeAvailable {
		return errs.Transitionf("cannot delete challenge %q while it is %s; reset it first", id, state)
	}
	p.CustomChallenges = append(p.CustomChallenges[:idx], p.CustomChallenges[idx+1:]...)
	return nil
}

// Entry pairs a challenge with its lifecycle state for display.
type Entry struct {
	Challenge   models.Challenge      `json:"challenge"`
	State       models.ChallengeState `json:"state"`
	StartedAt   *time.Time            `json:"started_at,omitempty"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
}

// Board lists every challenge with its state for this profile.
func Board(p models.UserProfile) []Entry {
	all := All(p)
	out := make([]Entry, len(all))
	for i, c := range all {
		e := Entry{Challenge: c, State: StateOf(p, c.ID)}
		if t, ok := p.ActiveChallenges[c.ID]; ok {
			e.StartedAt = &t
		}
		if t, ok := p.CompletedChallenges[c.ID]; ok {
			e.CompletedAt = &t
		}
		out[i] = e
	}
	return out
}
