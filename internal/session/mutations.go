package session

import (
	"fmt"
	"slices"
	"strings"

	"github.com/julianstephens/ihsan/internal/challenges"
	errs "github.com/julianstephens/ihsan/internal/errors"
	"github.com/julianstephens/ihsan/internal/ledger"
	"github.com/julianstephens/ihsan/internal/logger"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/notifier"
	"github.com/julianstephens/ihsan/internal/progress"
	"github.com/julianstephens/ihsan/internal/validation"
)

// XP sources reported to the Observer.
const (
	SourceHabit     = "habit"
	SourcePrayer    = "prayer"
	SourceChallenge = "challenge"
)

type outcome struct {
	delta   int    // XP requested by the operation
	awarded bool   // XP already applied by the operation itself
	dirty   bool   // state changed and needs saving
	source  string // XP source for observers
	message string // notification text, if any
	done    bool
}

// apply runs fn against the loaded snapshot, applies its XP delta and
// schedules a save. The ledger change and the XP change happen under one lock.
func (s *Session) apply(op string, fn func(snap *models.Snapshot) (outcome, error)) (Result, error) {
	s.mu.Lock()
	if s.snap == nil {
		s.mu.Unlock()
		return Result{}, errs.ErrMissingProfile
	}
	p := &s.snap.Profile
	before := p.Level

	o, err := fn(s.snap)
	if err != nil {
		s.mu.Unlock()
		return Result{}, err
	}
	if !o.awarded && o.delta != 0 {
		progress.ApplyXPDelta(p, o.delta)
	}
	res := Result{XPDelta: o.delta, XP: p.XP, Level: p.Level, LeveledUp: p.Level > before, Done: o.done}
	user, saver := s.userID, s.saver
	s.mu.Unlock()

	if o.dirty {
		saver.Trigger()
	}
	log := logger.ForUser(user)
	log.Debug("Applied "+op, "delta", res.XPDelta, "xp", res.XP, "level", res.Level)

	if s.observer != nil && o.delta != 0 {
		s.observer.XPChanged(o.source, o.delta)
	}
	if o.message != "" {
		s.notify(o.message)
	}
	if res.LeveledUp {
		log.Info("Level up", "level", res.Level)
		if s.observer != nil {
			s.observer.LeveledUp(res.Level)
		}
		s.notify(notifier.LevelUpMessage(res.Level))
	}
	return res, nil
}

// AddHabit validates d and appends a new habit.
func (s *Session) AddHabit(d validation.HabitDraft) (models.Habit, error) {
	if err := validation.ValidateHabitDraft(d); err != nil {
		return models.Habit{}, err
	}
	var habit models.Habit
	_, err := s.apply("add habit", func(snap *models.Snapshot) (outcome, error) {
		habit = models.Habit{
			ID:        s.uniqueHabitID(snap),
			Title:     strings.TrimSpace(d.Title),
			Category:  d.Category,
			Frequency: slices.Clone(d.Frequency),
			XP:        d.XP,
			CreatedAt: s.clock.Now().UTC(),
		}
		slices.Sort(habit.Frequency)
		snap.Habits = append(snap.Habits, habit)
		return outcome{dirty: true}, nil
	})
	return habit, err
}

func (s *Session) uniqueHabitID(snap *models.Snapshot) string {
	for {
		id := s.newID()
		if _, taken := snap.FindHabit(id); !taken {
			return id
		}
	}
}

// DeleteHabit removes a habit. Its log entries and the XP they earned stay.
func (s *Session) DeleteHabit(id string) error {
	_, err := s.apply("delete habit", func(snap *models.Snapshot) (outcome, error) {
		i := slices.IndexFunc(snap.Habits, func(h models.Habit) bool { return h.ID == id })
		if i < 0 {
			return outcome{}, fmt.Errorf("%w: %s", errs.ErrHabitNotFound, id)
		}
		snap.Habits = slices.Delete(snap.Habits, i, i+1)
		return outcome{dirty: true}, nil
	})
	return err
}

// ToggleHabit flips the completion of habitID on day and moves XP by the habit's value.
func (s *Session) ToggleHabit(day, habitID string) (Result, error) {
	if err := validation.ValidateDateKey(day); err != nil {
		return Result{}, err
	}
	return s.apply("habit toggle", func(snap *models.Snapshot) (outcome, error) {
		h, ok := snap.FindHabit(habitID)
		if !ok {
			return outcome{}, fmt.Errorf("%w: %s", errs.ErrHabitNotFound, habitID)
		}
		done, delta := ledger.ToggleHabit(snap.HabitLog, day, h.ID, h.XP)
		return outcome{delta: delta, dirty: true, source: SourceHabit, done: done}, nil
	})
}

// SetPrayerStatus records a prayer outcome. Re-selecting the current status
// changes nothing and is not saved.
func (s *Session) SetPrayerStatus(day, prayer string, status models.PrayerStatus) (Result, error) {
	if err := validation.ValidateDateKey(day); err != nil {
		return Result{}, err
	}
	name, err := validation.PrayerName(prayer)
	if err != nil {
		return Result{}, err
	}
	return s.apply("prayer status", func(snap *models.Snapshot) (outcome, error) {
		delta, changed, err := ledger.SetPrayerStatus(snap.PrayerLog, day, name, status)
		if err != nil {
			return outcome{}, err
		}
		return outcome{delta: delta, dirty: changed, source: SourcePrayer}, nil
	})
}

// StartChallenge moves a challenge from available to active.
func (s *Session) StartChallenge(id string) error {
	_, err := s.apply("challenge start", func(snap *models.Snapshot) (outcome, error) {
		if err := challenges.Start(&snap.Profile, id, s.clock.Now().UTC()); err != nil {
			return outcome{}, err
		}
		return outcome{dirty: true}, nil
	})
	return err
}

// CompleteChallenge finishes an active challenge and awards its XP once.
func (s *Session) CompleteChallenge(id string) (Result, error) {
	return s.apply("challenge complete", func(snap *models.Snapshot) (outcome, error) {
		c, _ := challenges.Lookup(snap.Profile, id)
		awarded, _, err := challenges.Complete(&snap.Profile, id, s.clock.Now().UTC())
		if err != nil {
			return outcome{}, err
		}
		return outcome{
			delta:   awarded,
			awarded: true,
			dirty:   true,
			source:  SourceChallenge,
			message: notifier.ChallengeCompletedMessage(c.Title, awarded),
		}, nil
	})
}

// ResetChallenge makes a completed challenge available again. XP is kept.
func (s *Session) ResetChallenge(id string) error {
	_, err := s.apply("challenge reset", func(snap *models.Snapshot) (outcome, error) {
		if err := challenges.Reset(&snap.Profile, id); err != nil {
			return outcome{}, err
		}
		return outcome{dirty: true}, nil
	})
	return err
}

// CreateCustomChallenge adds a user-defined challenge.
func (s *Session) CreateCustomChallenge(d challenges.Draft) (models.Challenge, error) {
	if err := validation.ValidateChallengeDraft(d); err != nil {
		return models.Challenge{}, err
	}
	var created models.Challenge
	_, err := s.apply("challenge create", func(snap *models.Snapshot) (outcome, error) {
		c, err := challenges.CreateCustom(&snap.Profile, d, func() string { return "custom-" + s.newID() })
		if err != nil {
			return outcome{}, err
		}
		created = c
		return outcome{dirty: true}, nil
	})
	return created, err
}

// DeleteCustomChallenge removes a custom challenge that is not in progress.
func (s *Session) DeleteCustomChallenge(id string) error {
	_, err := s.apply("challenge delete", func(snap *models.Snapshot) (outcome, error) {
		if err := challenges.DeleteCustom(&snap.Profile, id); err != nil {
			return outcome{}, err
		}
		return outcome{dirty: true}, nil
	})
	return err
}
