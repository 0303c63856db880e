// Package session owns one user's gamification state. It sequences the pure
// ledger, challenge and progress functions under a lock and mirrors every
// change to a storage.Provider through a debounced save.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/ihsan/internal/constants"
	errs "github.com/julianstephens/ihsan/internal/errors"
	"github.com/julianstephens/ihsan/internal/logger"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/notifier"
	"github.com/julianstephens/ihsan/internal/progress"
	"github.com/julianstephens/ihsan/internal/scheduler"
	"github.com/julianstephens/ihsan/internal/storage"
	"github.com/julianstephens/ihsan/internal/utils"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Observer receives gamification events, e.g. for metrics.
type Observer interface {
	XPChanged(source string, delta int)
	LeveledUp(level int)
	SaveFailed(err error)
}

// Result describes the profile after a mutation.
type Result struct {
	XPDelta   int  `json:"xp_delta"`
	XP        int  `json:"xp"`
	Level     int  `json:"level"`
	LeveledUp bool `json:"leveled_up"`
	Done      bool `json:"done,omitempty"` // habit toggles only
}

// Session is the explicit state container for one signed-in user.
type Session struct {
	store    storage.Provider
	clock    Clock
	loc      *time.Location
	debounce time.Duration
	notifier notifier.Sender
	observer Observer
	newID    func() string

	mu      sync.Mutex
	userID  string
	snap    *models.Snapshot
	saver   *scheduler.Debouncer
	lastErr error

	notifyWG sync.WaitGroup
}

type Option func(*Session)

func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithDebounce sets the quiet period before a pending save is written.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) { s.debounce = d }
}

// WithNotifier enables level-up and challenge notifications.
func WithNotifier(n notifier.Sender) Option {
	return func(s *Session) { s.notifier = n }
}

func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

// WithIDGenerator sets the source of habit and custom challenge ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) { s.newID = fn }
}

// WithLocation sets the timezone that decides which calendar day "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Session) { s.loc = loc }
}

// New creates a session backed by store. No profile is loaded yet.
func New(store storage.Provider, opts ...Option) *Session {
	s := &Session{
		store:    store,
		clock:    systemClock{},
		loc:      time.Local,
		debounce: constants.DefaultSaveDebounce,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load signs userID in. A user with no stored snapshot starts fresh and the
// new profile is saved. The stored level is ignored and re-derived from XP.
func (s *Session) Load(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("user id is required")
	}
	if s.Loaded() {
		if err := s.SignOut(ctx); err != nil {
			logger.Warn("Failed to save previous user before switching", "error", err)
		}
	}

	snap, err := s.store.LoadSnapshot(ctx, userID)
	fresh := false
	switch {
	case errors.Is(err, storage.ErrNotFound):
		snap = models.NewSnapshot()
		fresh = true
	case err != nil:
		return &errs.PersistenceError{Op: "load", UserID: userID, Err: err}
	}
	snap.Normalize()
	progress.Recompute(&snap.Profile)

	saver := scheduler.NewDebouncer(s.debounce, s.saveTask(userID), scheduler.WithErrorHandler(func(err error) {
		logger.Error("Failed to save profile", "user", userID, "error", err)
	}))

	s.mu.Lock()
	s.userID = userID
	s.snap = &snap
	s.saver = saver
	s.lastErr = nil
	s.mu.Unlock()

	logger.Debug("Session loaded", "user", userID, "xp", snap.Profile.XP, "level", snap.Profile.Level, "fresh", fresh)
	if fresh {
		saver.Trigger()
	}
	return nil
}

// saveTask writes a copy of the state taken when the save runs, so the newest
// state always wins.
func (s *Session) saveTask(userID string) scheduler.Task {
	return func(ctx context.Context) error {
		s.mu.Lock()
		if s.snap == nil || s.userID != userID {
			s.mu.Unlock()
			return nil
		}
		snap := s.snap.Clone()
		s.mu.Unlock()

		err := s.store.SaveSnapshot(ctx, userID, snap)
		if err != nil {
			err = &errs.PersistenceError{Op: "save", UserID: userID, Err: err}
			if s.observer != nil {
				s.observer.SaveFailed(err)
			}
		} else {
			logger.Debug("Profile saved", "user", userID, "xp", snap.Profile.XP)
		}

		s.mu.Lock()
		if s.userID == userID {
			s.lastErr = err
		}
		s.mu.Unlock()
		return err
	}
}

// SignOut writes any pending change and clears the in-memory state.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	saver, user := s.saver, s.userID
	s.mu.Unlock()
	if saver == nil {
		return nil
	}

	err := saver.Stop(ctx)

	s.mu.Lock()
	if s.userID == user {
		s.userID = ""
		s.snap = nil
		s.saver = nil
	}
	s.mu.Unlock()
	logger.Debug("Session signed out", "user", user)
	return err
}

// Flush writes any pending change now.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	saver := s.saver
	s.mu.Unlock()
	if saver == nil {
		return nil
	}
	return saver.Flush(ctx)
}

// Close signs out and waits for outstanding notifications.
func (s *Session) Close(ctx context.Context) error {
	err := s.SignOut(ctx)
	s.notifyWG.Wait()
	return err
}

// LastSaveError returns the error of the most recent save, or nil once a
// later save succeeded.
func (s *Session) LastSaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Loaded reports whether a profile is signed in.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap != nil
}

// UserID returns the signed-in user, or "" when signed out.
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Today returns the current date key in the session's timezone.
func (s *Session) Today() string {
	return utils.DateKey(s.clock.Now().In(s.loc))
}

func (s *Session) notify(text string) {
	if s.notifier == nil {
		return
	}
	s.notifyWG.Add(1)
	go func() {
		defer s.notifyWG.Done()
		if err := s.notifier.Notify(text); err != nil {
			logger.Debug("Notification not delivered", "error", err)
		}
	}()
}
