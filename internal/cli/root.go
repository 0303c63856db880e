package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/ihsan/internal/backup"
	"github.com/julianstephens/ihsan/internal/constants"
	"github.com/julianstephens/ihsan/internal/logger"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/notifier"
	"github.com/julianstephens/ihsan/internal/session"
	"github.com/julianstephens/ihsan/internal/storage"
	"github.com/julianstephens/ihsan/internal/storage/sqlite"
	"github.com/julianstephens/ihsan/internal/utils"
)

type Context struct {
	Store    storage.Provider
	UserID   string // --user; empty means the user_id setting
	Notifier notifier.Sender

	settings *models.Settings
	sess     *session.Session
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors.
// Only SQLite files are backed up.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Settings returns the stored settings with defaults applied.
func (c *Context) Settings() (models.Settings, error) {
	if c.settings != nil {
		return *c.settings, nil
	}
	s, err := c.Store.GetSettings()
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	models.ApplyDefaultSettings(&s)
	c.settings = &s
	return s, nil
}

// InvalidateSettings drops the cached settings after they were changed.
func (c *Context) InvalidateSettings() {
	c.settings = nil
}

// Location returns the configured timezone, falling back to local time.
func (c *Context) Location() *time.Location {
	s, err := c.Settings()
	if err != nil {
		return time.Local
	}
	loc, err := utils.LoadLocation(s.Timezone)
	if err != nil {
		logger.Warn("Invalid timezone setting, using local time", "timezone", s.Timezone, "error", err)
		return time.Local
	}
	return loc
}

// Today returns today's date key in the configured timezone.
func (c *Context) Today() string {
	return utils.DateKey(time.Now().In(c.Location()))
}

// ResolveUser returns the user the command acts for.
func (c *Context) ResolveUser() string {
	if c.UserID != "" {
		return c.UserID
	}
	if s, err := c.Settings(); err == nil && s.UserID != "" {
		return s.UserID
	}
	return constants.DefaultUserID
}

// Session loads the session for the resolved user on first use.
func (c *Context) Session(ctx context.Context) (*session.Session, error) {
	if c.sess != nil {
		return c.sess, nil
	}
	settings, err := c.Settings()
	if err != nil {
		return nil, err
	}

	opts := []session.Option{
		session.WithLocation(c.Location()),
		session.WithDebounce(time.Duration(settings.SaveDebounceMs) * time.Millisecond),
	}
	if settings.NotificationsEnabled && c.Notifier != nil {
		opts = append(opts, session.WithNotifier(c.Notifier))
	}
	sess := session.New(c.Store, opts...)
	if err := sess.Load(ctx, c.ResolveUser()); err != nil {
		return nil, err
	}
	c.sess = sess
	return sess, nil
}

// Close writes any pending session changes.
func (c *Context) Close(ctx context.Context) error {
	if c.sess == nil {
		return nil
	}
	err := c.sess.Close(ctx)
	c.sess = nil
	return err
}

// ResolveDate turns a --date flag into a date key. Empty and "today" mean today.
func (c *Context) ResolveDate(date string) (string, error) {
	if date == "" || date == "today" {
		return c.Today(), nil
	}
	if _, err := utils.ParseDateKey(date); err != nil {
		return "", fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD or 'today')", date)
	}
	return date, nil
}

// FormatResult renders the XP outcome of a mutation for terminal output.
func FormatResult(r session.Result) string {
	s := fmt.Sprintf("%+d XP (total %d, level %d)", r.XPDelta, r.XP, r.Level)
	if r.LeveledUp {
		s += fmt.Sprintf(" - level up! You reached level %d", r.Level)
	}
	return s
}
