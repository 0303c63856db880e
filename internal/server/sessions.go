package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/julianstephens/ihsan/internal/logger"
	"github.com/julianstephens/ihsan/internal/session"
	"github.com/julianstephens/ihsan/internal/storage"
)

const defaultSessionIdle = 30 * time.Minute

// cacheEntry is one user's session. ready is closed once Load has finished,
// after which sess and err are fixed.
type cacheEntry struct {
	ready    chan struct{}
	sess     *session.Session
	err      error
	lastUsed time.Time
}

// sessionCache holds one loaded Session per user. Sessions untouched for
// longer than idle are flushed and dropped by evictIdle.
type sessionCache struct {
	store storage.Provider
	opts  []session.Option
	idle  time.Duration
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

func newSessionCache(store storage.Provider, opts []session.Option, idle time.Duration) *sessionCache {
	if idle <= 0 {
		idle = defaultSessionIdle
	}
	return &sessionCache{
		store:   store,
		opts:    opts,
		idle:    idle,
		now:     time.Now,
		entries: make(map[string]*cacheEntry),
	}
}

// get returns the user's session, loading it on first use. Only callers for
// the same user wait on a load in progress.
func (c *sessionCache) get(ctx context.Context, user string) (*session.Session, error) {
	c.mu.Lock()
	e, ok := c.entries[user]
	if !ok {
		e = &cacheEntry{ready: make(chan struct{})}
		c.entries[user] = e
		sessionsGauge.Inc()
	}
	e.lastUsed = c.now()
	c.mu.Unlock()

	if !ok {
		c.load(ctx, user, e)
	}

	select {
	case <-e.ready:
		return e.sess, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *sessionCache) load(ctx context.Context, user string, e *cacheEntry) {
	defer close(e.ready)

	s := session.New(c.store, c.opts...)
	if err := s.Load(ctx, user); err != nil {
		e.err = err
		// Drop the failed entry so the next request retries.
		c.mu.Lock()
		if c.entries[user] == e {
			delete(c.entries, user)
			sessionsGauge.Dec()
		}
		c.mu.Unlock()
		return
	}
	e.sess = s
	logger.ForUser(user).Debug("Session loaded")
}

// evictIdle flushes and drops every loaded session idle for longer than the
// cache's idle window. It returns the number of sessions evicted.
func (c *sessionCache) evictIdle(ctx context.Context) (int, error) {
	cutoff := c.now().Add(-c.idle)

	c.mu.Lock()
	stale := make(map[string]*session.Session)
	for user, e := range c.entries {
		if !isReady(e) || e.sess == nil || e.lastUsed.After(cutoff) {
			continue
		}
		stale[user] = e.sess
		delete(c.entries, user)
		sessionsGauge.Dec()
	}
	c.mu.Unlock()

	var errs []error
	for user, s := range stale {
		if err := s.Close(ctx); err != nil {
			logger.ForUser(user).Error("Failed to flush idle session", "error", err)
			errs = append(errs, err)
			continue
		}
		logger.ForUser(user).Debug("Session evicted")
	}
	return len(stale), errors.Join(errs...)
}

// janitor runs evictIdle until ctx is cancelled.
func (c *sessionCache) janitor(ctx context.Context) {
	ticker := time.NewTicker(c.idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.evictIdle(ctx); err != nil {
				logger.Warn("Idle session eviction failed", "error", err)
			}
		}
	}
}

// closeAll flushes and closes every cached session.
func (c *sessionCache) closeAll(ctx context.Context) error {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()

	var errs []error
	for user, e := range entries {
		sessionsGauge.Dec()
		select {
		case <-e.ready:
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
			continue
		}
		if e.sess == nil {
			continue
		}
		if err := e.sess.Close(ctx); err != nil {
			logger.ForUser(user).Error("Failed to flush session", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *sessionCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func isReady(e *cacheEntry) bool {
	select {
	case <-e.ready:
		return true
	default:
		return false
	}
}
