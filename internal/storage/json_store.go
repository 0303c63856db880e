package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/julianstephens/ihsan/internal/models"
)

type document struct {
	Version  int                        `json:"version"`
	Settings models.Settings            `json:"settings"`
	Users    map[string]models.Snapshot `json:"users"`
}

// JSONStore keeps settings and every user's snapshot in a single JSON file.
type JSONStore struct {
	path string

	mu  sync.Mutex
	doc *document
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return s.loadLocked()
	}

	s.doc = &document{
		Version:  1,
		Settings: models.DefaultSettings(),
		Users:    make(map[string]models.Snapshot),
	}
	return s.saveLocked()
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *JSONStore) loadLocked() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Users == nil {
		doc.Users = make(map[string]models.Snapshot)
	}
	s.doc = doc
	return nil
}

// saveLocked writes to a temp file and renames it over the target so a crash
// never leaves a truncated document.
func (s *JSONStore) saveLocked() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace storage: %w", err)
	}
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetSettings() (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return models.Settings{}, ErrNotInitialized
	}
	settings := s.doc.Settings
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

func (s *JSONStore) SaveSettings(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ErrNotInitialized
	}
	s.doc.Settings = settings
	return s.saveLocked()
}

func (s *JSONStore) LoadSnapshot(_ context.Context, userID string) (models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return models.Snapshot{}, ErrNotInitialized
	}
	snap, ok := s.doc.Users[userID]
	if !ok {
		return models.Snapshot{}, ErrNotFound
	}
	return snap.Clone(), nil
}

func (s *JSONStore) SaveSnapshot(_ context.Context, userID string, snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ErrNotInitialized
	}

	merged := snap.Clone()
	if prev, ok := s.doc.Users[userID]; ok {
		for day, entries := range prev.HabitLog {
			if _, keep := merged.HabitLog[day]; !keep {
				merged.HabitLog[day] = maps.Clone(entries)
			}
		}
		for day, entries := range prev.PrayerLog {
			if _, keep := merged.PrayerLog[day]; !keep {
				merged.PrayerLog[day] = maps.Clone(entries)
			}
		}
	}
	s.doc.Users[userID] = merged
	return s.saveLocked()
}

func (s *JSONStore) ListUsers(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, ErrNotInitialized
	}
	return slices.Sorted(maps.Keys(s.doc.Users)), nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
