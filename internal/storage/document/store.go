// Package document persists snapshots in Cloud Firestore: one document per
// user under users/{userID} and application settings under settings/{app}.
package document

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/julianstephens/ihsan/internal/constants"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/storage"
)

const (
	Scheme             = "firestore://"
	usersCollection    = "users"
	settingsCollection = "settings"
)

type Store struct {
	projectID string
	client    *firestore.Client
}

// IsConfig reports whether config selects the Firestore backend.
func IsConfig(config string) bool {
	return strings.HasPrefix(config, Scheme)
}

// New returns a store for a "firestore://<project>" config string.
func New(config string) *Store {
	return &Store{projectID: strings.TrimPrefix(config, Scheme)}
}

// NewWithClient wraps an existing client. Close closes it.
func NewWithClient(client *firestore.Client) *Store {
	return &Store{client: client}
}

func (s *Store) connect(ctx context.Context) error {
	if s.client != nil {
		return nil
	}
	if s.projectID == "" {
		return fmt.Errorf("firestore project id is required (use %s<project>)", Scheme)
	}
	client, err := firestore.NewClient(ctx, s.projectID)
	if err != nil {
		return fmt.Errorf("failed to create firestore client: %w", err)
	}
	s.client = client
	return nil
}

func (s *Store) settingsDoc() *firestore.DocumentRef {
	return s.client.Collection(settingsCollection).Doc(constants.AppName)
}

func (s *Store) userDoc(userID string) *firestore.DocumentRef {
	return s.client.Collection(usersCollection).Doc(userID)
}

func (s *Store) Init() error {
	ctx := context.Background()
	if err := s.connect(ctx); err != nil {
		return err
	}
	_, err := s.settingsDoc().Get(ctx)
	if status.Code(err) == codes.NotFound {
		return s.SaveSettings(models.DefaultSettings())
	}
	return err
}

func (s *Store) Load() error {
	return s.connect(context.Background())
}

func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func (s *Store) GetSettings() (models.Settings, error) {
	if s.client == nil {
		return models.Settings{}, storage.ErrNotInitialized
	}
	snap, err := s.settingsDoc().Get(context.Background())
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.Settings{}, storage.ErrNotInitialized
		}
		return models.Settings{}, fmt.Errorf("loading settings: %w", err)
	}

	data := make(map[string]string)
	for k, v := range snap.Data() {
		data[k] = fmt.Sprint(v)
	}
	settings, err := models.MapToSettings(data)
	if err != nil {
		return models.Settings{}, err
	}
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

func (s *Store) SaveSettings(settings models.Settings) error {
	if s.client == nil {
		return storage.ErrNotInitialized
	}
	data := make(map[string]interface{})
	for k, v := range models.SettingsToMap(settings) {
		data[k] = v
	}
	if _, err := s.settingsDoc().Set(context.Background(), data); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

func (s *Store) LoadSnapshot(ctx context.Context, userID string) (models.Snapshot, error) {
	if s.client == nil {
		return models.Snapshot{}, storage.ErrNotInitialized
	}
	doc, err := s.userDoc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.Snapshot{}, storage.ErrNotFound
		}
		return models.Snapshot{}, fmt.Errorf("loading user %s: %w", userID, err)
	}

	var snap models.Snapshot
	if err := doc.DataTo(&snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("decoding user %s: %w", userID, err)
	}
	snap.Normalize()
	for i := range snap.Profile.CustomChallenges {
		snap.Profile.CustomChallenges[i].IsCustom = true
	}
	return snap, nil
}

// mergeUpdate builds the Set payload for snap. The profile and habit list are
// replaced wholesale; each log day in snap replaces the stored day, and other
// stored days are left untouched.
func mergeUpdate(snap models.Snapshot) (map[string]interface{}, []firestore.FieldPath) {
	snap.Normalize()
	data := map[string]interface{}{
		"profile":   snap.Profile,
		"habits":    snap.Habits,
		"updatedAt": firestore.ServerTimestamp,
	}
	paths := []firestore.FieldPath{{"profile"}, {"habits"}, {"updatedAt"}}

	habitDays := make(map[string]interface{}, len(snap.HabitLog))
	for _, day := range sortedKeys(snap.HabitLog) {
		habitDays[day] = snap.HabitLog[day]
		paths = append(paths, firestore.FieldPath{"habitLog", day})
	}
	prayerDays := make(map[string]interface{}, len(snap.PrayerLog))
	for _, day := range sortedKeys(snap.PrayerLog) {
		prayerDays[day] = snap.PrayerLog[day]
		paths = append(paths, firestore.FieldPath{"prayerLog", day})
	}
	if len(habitDays) > 0 {
		data["habitLog"] = habitDays
	}
	if len(prayerDays) > 0 {
		data["prayerLog"] = prayerDays
	}
	return data, paths
}

func (s *Store) SaveSnapshot(ctx context.Context, userID string, snap models.Snapshot) error {
	if s.client == nil {
		return storage.ErrNotInitialized
	}
	data, paths := mergeUpdate(snap)
	if _, err := s.userDoc(userID).Set(ctx, data, firestore.Merge(paths...)); err != nil {
		return fmt.Errorf("saving user %s: %w", userID, err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	if s.client == nil {
		return nil, storage.ErrNotInitialized
	}
	docs, err := s.client.Collection(usersCollection).Select().Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.Ref.ID)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *Store) GetConfigPath() string {
	return Scheme + s.projectID
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
