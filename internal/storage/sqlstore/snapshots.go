package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/storage"
)

const (
	stateActive    = "active"
	stateCompleted = "completed"
)

func (s *Store) LoadSnapshot(ctx context.Context, userID string) (models.Snapshot, error) {
	snap := models.NewSnapshot()

	err := s.db.QueryRowContext(ctx,
		s.Rebind("SELECT xp, level FROM profiles WHERE user_id = ?"), userID,
	).Scan(&snap.Profile.XP, &snap.Profile.Level)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snapshot{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("loading profile: %w", err)
	}

	if err := s.loadHabits(ctx, userID, &snap); err != nil {
		return models.Snapshot{}, err
	}
	if err := s.loadHabitLog(ctx, userID, &snap); err != nil {
		return models.Snapshot{}, err
	}
	if err := s.loadPrayerLog(ctx, userID, &snap); err != nil {
		return models.Snapshot{}, err
	}
	if err := s.loadChallengeProgress(ctx, userID, &snap); err != nil {
		return models.Snapshot{}, err
	}
	if err := s.loadCustomChallenges(ctx, userID, &snap); err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

func (s *Store) loadHabits(ctx context.Context, userID string, snap *models.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, s.Rebind(
		"SELECT id, title, category, frequency, xp, created_at FROM habits WHERE user_id = ? ORDER BY position, created_at"), userID)
	if err != nil {
		return fmt.Errorf("loading habits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h models.Habit
		var category, frequency, createdAt string
		if err := rows.Scan(&h.ID, &h.Title, &category, &frequency, &h.XP, &createdAt); err != nil {
			return fmt.Errorf("scanning habit: %w", err)
		}
		h.Category = models.HabitCategory(category)
		if h.Frequency, err = decodeWeekdays(frequency); err != nil {
			return fmt.Errorf("habit %s: %w", h.ID, err)
		}
		if h.CreatedAt, err = parseTime(createdAt); err != nil {
			return fmt.Errorf("habit %s: %w", h.ID, err)
		}
		snap.Habits = append(snap.Habits, h)
	}
	return rows.Err()
}

func (s *Store) loadHabitLog(ctx context.Context, userID string, snap *models.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, s.Rebind(
		"SELECT day, habit_id, done FROM habit_log WHERE user_id = ?"), userID)
	if err != nil {
		return fmt.Errorf("loading habit log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day, habitID string
		var done int
		if err := rows.Scan(&day, &habitID, &done); err != nil {
			return fmt.Errorf("scanning habit log: %w", err)
		}
		if snap.HabitLog[day] == nil {
			snap.HabitLog[day] = make(map[string]bool)
		}
		snap.HabitLog[day][habitID] = done != 0
	}
	return rows.Err()
}

func (s *Store) loadPrayerLog(ctx context.Context, userID string, snap *models.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, s.Rebind(
		"SELECT day, prayer, status FROM prayer_log WHERE user_id = ?"), userID)
	if err != nil {
		return fmt.Errorf("loading prayer log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day, prayer, status string
		if err := rows.Scan(&day, &prayer, &status); err != nil {
			return fmt.Errorf("scanning prayer log: %w", err)
		}
		if snap.PrayerLog[day] == nil {
			snap.PrayerLog[day] = make(map[string]models.PrayerStatus)
		}
		snap.PrayerLog[day][prayer] = models.PrayerStatus(status)
	}
	return rows.Err()
}

func (s *Store) loadChallengeProgress(ctx context.Context, userID string, snap *models.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, s.Rebind(
		"SELECT challenge_id, state, at FROM challenge_progress WHERE user_id = ?"), userID)
	if err != nil {
		return fmt.Errorf("loading challenge progress: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, state, at string
		if err := rows.Scan(&id, &state, &at); err != nil {
			return fmt.Errorf("scanning challenge progress: %w", err)
		}
		ts, err := parseTime(at)
		if err != nil {
			return fmt.Errorf("challenge %s: %w", id, err)
		}
		switch state {
		case stateActive:
			snap.Profile.ActiveChallenges[id] = ts
		case stateCompleted:
			snap.Profile.CompletedChallenges[id] = ts
		}
	}
	return rows.Err()
}

func (s *Store) loadCustomChallenges(ctx context.Context, userID string, snap *models.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, s.Rebind(
		`SELECT id, title, description, xp, icon, category, difficulty, duration
		 FROM custom_challenges WHERE user_id = ? ORDER BY position`), userID)
	if err != nil {
		return fmt.Errorf("loading custom challenges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c := models.Challenge{IsCustom: true}
		var category, difficulty string
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.XP, &c.Icon, &category, &difficulty, &c.Duration); err != nil {
			return fmt.Errorf("scanning custom challenge: %w", err)
		}
		c.Category = models.ChallengeCategory(category)
		c.Difficulty = models.ChallengeDifficulty(difficulty)
		snap.Profile.CustomChallenges = append(snap.Profile.CustomChallenges, c)
	}
	return rows.Err()
}

// SaveSnapshot writes snap for userID in one transaction.
func (s *Store) SaveSnapshot(ctx context.Context, userID string, snap models.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.Rebind(
		`INSERT INTO profiles (user_id, xp, level, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET xp = excluded.xp, level = excluded.level, updated_at = excluded.updated_at`),
		userID, snap.Profile.XP, snap.Profile.Level, formatTime(time.Now()),
	); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}

	steps := []func(context.Context, *sql.Tx, string, models.Snapshot) error{
		s.saveHabits,
		s.saveChallengeProgress,
		s.saveCustomChallenges,
		s.saveHabitLog,
		s.savePrayerLog,
	}
	for _, step := range steps {
		if err := step(ctx, tx, userID, snap); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) saveHabits(ctx context.Context, tx *sql.Tx, userID string, snap models.Snapshot) error {
	if _, err := tx.ExecContext(ctx, s.Rebind("DELETE FROM habits WHERE user_id = ?"), userID); err != nil {
		return fmt.Errorf("clearing habits: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, s.Rebind(
		`INSERT INTO habits (user_id, id, title, category, frequency, xp, created_at, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, h := range snap.Habits {
		if _, err := stmt.ExecContext(ctx, userID, h.ID, h.Title, string(h.Category),
			encodeWeekdays(h.Frequency), h.XP, formatTime(h.CreatedAt), i); err != nil {
			return fmt.Errorf("saving habit %s: %w", h.ID, err)
		}
	}
	return nil
}

func (s *Store) saveChallengeProgress(ctx context.Context, tx *sql.Tx, userID string, snap models.Snapshot) error {
	if _, err := tx.ExecContext(ctx, s.Rebind("DELETE FROM challenge_progress WHERE user_id = ?"), userID); err != nil {
		return fmt.Errorf("clearing challenge progress: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, s.Rebind(
		"INSERT INTO challenge_progress (user_id, challenge_id, state, at) VALUES (?, ?, ?, ?)"))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for id, at := range snap.Profile.ActiveChallenges {
		if _, err := stmt.ExecContext(ctx, userID, id, stateActive, formatTime(at)); err != nil {
			return fmt.Errorf("saving active challenge %s: %w", id, err)
		}
	}
	for id, at := range snap.Profile.CompletedChallenges {
		if _, ok := snap.Profile.ActiveChallenges[id]; ok {
			continue
		}
		if _, err := stmt.ExecContext(ctx, userID, id, stateCompleted, formatTime(at)); err != nil {
			return fmt.Errorf("saving completed challenge %s: %w", id, err)
		}
	}
	return nil
}

func (s *Store) saveCustomChallenges(ctx context.Context, tx *sql.Tx, userID string, snap models.Snapshot) error {
	if _, err := tx.ExecContext(ctx, s.Rebind("DELETE FROM custom_challenges WHERE user_id = ?"), userID); err != nil {
		return fmt.Errorf("clearing custom challenges: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, s.Rebind(
		`INSERT INTO custom_challenges (user_id, id, title, description, xp, icon, category, difficulty, duration, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, c := range snap.Profile.CustomChallenges {
		if _, err := stmt.ExecContext(ctx, userID, c.ID, c.Title, c.Description, c.XP, c.Icon,
			string(c.Category), string(c.Difficulty), c.Duration, i); err != nil {
			return fmt.Errorf("saving custom challenge %s: %w", c.ID, err)
		}
	}
	return nil
}

func (s *Store) saveHabitLog(ctx context.Context, tx *sql.Tx, userID string, snap models.Snapshot) error {
	del, err := tx.PrepareContext(ctx, s.Rebind("DELETE FROM habit_log WHERE user_id = ? AND day = ?"))
	if err != nil {
		return err
	}
	defer del.Close()
	insert, err := tx.PrepareContext(ctx, s.Rebind(
		"INSERT INTO habit_log (user_id, day, habit_id, done) VALUES (?, ?, ?, ?)"))
	if err != nil {
		return err
	}
	defer insert.Close()

	for day, entries := range snap.HabitLog {
		if _, err := del.ExecContext(ctx, userID, day); err != nil {
			return fmt.Errorf("clearing habit log for %s: %w", day, err)
		}
		for habitID, done := range entries {
			v := 0
			if done {
				v = 1
			}
			if _, err := insert.ExecContext(ctx, userID, day, habitID, v); err != nil {
				return fmt.Errorf("saving habit log for %s: %w", day, err)
			}
		}
	}
	return nil
}

func (s *Store) savePrayerLog(ctx context.Context, tx *sql.Tx, userID string, snap models.Snapshot) error {
	del, err := tx.PrepareContext(ctx, s.Rebind("DELETE FROM prayer_log WHERE user_id = ? AND day = ?"))
	if err != nil {
		return err
	}
	defer del.Close()
	insert, err := tx.PrepareContext(ctx, s.Rebind(
		"INSERT INTO prayer_log (user_id, day, prayer, status) VALUES (?, ?, ?, ?)"))
	if err != nil {
		return err
	}
	defer insert.Close()

	for day, entries := range snap.PrayerLog {
		if _, err := del.ExecContext(ctx, userID, day); err != nil {
			return fmt.Errorf("clearing prayer log for %s: %w", day, err)
		}
		for prayer, status := range entries {
			if status == models.PrayerNone || status == "" {
				continue
			}
			if _, err := insert.ExecContext(ctx, userID, day, prayer, string(status)); err != nil {
				return fmt.Errorf("saving prayer log for %s: %w", day, err)
			}
		}
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT user_id FROM profiles ORDER BY user_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}
	return users, rows.Err()
}
