package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/ihsan/internal/challenges"
	errs "github.com/julianstephens/ihsan/internal/errors"
	"github.com/julianstephens/ihsan/internal/logger"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/progress"
	"github.com/julianstephens/ihsan/internal/session"
	"github.com/julianstephens/ihsan/internal/stats"
	"github.com/julianstephens/ihsan/internal/validation"
)

const maxStatsDays = 366

type errorResponse struct {
	Error string `json:"error"`
}

type profileResponse struct {
	User string `json:"user"`
	progress.View
}

type todayResponse struct {
	Date    string                         `json:"date"`
	Habits  []habitStatus                  `json:"habits"`
	Prayers map[string]models.PrayerStatus `json:"prayers"`
	Summary stats.DailySummary             `json:"summary"`
}

type habitStatus struct {
	Habit models.Habit `json:"habit"`
	Done  bool         `json:"done"`
}

type statsResponse struct {
	Series       []stats.RatePoint `json:"series"`
	Average      int               `json:"average"`
	PrayerStreak int               `json:"prayer_streak"`
	HabitStreaks map[string]int    `json:"habit_streaks"`
}

type habitRequest struct {
	Title     string               `json:"title"`
	Category  models.HabitCategory `json:"category"`
	Frequency []time.Weekday       `json:"frequency"`
	XP        int                  `json:"xp"`
}

type prayerRequest struct {
	Status string `json:"status"`
	Date   string `json:"date"`
}

type challengeRequest struct {
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	XP          int                        `json:"xp"`
	Icon        string                     `json:"icon"`
	Category    models.ChallengeCategory   `json:"category"`
	Difficulty  models.ChallengeDifficulty `json:"difficulty"`
	Duration    string                     `json:"duration"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var perr *errs.PersistenceError
	switch {
	case errors.Is(err, errs.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, errs.ErrChallengeNotFound), errors.Is(err, errs.ErrHabitNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidHabit), errors.Is(err, errs.ErrInvalidChallenge), errors.Is(err, errs.ErrInvalidStatus),
		errors.Is(err, errs.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.As(err, &perr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "path", r.URL.Path, "user", userFrom(r.Context()), "error", err)
	}
	writeError(w, status, err)
}

// session resolves the caller's session or writes an error.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.get(r.Context(), userFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return sess, true
}

// dateParam returns a validated date key, defaulting to the session's today.
func dateParam(w http.ResponseWriter, sess *session.Session, raw string) (string, bool) {
	if raw == "" {
		return sess.Today(), true
	}
	if err := validation.ValidateDateKey(raw); err != nil {
		writeError(w, statusFor(err), err)
		return "", false
	}
	return raw, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return false
	}
	return true
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	p, err := sess.Progress()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{User: sess.UserID(), View: p})
}

func (s *Server) getToday(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	day, ok := dateParam(w, sess, r.URL.Query().Get("date"))
	if !ok {
		return
	}

	due, err := sess.DueHabits(day)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	prayers, err := sess.PrayerStatuses(day)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	summary, err := sess.Summary(day)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	habits := make([]habitStatus, len(due))
	for i, hs := range due {
		habits[i] = habitStatus{Habit: hs.Habit, Done: hs.Done}
	}
	writeJSON(w, http.StatusOK, todayResponse{Date: day, Habits: habits, Prayers: prayers, Summary: summary})
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	end, ok := dateParam(w, sess, r.URL.Query().Get("date"))
	if !ok {
		return
	}
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxStatsDays {
			writeError(w, http.StatusBadRequest, errors.New("days must be between 1 and 366"))
			return
		}
		days = n
	}

	snap, err := sess.Snapshot()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	series, err := stats.RateSeries(end, days, snap.Habits, snap.HabitLog, snap.PrayerLog)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	prayerStreak, err := stats.PrayerStreak(snap.PrayerLog, end)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	streaks := make(map[string]int, len(snap.Habits))
	for _, h := range snap.Habits {
		n, err := stats.HabitStreak(h, snap.HabitLog, end)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		streaks[h.ID] = n
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Series:       series,
		Average:      stats.AverageRate(series),
		PrayerStreak: prayerStreak,
		HabitStreaks: streaks,
	})
}

func (s *Server) createHabit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req habitRequest
	if !decode(w, r, &req) {
		return
	}
	habit, err := sess.AddHabit(validation.HabitDraft{
		Title:     req.Title,
		Category:  req.Category,
		Frequency: req.Frequency,
		XP:        req.XP,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, habit)
}

func (s *Server) deleteHabit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.DeleteHabit(chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleHabit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	day, ok := dateParam(w, sess, r.URL.Query().Get("date"))
	if !ok {
		return
	}
	res, err := sess.ToggleHabit(day, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) setPrayer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	name, err := validation.PrayerName(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var req prayerRequest
	if !decode(w, r, &req) {
		return
	}
	status, err := validation.ParsePrayerStatus(req.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	day, ok := dateParam(w, sess, req.Date)
	if !ok {
		return
	}
	res, err := sess.SetPrayerStatus(day, name, status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) listChallenges(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	board, err := sess.ChallengeBoard()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) startChallenge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.StartChallenge(chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) completeChallenge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := sess.CompleteChallenge(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) resetChallenge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.ResetChallenge(chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createChallenge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req challengeRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := sess.CreateCustomChallenge(challenges.Draft{
		Title:       req.Title,
		Description: req.Description,
		XP:          req.XP,
		Icon:        req.Icon,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Duration:    req.Duration,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) deleteChallenge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.DeleteCustomChallenge(chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
