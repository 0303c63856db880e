// Package server exposes a user's session over a JSON HTTP API. Each request
// is authenticated by a bearer token whose subject is the user id.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julianstephens/ihsan/internal/logger"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/notifier"
	"github.com/julianstephens/ihsan/internal/session"
	"github.com/julianstephens/ihsan/internal/storage"
	"github.com/julianstephens/ihsan/internal/utils"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg      Config
	store    storage.Provider
	sessions *sessionCache
	router   http.Handler
}

// New builds the API for store. Extra session options are applied after the
// ones derived from settings.
func New(cfg Config, store storage.Provider, settings models.Settings, n notifier.Sender, extra ...session.Option) *Server {
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		logger.Warn("Invalid timezone setting, using local time", "timezone", settings.Timezone, "error", err)
		loc = time.Local
	}
	opts := []session.Option{
		session.WithLocation(loc),
		session.WithDebounce(time.Duration(settings.SaveDebounceMs) * time.Millisecond),
		session.WithObserver(metricsObserver{}),
	}
	if settings.NotificationsEnabled && n != nil {
		opts = append(opts, session.WithNotifier(n))
	}
	opts = append(opts, extra...)

	s := &Server{
		cfg:      cfg,
		store:    store,
		sessions: newSessionCache(store, opts, cfg.SessionIdle),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)
	r.Use(countRequests)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(requireUser(s.cfg.JWTSecret, s.cfg.JWTIssuer))

		r.Get("/profile", s.getProfile)
		r.Get("/today", s.getToday)
		r.Get("/stats", s.getStats)

		r.Post("/habits", s.createHabit)
		r.Delete("/habits/{id}", s.deleteHabit)
		r.Post("/habits/{id}/toggle", s.toggleHabit)

		r.Put("/prayers/{name}", s.setPrayer)

		r.Get("/challenges", s.listChallenges)
		r.Post("/challenges/custom", s.createChallenge)
		r.Delete("/challenges/custom/{id}", s.deleteChallenge)
		r.Post("/challenges/{id}/start", s.startChallenge)
		r.Post("/challenges/{id}/complete", s.completeChallenge)
		r.Post("/challenges/{id}/reset", s.resetChallenge)
	})

	return r
}

// Handler returns the API's root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down and flushes every session.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go s.sessions.janitor(janitorCtx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", s.cfg.Address)
		fmt.Printf("Serving ihsan API at %s\n", s.cfg.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			_ = s.Close(context.Background())
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("Server shutting down")
	shutdownErr := srv.Shutdown(shutdownCtx)
	return errors.Join(shutdownErr, s.Close(shutdownCtx))
}

// Close flushes pending writes for every loaded user.
func (s *Server) Close(ctx context.Context) error {
	return s.sessions.closeAll(ctx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}
