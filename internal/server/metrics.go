package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	xpDeltaCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ihsan",
		Name:      "xp_delta_total",
		Help:      "Sum of XP changes grouped by source. Negative changes are counted separately.",
	}, []string{"source", "direction"})

	levelUpCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ihsan",
		Name:      "level_ups_total",
		Help:      "Number of level-ups across all users.",
	})

	persistenceFailureCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ihsan",
		Name:      "persistence_failures_total",
		Help:      "Number of failed snapshot writes.",
	})

	requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ihsan",
		Name:      "http_requests_total",
		Help:      "Number of HTTP requests grouped by method, route and status.",
	}, []string{"method", "route", "status"})

	sessionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ihsan",
		Name:      "sessions_loaded",
		Help:      "Number of user sessions held in memory.",
	})
)

func init() {
	prometheus.MustRegister(xpDeltaCounter, levelUpCounter, persistenceFailureCounter, requestCounter, sessionsGauge)
}

// metricsObserver feeds session events into the Prometheus counters.
type metricsObserver struct{}

func (metricsObserver) XPChanged(source string, delta int) {
	switch {
	case delta > 0:
		xpDeltaCounter.WithLabelValues(source, "gain").Add(float64(delta))
	case delta < 0:
		xpDeltaCounter.WithLabelValues(source, "loss").Add(float64(-delta))
	}
}

func (metricsObserver) LeveledUp(int) {
	levelUpCounter.Inc()
}

func (metricsObserver) SaveFailed(error) {
	persistenceFailureCounter.Inc()
}

// countRequests records every response by its chi route pattern.
func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		requestCounter.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	})
}
