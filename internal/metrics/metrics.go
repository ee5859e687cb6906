// Package metrics holds the Prometheus collectors for completions, streak
// repair and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julianstephens/famquest/internal/constants"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	completions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constants.AppName,
			Name:      "completions_total",
			Help:      "Habit completion attempts by result.",
		},
		[]string{"result"},
	)

	xpAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: constants.AppName,
			Name:      "xp_awarded_total",
			Help:      "XP credited by accepted completions.",
		},
	)

	levelUps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: constants.AppName,
			Name:      "level_ups_total",
			Help:      "Completions that raised a member's level.",
		},
	)

	streakRecalcs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constants.AppName,
			Name:      "streak_recalculations_total",
			Help:      "Per-member streak recalculations by result.",
		},
		[]string{"result"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constants.AppName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: constants.AppName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)
)

func init() {
	Registry.MustRegister(
		completions,
		xpAwarded,
		levelUps,
		streakRecalcs,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordCompletion counts one completion attempt. xp and leveledUp only
// matter for accepted results.
func RecordCompletion(result constants.CompletionResult, xp int, leveledUp bool) {
	completions.WithLabelValues(string(result)).Inc()
	if result != constants.CompletionAccepted {
		return
	}
	if xp > 0 {
		xpAwarded.Add(float64(xp))
	}
	if leveledUp {
		levelUps.Inc()
	}
}

// RecordStreakRecalculation counts one member processed by streak repair.
func RecordStreakRecalculation(success bool) {
	result := "ok"
	if !success {
		result = "error"
	}
	streakRecalcs.WithLabelValues(result).Inc()
}

// InstrumentHandler wraps the router with request counters. Routes are
// labelled by their mux template so IDs do not explode cardinality.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		route := routeTemplate(r)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

// Middleware adapts InstrumentHandler for mux.Router.Use.
func Middleware(next http.Handler) http.Handler {
	return InstrumentHandler(next)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}
