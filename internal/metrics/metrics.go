// internal/metrics/metrics.go

package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ModerationVerdicts counts content checks, labeled by result
	// ("accepted", "rejected") and the rejection reason.
	ModerationVerdicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "locom_moderation_verdicts_total",
		Help: "Total number of content moderation verdicts",
	}, []string{"result", "reason"})

	// SyncPosts counts imported municipality items by outcome
	// ("added", "skipped", "failed").
	SyncPosts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "locom_municipality_sync_posts_total",
		Help: "Municipality feed items processed, by outcome",
	}, []string{"outcome"})

	// SyncRuns counts ingest runs by status ("ok", "error").
	SyncRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "locom_municipality_sync_runs_total",
		Help: "Municipality sync runs, by status",
	}, []string{"status"})

	// RateLimited counts requests denied by the rate limiter, by action.
	RateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "locom_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"action"})

	// RequestDuration records HTTP handler latency in seconds.
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "locom_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(
		ModerationVerdicts,
		SyncPosts,
		SyncRuns,
		RateLimited,
		RequestDuration,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack keeps websocket upgrades working behind the recorder
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	return h.Hijack()
}

// Middleware observes RequestDuration using the matched chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		RequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}
