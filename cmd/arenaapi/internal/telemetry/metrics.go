package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors exported at /metrics.
// All methods are safe on a nil receiver so callers may run without metrics.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	GuardDecisions  *prometheus.CounterVec
	ProfileFetches  *prometheus.CounterVec
	VotesTotal      *prometheus.CounterVec
	Generations     *prometheus.CounterVec
	StreamListeners prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_http_requests_total",
			Help: "Total HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "arena_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 30, 60},
		}, []string{"method", "route"}),
		GuardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_guard_decisions_total",
			Help: "Route guard decisions by outcome and effective role",
		}, []string{"outcome", "role"}),
		ProfileFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_profile_fetches_total",
			Help: "Per-request profile fetches by result",
		}, []string{"result"}),
		VotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_votes_total",
			Help: "Vote toggles by direction",
		}, []string{"direction"}),
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_generations_total",
			Help: "Image generation calls by prompt source and outcome",
		}, []string{"source", "outcome"}),
		StreamListeners: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arena_leaderboard_stream_listeners",
			Help: "Open leaderboard WebSocket streams",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.HTTPRequests, m.HTTPDuration, m.GuardDecisions, m.ProfileFetches,
		m.VotesTotal, m.Generations, m.StreamListeners,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordRequest records a finished HTTP request.
func (m *Metrics) RecordRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordGuard counts one route guard decision.
func (m *Metrics) RecordGuard(outcome, role string) {
	if m == nil {
		return
	}
	m.GuardDecisions.WithLabelValues(outcome, role).Inc()
}

// RecordProfileFetch counts a profile lookup: "loaded", "missing" or "failed".
func (m *Metrics) RecordProfileFetch(result string) {
	if m == nil {
		return
	}
	m.ProfileFetches.WithLabelValues(result).Inc()
}

// RecordVote counts a vote toggle.
func (m *Metrics) RecordVote(voted bool) {
	if m == nil {
		return
	}
	direction := "removed"
	if voted {
		direction = "added"
	}
	m.VotesTotal.WithLabelValues(direction).Inc()
}

// RecordGeneration counts a generation call.
func (m *Metrics) RecordGeneration(source string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.Generations.WithLabelValues(source, outcome).Inc()
}

// StreamOpened increments the open stream gauge.
func (m *Metrics) StreamOpened() {
	if m == nil {
		return
	}
	m.StreamListeners.Inc()
}

// StreamClosed decrements the open stream gauge.
func (m *Metrics) StreamClosed() {
	if m == nil {
		return
	}
	m.StreamListeners.Dec()
}
