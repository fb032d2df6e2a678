package telemetry

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err, "duplicate registration is rejected")
}

func TestMetrics_Record(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordRequest("GET", "/gallery", 200, 20*time.Millisecond)
	m.RecordRequest("GET", "/gallery", 200, 30*time.Millisecond)
	m.RecordGuard("redirect", "participant")
	m.RecordVote(true)
	m.RecordVote(false)
	m.RecordGeneration("catalog", nil)
	m.RecordGeneration("custom", errors.New("boom"))
	m.StreamOpened()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/gallery", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardDecisions.WithLabelValues("redirect", "participant")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StreamListeners))

	expected := `
		# HELP arena_generations_total Image generation calls by prompt source and outcome
		# TYPE arena_generations_total counter
		arena_generations_total{outcome="error",source="custom"} 1
		arena_generations_total{outcome="success",source="catalog"} 1
	`
	require.NoError(t, testutil.CollectAndCompare(m.Generations, strings.NewReader(expected)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.VotesTotal))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("GET", "/", 200, time.Millisecond)
		m.RecordGuard("render", "host")
		m.RecordProfileFetch("failed")
		m.RecordVote(true)
		m.RecordGeneration("random", nil)
		m.StreamOpened()
		m.StreamClosed()
	})
}
