package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Question("notes", OutcomeAnswered)
		m.DocumentIngested(3)
		m.Rebuild()
		m.ObserveGeneration(time.Second)
	})
}

func TestCounters(t *testing.T) {
	m := New()
	m.Question("notes", OutcomeFallback)
	m.Question("notes", OutcomeFallback)
	m.Question("nutrition", OutcomeAnswered)
	m.DocumentIngested(4)
	m.DocumentIngested(2)
	m.Rebuild()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.questions.WithLabelValues("notes", OutcomeFallback)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.questions.WithLabelValues("nutrition", OutcomeAnswered)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.documentsIngested))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.chunksIndexed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rebuilds))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveGeneration(20 * time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "kbqa_generation_duration_seconds_count 1"))
	assert.Contains(t, body, "go_goroutines")
}
