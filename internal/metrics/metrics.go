// Package metrics exposes pipeline counters on a private Prometheus registry.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Question outcomes.
const (
	OutcomeAnswered = "answered"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	questions         *prometheus.CounterVec
	documentsIngested prometheus.Counter
	chunksIndexed     prometheus.Counter
	rebuilds          prometheus.Counter
	generation        prometheus.Histogram
}

// New registers the kbqa metrics and the Go runtime collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		questions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kbqa_questions_total",
				Help: "Questions asked by outcome",
			},
			[]string{"app", "outcome"},
		),
		documentsIngested: f.NewCounter(prometheus.CounterOpts{
			Name: "kbqa_documents_ingested_total",
			Help: "Documents converted and added to a collection",
		}),
		chunksIndexed: f.NewCounter(prometheus.CounterOpts{
			Name: "kbqa_chunks_indexed_total",
			Help: "Chunks embedded and stored",
		}),
		rebuilds: f.NewCounter(prometheus.CounterOpts{
			Name: "kbqa_collection_rebuilds_total",
			Help: "Collection resets followed by re-ingestion",
		}),
		generation: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "kbqa_generation_duration_seconds",
			Help:    "Time spent in the answer generator",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 9), // 1ms to ~65s
		}),
	}
}

func (m *Metrics) Question(app, outcome string) {
	if m == nil {
		return
	}
	m.questions.WithLabelValues(app, outcome).Inc()
}

func (m *Metrics) DocumentIngested(chunks int) {
	if m == nil {
		return
	}
	m.documentsIngested.Inc()
	m.chunksIndexed.Add(float64(chunks))
}

func (m *Metrics) Rebuild() {
	if m == nil {
		return
	}
	m.rebuilds.Inc()
}

func (m *Metrics) ObserveGeneration(d time.Duration) {
	if m == nil {
		return
	}
	m.generation.Observe(d.Seconds())
}

// Registry exposes the registry for tests and custom handlers.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics listener started", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
