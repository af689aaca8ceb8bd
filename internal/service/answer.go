// Package service holds the question answering pipeline and the two
// applications built on it: the fixed Nutrition 101 corpus and the
// personal knowledge base.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"kbqa/internal/domain"
	"kbqa/internal/metrics"
)

const (
	// NoInformationAnswer is returned when retrieval finds nothing relevant.
	NoInformationAnswer = "I don't have information about that topic in my documents."
	// NoSource is the source of a fallback answer.
	NoSource = "No source"
)

var ErrEmptyQuestion = errors.New("question is empty")

// Answer is the outcome of one question.
type Answer struct {
	Text     string
	Source   string
	Fallback bool
	Results  []domain.QueryResult
}

// AnswerOptions tunes retrieval and generation.
type AnswerOptions struct {
	TopK        int
	MaxDistance float64
	MaxTokens   int
}

func (o AnswerOptions) withDefaults() AnswerOptions {
	if o.TopK <= 0 {
		o.TopK = 3
	}
	if o.MaxDistance <= 0 {
		o.MaxDistance = 1.5
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 150
	}
	return o
}

// Answerer retrieves passages for a question, applies the relevance gate and
// asks the generator for an answer grounded in them.
type Answerer struct {
	app       string
	store     domain.VectorStore
	generator domain.Generator
	opts      AnswerOptions
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewAnswerer(app string, store domain.VectorStore, generator domain.Generator, opts AnswerOptions, m *metrics.Metrics, log *zap.Logger) *Answerer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Answerer{
		app:       app,
		store:     store,
		generator: generator,
		opts:      opts.withDefaults(),
		metrics:   m,
		log:       log,
	}
}

// Relevant reports whether the closest result is within maxDistance.
// NaN distances never count as close.
func Relevant(results []domain.QueryResult, maxDistance float64) bool {
	best := math.Inf(1)
	for _, r := range results {
		if !math.IsNaN(r.Distance) && r.Distance < best {
			best = r.Distance
		}
	}
	return best <= maxDistance
}

func (a *Answerer) Answer(ctx context.Context, question string) (Answer, error) {
	if strings.TrimSpace(question) == "" {
		return Answer{}, ErrEmptyQuestion
	}
	results, err := a.store.Query(ctx, question, a.opts.TopK)
	if err != nil {
		a.metrics.Question(a.app, metrics.OutcomeError)
		return Answer{}, fmt.Errorf("retrieve: %w", err)
	}
	if !Relevant(results, a.opts.MaxDistance) {
		a.log.Debug("no relevant passages",
			zap.String("app", a.app),
			zap.Int("results", len(results)),
		)
		a.metrics.Question(a.app, metrics.OutcomeFallback)
		return Answer{Text: NoInformationAnswer, Source: NoSource, Fallback: true, Results: results}, nil
	}

	passages := make([]string, len(results))
	for i, r := range results {
		passages[i] = r.Text
	}
	start := time.Now()
	text, err := a.generator.Generate(ctx, domain.Prompt{Question: question, Passages: passages}, a.opts.MaxTokens)
	a.metrics.ObserveGeneration(time.Since(start))
	if err != nil {
		a.metrics.Question(a.app, metrics.OutcomeError)
		return Answer{}, fmt.Errorf("generate with %s: %w", a.generator.Name(), err)
	}
	source := domain.SourceFromID(results[0].ID)
	a.log.Debug("answered",
		zap.String("app", a.app),
		zap.String("source", source),
		zap.Float64("distance", results[0].Distance),
		zap.Duration("generation", time.Since(start)),
	)
	a.metrics.Question(a.app, metrics.OutcomeAnswered)
	return Answer{Text: strings.TrimSpace(text), Source: source, Results: results}, nil
}
