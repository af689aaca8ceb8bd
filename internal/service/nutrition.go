package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"kbqa/internal/domain"
	"kbqa/internal/metrics"
)

// NutritionCollection is the collection holding the fixed corpus.
const NutritionCollection = "docs"

// Texts shown by the Nutrition 101 app.
const (
	NutritionTitle   = "🍵🥛🍃 Nutrition 101 🍃🥛🍵"
	NutritionWelcome = "Welcome to the Nutrition 101 database! Ask me anything about nutrition."
	NutritionPrompt  = "Do you have any burning questions about nutrition?"
	NutritionAbout   = "I created this app to help you learn about nutrition. Ask me any question about these topics, and I will do my best to provide a helpful answer based on the information in my database."
)

// NutritionTopics lists the subjects of the five documents.
var NutritionTopics = []string{
	"What is nutrition and why it matters",
	"Macronutrients: carbs, proteins, and fats",
	"Micronutrients: vitamins and minerals",
	"The role of hydration",
	"Nutrition and chronic disease prevention",
}

// NutritionDocuments returns the fixed corpus as entries doc1..doc5.
func NutritionDocuments() []domain.VectorEntry {
	out := make([]domain.VectorEntry, len(nutritionCorpus))
	for i, text := range nutritionCorpus {
		out[i] = domain.VectorEntry{ID: "doc" + strconv.Itoa(i+1), Text: text}
	}
	return out
}

// Nutrition answers questions over the fixed corpus.
type Nutrition struct {
	store    domain.VectorStore
	answerer *Answerer
	log      *zap.Logger
}

func NewNutrition(store domain.VectorStore, generator domain.Generator, opts AnswerOptions, m *metrics.Metrics, log *zap.Logger) *Nutrition {
	if log == nil {
		log = zap.NewNop()
	}
	return &Nutrition{
		store:    store,
		answerer: NewAnswerer("nutrition", store, generator, opts, m, log),
		log:      log,
	}
}

// Setup gets or creates the collection and adds the documents it lacks.
func (n *Nutrition) Setup(ctx context.Context) error {
	if err := n.store.Open(ctx); err != nil {
		return fmt.Errorf("open collection: %w", err)
	}
	var missing []domain.VectorEntry
	for _, e := range NutritionDocuments() {
		ok, err := n.store.Has(ctx, e.ID)
		if err != nil {
			return fmt.Errorf("check %s: %w", e.ID, err)
		}
		if !ok {
			missing = append(missing, e)
		}
	}
	if err := n.store.Add(ctx, missing); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	n.log.Info("nutrition corpus ready", zap.Int("added", len(missing)))
	return nil
}

func (n *Nutrition) Ask(ctx context.Context, question string) (Answer, error) {
	return n.answerer.Answer(ctx, question)
}
