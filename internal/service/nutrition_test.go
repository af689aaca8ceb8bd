package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbqa/internal/embedding/hashing"
	"kbqa/internal/generator"
	"kbqa/internal/vectorstore/chromem"
)

func TestNutritionDocuments_IDs(t *testing.T) {
	docs := NutritionDocuments()
	require.Len(t, docs, 5)
	for i, d := range docs {
		assert.Equal(t, "doc"+string(rune('1'+i)), d.ID)
		assert.NotEmpty(t, d.Text)
	}
	assert.Len(t, NutritionTopics, 5)
}

func TestNutrition_SetupIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := chromem.NewDB()
	emb := hashing.NewEmbedder(0)
	for i := 0; i < 2; i++ {
		store := chromem.NewStorage(db, "docs", emb)
		require.NoError(t, NewNutrition(store, generator.NewExtractive(2), AnswerOptions{}, nil, nil).Setup(ctx))
		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
	}
}

func TestNutrition_Ask(t *testing.T) {
	ctx := context.Background()
	store := chromem.NewStorage(chromem.NewDB(), "docs", hashing.NewEmbedder(0))
	app := NewNutrition(store, generator.NewExtractive(2), AnswerOptions{}, nil, nil)
	require.NoError(t, app.Setup(ctx))

	ans, err := app.Ask(ctx, "How much water should women drink per day?")
	require.NoError(t, err)
	assert.False(t, ans.Fallback)
	assert.Equal(t, "doc4", ans.Source)
	assert.Contains(t, ans.Text, "2.7 liters")

	ans, err = app.Ask(ctx, "What is the capital of France?")
	require.NoError(t, err)
	assert.True(t, ans.Fallback)
	assert.Equal(t, NoInformationAnswer, ans.Text)
}
