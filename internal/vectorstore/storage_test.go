package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbqa/internal/domain"
)

type constEmbedder struct {
	calls int
	err   error
}

func (c *constEmbedder) Name() string   { return "const" }
func (c *constEmbedder) Dimension() int { return 2 }
func (c *constEmbedder) Embed(context.Context, string) ([]float32, error) {
	c.calls++
	return []float32{1, 0}, c.err
}

func TestDistanceFromCosine(t *testing.T) {
	assert.Equal(t, 0.0, DistanceFromCosine(1))
	assert.Equal(t, 2.0, DistanceFromCosine(0))
	assert.Equal(t, 4.0, DistanceFromCosine(-1))
}

func TestEmbedMissing_OnlyEmbedsEmpty(t *testing.T) {
	emb := &constEmbedder{}
	in := []domain.VectorEntry{
		{ID: "a", Text: "x"},
		{ID: "b", Text: "y", Embedding: []float32{0, 1}},
	}
	out, err := EmbedMissing(context.Background(), emb, in)
	require.NoError(t, err)

	assert.Equal(t, 1, emb.calls)
	assert.Equal(t, []float32{1, 0}, out[0].Embedding)
	assert.Equal(t, []float32{0, 1}, out[1].Embedding)
	assert.Nil(t, in[0].Embedding)
}

func TestEmbedMissing_WrapsError(t *testing.T) {
	emb := &constEmbedder{err: errors.New("down")}
	_, err := EmbedMissing(context.Background(), emb, []domain.VectorEntry{{ID: "a"}})
	assert.ErrorContains(t, err, "embed a")
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 2, ClampLimit(3, 2))
	assert.Equal(t, 3, ClampLimit(3, 10))
	assert.Equal(t, 0, ClampLimit(-1, 10))
}

func TestProbeDimension(t *testing.T) {
	dim, err := ProbeDimension(context.Background(), &constEmbedder{})
	require.NoError(t, err)
	assert.Equal(t, 2, dim)
}
