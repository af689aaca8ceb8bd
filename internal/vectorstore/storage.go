// Package vectorstore holds the helpers shared by the vector store backends.
// Every backend reports distances on the same scale: squared L2 between unit
// vectors, so 0 is identical, 2 is orthogonal and 4 is opposite.
package vectorstore

import (
	"context"
	"fmt"

	"kbqa/internal/domain"
)

// DistanceFromCosine converts a cosine similarity between unit vectors into
// squared L2 distance.
func DistanceFromCosine(similarity float64) float64 {
	return 2 - 2*similarity
}

// EmbedMissing fills in the embedding of every entry that has none.
func EmbedMissing(ctx context.Context, embedder domain.Embedder, entries []domain.VectorEntry) ([]domain.VectorEntry, error) {
	out := make([]domain.VectorEntry, len(entries))
	for i, e := range entries {
		if len(e.Embedding) == 0 {
			v, err := embedder.Embed(ctx, e.Text)
			if err != nil {
				return nil, fmt.Errorf("embed %s: %w", e.ID, err)
			}
			e.Embedding = v
		}
		out[i] = e
	}
	return out, nil
}

// ProbeDimension returns the embedder's dimension, learning it from a probe
// embedding when the model does not advertise one.
func ProbeDimension(ctx context.Context, embedder domain.Embedder) (int, error) {
	if dim := embedder.Dimension(); dim > 0 {
		return dim, nil
	}
	v, err := embedder.Embed(ctx, "dimension probe")
	if err != nil {
		return 0, fmt.Errorf("probe embedding size: %w", err)
	}
	return len(v), nil
}

// ClampLimit bounds a requested result count by the collection size.
func ClampLimit(n, count int) int {
	if n > count {
		return count
	}
	if n < 0 {
		return 0
	}
	return n
}
