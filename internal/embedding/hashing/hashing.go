package hashing

import (
	"context"
	"hash/fnv"
	"math"

	"kbqa/internal/embedding"
	"kbqa/internal/textproc"
)

// Embedder maps text to a fixed-size bag-of-words vector using the hashing
// trick. It needs no corpus preparation, so documents can be added one at a
// time, and the same text always yields the same vector.
type Embedder struct {
	dimension int
}

// NewEmbedder creates a hashing embedder with the given dimension.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = defaultDimensions
	}
	if dimension < minDimensions {
		dimension = minDimensions
	}
	return &Embedder{dimension: dimension}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "hashing" }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Texts that share no terms sit at cosine baseline (distance 1.55 in squared
// L2), just outside the default relevance gate. Dimensions 0 and 1 are
// reserved for the baseline and for text without tokens. The default size
// keeps bucket collisions rare for chunks of a few hundred distinct terms.
const (
	defaultDimensions = 8192

	baseline      = 0.225
	baselineDim   = 0
	emptyDim      = 1
	reservedDims  = 2
	minDimensions = reservedDims + 1
)

// Embed computes the unit-length hashed term-frequency vector of text.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	lexical := make([]float32, e.dimension)
	tf := make(map[int]int)
	for _, tok := range textproc.Terms(text) {
		tf[e.bucket(tok)]++
	}
	if len(tf) == 0 {
		lexical[emptyDim] = 1
	}
	for idx, count := range tf {
		// Sublinear term frequency
		lexical[idx] = float32(1 + math.Log(float64(count)))
	}
	vec := embedding.Normalize(lexical)
	scale := float32(math.Sqrt(1 - baseline))
	for i := range vec {
		vec[i] *= scale
	}
	vec[baselineDim] = float32(math.Sqrt(baseline))
	return vec, nil
}

func (e *Embedder) bucket(token string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return reservedDims + int(h.Sum32()%uint32(e.dimension-reservedDims))
}
