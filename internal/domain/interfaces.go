package domain

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Document is the converted text of one source file or hardcoded entry.
type Document struct {
	Filename string
	Content  string
}

// Chunk is a bounded slice of a document used as the unit of retrieval.
type Chunk struct {
	ID     string
	Source string
	Text   string
	Index  int
	Size   int
}

// VectorEntry is one record of a vector collection. A nil Embedding asks the
// store to embed Text itself.
type VectorEntry struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  map[string]string
}

// QueryResult is a stored entry matched by a query, lower Distance is closer.
type QueryResult struct {
	ID       string
	Text     string
	Distance float64
	Metadata map[string]string
}

// HistoryRecord is one answered question kept in the session history.
type HistoryRecord struct {
	Question  string
	Answer    string
	Source    string
	Timestamp time.Time
}

// Metadata keys stored with every chunk entry.
const (
	MetaFilename   = "filename"
	MetaChunkIndex = "chunk_index"
	MetaChunkSize  = "chunk_size"
)

const chunkMarker = "_chunk_"

// ChunkID builds the store id of the index-th chunk of filename.
func ChunkID(filename string, index int) string {
	return filename + chunkMarker + strconv.Itoa(index)
}

// SourceFromID recovers the filename from a chunk id. Ids that were not built
// by ChunkID are returned as is.
func SourceFromID(id string) string {
	if i := strings.Index(id, chunkMarker); i >= 0 {
		return id[:i]
	}
	return id
}

// Entry turns a chunk and its embedding into a vector entry.
func (c Chunk) Entry(embedding []float32) VectorEntry {
	return VectorEntry{
		ID:        c.ID,
		Text:      c.Text,
		Embedding: embedding,
		Metadata: map[string]string{
			MetaFilename:   c.Source,
			MetaChunkIndex: strconv.Itoa(c.Index),
			MetaChunkSize:  strconv.Itoa(c.Size),
		},
	}
}

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// VectorStore is a single named collection in a vector database.
type VectorStore interface {
	// Open gets the collection, creating it when missing.
	Open(ctx context.Context) error
	// Reset drops the collection if present and creates it empty.
	Reset(ctx context.Context) error
	Add(ctx context.Context, entries []VectorEntry) error
	// Query returns up to n entries nearest to text, ascending by distance.
	Query(ctx context.Context, text string, n int) ([]QueryResult, error)
	Count(ctx context.Context) (int, error)
	Has(ctx context.Context, id string) (bool, error)
	Close() error
}

// Prompt is the input of a generation call.
type Prompt struct {
	Question string
	Passages []string
}

// Generator produces an answer for a prompt, capped at maxTokens.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt Prompt, maxTokens int) (string, error)
}

// Converter extracts text from an uploaded file.
type Converter interface {
	Convert(ctx context.Context, filename string, data []byte) (string, error)
}
