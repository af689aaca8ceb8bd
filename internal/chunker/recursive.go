package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"

	"kbqa/internal/domain"
)

// RecursiveChunker splits text on the first separator that yields pieces no
// longer than the chunk size, recursing into oversized pieces with the next
// separator, and merges neighbours back up to size with the given overlap.
// Separators stay attached to the text that follows them.
type RecursiveChunker struct {
	splitter textsplitter.RecursiveCharacter
}

func NewRecursiveChunker(chunkSize, overlap int, separators []string) *RecursiveChunker {
	if chunkSize <= 0 {
		chunkSize = 700
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	if len(separators) == 0 {
		separators = []string{"\n\n", "\n", " ", ""}
	}
	return &RecursiveChunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(overlap),
			textsplitter.WithSeparators(separators),
			textsplitter.WithKeepSeparator(true),
		),
	}
}

func (c *RecursiveChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	if strings.TrimSpace(document.Content) == "" {
		return nil, nil
	}
	pieces, err := c.splitter.SplitText(document.Content)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", document.Filename, err)
	}
	chunks := make([]domain.Chunk, 0, len(pieces))
	for _, text := range pieces {
		if strings.TrimSpace(text) == "" {
			continue
		}
		idx := len(chunks)
		chunks = append(chunks, domain.Chunk{
			ID:     domain.ChunkID(document.Filename, idx),
			Source: document.Filename,
			Text:   text,
			Index:  idx,
			Size:   utf8.RuneCountInString(text),
		})
	}
	return chunks, nil
}
