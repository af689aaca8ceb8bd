package chunker

import (
	"strings"
	"unicode/utf8"

	"kbqa/internal/domain"
	"kbqa/internal/textproc"
)

// SentenceChunker splits text into sentence-based chunks with overlap.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
}

func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 || overlapSentences >= sentencesPerChunk {
		overlapSentences = 0
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
	}
}

func (c *SentenceChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	trimmed := strings.TrimSpace(document.Content)
	if trimmed == "" {
		return nil, nil
	}
	sentences := textproc.Sentences(trimmed)
	var chunks []domain.Chunk
	i := 0
	for i < len(sentences) {
		end := i + c.sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		text := strings.Join(sentences[i:end], " ")
		idx := len(chunks)
		chunks = append(chunks, domain.Chunk{
			ID:     domain.ChunkID(document.Filename, idx),
			Source: document.Filename,
			Text:   text,
			Index:  idx,
			Size:   utf8.RuneCountInString(text),
		})
		if end == len(sentences) {
			break
		}
		i = end - c.overlapSentences
	}
	return chunks, nil
}
