package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbqa/internal/domain"
)

func longText(words int) string {
	var b strings.Builder
	for i := 0; i < words; i++ {
		fmt.Fprintf(&b, "word%04d ", i)
		if i%60 == 59 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func TestRecursiveChunker_RespectsSizeAndIDs(t *testing.T) {
	c := NewRecursiveChunker(700, 100, nil)
	doc := domain.Document{Filename: "notes.txt", Content: longText(600)}

	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i, ch := range chunks {
		assert.Equal(t, fmt.Sprintf("notes.txt_chunk_%d", i), ch.ID)
		assert.Equal(t, i, ch.Index)
		assert.Equal(t, "notes.txt", ch.Source)
		assert.LessOrEqual(t, ch.Size, 700)
		assert.Equal(t, len([]rune(ch.Text)), ch.Size)
	}
}

func TestRecursiveChunker_Deterministic(t *testing.T) {
	c := NewRecursiveChunker(700, 100, nil)
	doc := domain.Document{Filename: "a.md", Content: longText(400)}

	first, err := c.Chunk(doc)
	require.NoError(t, err)
	second, err := c.Chunk(doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := NewRecursiveChunker(700, 100, nil).Chunk(doc)
	require.NoError(t, err)
	assert.Equal(t, first, other)
}

func TestRecursiveChunker_Overlaps(t *testing.T) {
	c := NewRecursiveChunker(200, 50, []string{" ", ""})
	chunks, err := c.Chunk(domain.Document{Filename: "x", Content: longText(100)})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	words := strings.Fields(chunks[0].Text)
	last := words[len(words)-1]
	assert.Contains(t, chunks[1].Text, last)
}

func TestRecursiveChunker_ShortTextSingleChunk(t *testing.T) {
	c := NewRecursiveChunker(700, 100, nil)
	chunks, err := c.Chunk(domain.Document{Filename: "s.txt", Content: "Water makes up about 60% of the body."})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Water makes up about 60% of the body.", chunks[0].Text)
}

func TestRecursiveChunker_KeepsSeparators(t *testing.T) {
	c := NewRecursiveChunker(700, 100, nil)
	assert.True(t, c.splitter.KeepSeparator)

	chunks, err := c.Chunk(domain.Document{Filename: "p.txt", Content: "Line one.\nLine two.\n\nNext paragraph."})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Line one.\nLine two.\n\nNext paragraph.", chunks[0].Text)
}

func TestRecursiveChunker_SplitStartsWithSeparator(t *testing.T) {
	c := NewRecursiveChunker(12, 0, []string{"\n", ""})
	chunks, err := c.Chunk(domain.Document{Filename: "p.txt", Content: "aaaa bbbb\ncccc dddd"})
	require.NoError(t, err)

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	assert.Equal(t, []string{"aaaa bbbb", "cccc dddd"}, texts)
}

func TestRecursiveChunker_EmptyInput(t *testing.T) {
	chunks, err := NewRecursiveChunker(700, 100, nil).Chunk(domain.Document{Filename: "e", Content: " \n\n "})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSentenceChunker_WindowWithOverlap(t *testing.T) {
	c := NewSentenceChunker(2, 1)
	chunks, err := c.Chunk(domain.Document{Filename: "s.txt", Content: "One. Two. Three. Four."})
	require.NoError(t, err)

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
		assert.Equal(t, domain.ChunkID("s.txt", i), ch.ID)
	}
	assert.Equal(t, []string{"One. Two.", "Two. Three.", "Three. Four."}, texts)
}

func TestSentenceChunker_NoTerminator(t *testing.T) {
	chunks, err := NewSentenceChunker(5, 1).Chunk(domain.Document{Filename: "n", Content: "  no punctuation here "})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "no punctuation here", chunks[0].Text)
}
