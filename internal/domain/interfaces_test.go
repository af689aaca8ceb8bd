package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkID_RoundTripsSource(t *testing.T) {
	id := ChunkID("lecture notes.pdf", 3)
	assert.Equal(t, "lecture notes.pdf_chunk_3", id)
	assert.Equal(t, "lecture notes.pdf", SourceFromID(id))
}

func TestSourceFromID_PlainID(t *testing.T) {
	assert.Equal(t, "doc1", SourceFromID("doc1"))
}

func TestSourceFromID_FirstMarkerWins(t *testing.T) {
	assert.Equal(t, "a", SourceFromID("a_chunk_b.txt_chunk_0"))
}

func TestChunkEntry_Metadata(t *testing.T) {
	c := Chunk{ID: ChunkID("n.txt", 2), Source: "n.txt", Text: "hello", Index: 2, Size: 5}
	e := c.Entry([]float32{1})

	assert.Equal(t, "n.txt_chunk_2", e.ID)
	assert.Equal(t, "hello", e.Text)
	assert.Equal(t, map[string]string{
		MetaFilename:   "n.txt",
		MetaChunkIndex: "2",
		MetaChunkSize:  "5",
	}, e.Metadata)
}
