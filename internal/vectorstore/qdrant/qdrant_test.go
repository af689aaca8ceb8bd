package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbqa/internal/domain"
	"kbqa/internal/embedding/hashing"
)

// fakeQdrant keeps just enough state to answer the calls Storage makes.
type fakeQdrant struct {
	mu     sync.Mutex
	exists bool
	size   int
	points map[string]map[string]any
	apiKey string
}

func (f *fakeQdrant) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apiKey = r.Header.Get("api-key")
	path := strings.TrimPrefix(r.URL.Path, "/collections/test")
	switch {
	case path == "" && r.Method == http.MethodGet:
		if !f.exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
	case path == "" && r.Method == http.MethodPut:
		var body struct {
			Vectors struct {
				Size int `json:"size"`
			} `json:"vectors"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.exists, f.size, f.points = true, body.Vectors.Size, map[string]map[string]any{}
	case path == "" && r.Method == http.MethodDelete:
		if !f.exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.exists, f.points = false, nil
	case path == "/points" && r.Method == http.MethodPut:
		var body struct {
			Points []struct {
				ID      string         `json:"id"`
				Payload map[string]any `json:"payload"`
			} `json:"points"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, p := range body.Points {
			f.points[p.ID] = p.Payload
		}
	case path == "/points/count":
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"count": len(f.points)}})
		return
	case path == "/points/search":
		result := []map[string]any{}
		for _, p := range f.points {
			result = append(result, map[string]any{"score": 0.5, "payload": p})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
		return
	case strings.HasPrefix(path, "/points/") && r.Method == http.MethodGet:
		if _, ok := f.points[strings.TrimPrefix(path, "/points/")]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
	default:
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	_, _ = w.Write([]byte(`{"result":true}`))
}

func newTestStorage(t *testing.T) (*Storage, *fakeQdrant) {
	t.Helper()
	fake := &fakeQdrant{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	s := NewStorage(Config{URL: srv.URL + "/", APIKey: "secret", Collection: "test"}, hashing.NewEmbedder(32))
	return s, fake
}

func TestOpen_CreatesMissingCollection(t *testing.T) {
	s, fake := newTestStorage(t)
	require.NoError(t, s.Open(context.Background()))
	assert.True(t, fake.exists)
	assert.Equal(t, 32, fake.size)
	assert.Equal(t, "secret", fake.apiKey)
}

func TestAddQueryHas(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStorage(t)
	require.NoError(t, s.Reset(ctx))

	entry := domain.Chunk{ID: "a.txt_chunk_0", Source: "a.txt", Text: "hello", Index: 0, Size: 5}.Entry(nil)
	require.NoError(t, s.Add(ctx, []domain.VectorEntry{entry}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ok, err := s.Has(ctx, "a.txt_chunk_0")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Has(ctx, "b.txt_chunk_0")
	require.NoError(t, err)
	assert.False(t, ok)

	res, err := s.Query(ctx, "hello", 3)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "a.txt_chunk_0", res[0].ID)
	assert.Equal(t, "hello", res[0].Text)
	assert.Equal(t, "a.txt", res[0].Metadata[domain.MetaFilename])
	assert.InDelta(t, 1.0, res[0].Distance, 1e-9)
}

func TestReset_ClearsPoints(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStorage(t)
	require.NoError(t, s.Open(ctx))
	require.NoError(t, s.Add(ctx, []domain.VectorEntry{{ID: "x", Text: "y"}}))
	require.NoError(t, s.Reset(ctx))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPointID_Stable(t *testing.T) {
	assert.Equal(t, PointID("doc1"), PointID("doc1"))
	assert.NotEqual(t, PointID("doc1"), PointID("doc2"))
	assert.Len(t, PointID("doc1"), 36)
}
