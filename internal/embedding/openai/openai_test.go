package openai

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embeddingServer(t *testing.T, failures int32, vec []float32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		assert.Equal(t, "/embeddings", r.URL.Path)
		if n <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"busy","type":"server_error"}}`))
			return
		}
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  req.Model,
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": vec},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestEmbed_NormalizesAndLearnsDimension(t *testing.T) {
	srv, _ := embeddingServer(t, 0, []float32{3, 4})
	c, err := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: "KBQA_TEST_NO_KEY", Model: "custom", Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Dimension())

	v, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)
	assert.Equal(t, 2, c.Dimension())
}

func TestEmbed_RetriesServerErrors(t *testing.T) {
	srv, calls := embeddingServer(t, 1, []float32{1, 0})
	c, err := NewClient(Config{BaseURL: srv.URL, Model: "all-minilm"})
	require.NoError(t, err)
	assert.Equal(t, 384, c.Dimension())

	v, err := c.Embed(context.Background(), "retry me")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, math.Abs(float64(v[0])), 1e-6)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNewClient_RequiresKeyForOpenAI(t *testing.T) {
	t.Setenv("KBQA_TEST_EMPTY_KEY", "")
	_, err := NewClient(Config{APIKeyEnv: "KBQA_TEST_EMPTY_KEY"})
	assert.Error(t, err)
}

func TestRetryDelay_Capped(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, retryDelay(0))
	assert.Equal(t, 400*time.Millisecond, retryDelay(1))
	assert.Equal(t, 5*time.Second, retryDelay(10))
}
