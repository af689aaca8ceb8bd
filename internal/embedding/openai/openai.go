package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"kbqa/internal/embedding"
)

const defaultBaseURL = "https://api.openai.com/v1"

var modelDimensions = map[string]int{
	"text-embedding-3-large": 3072,
	"text-embedding-3-small": 1536,
	"text-embedding-ada-002": 1536,
	"all-minilm":             384,
	"all-MiniLM-L6-v2":       384,
	"nomic-embed-text":       768,
}

// Client is an OpenAI-compatible embeddings client implementing the Embedder interface.
type Client struct {
	api        *goopenai.Client
	model      string
	maxRetries int

	mu        sync.Mutex
	dimension int
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Dimension int
	Timeout   time.Duration
}

// NewClient creates a new embeddings client using the provided configuration.
// The API key may only be absent for self-hosted endpoints such as Ollama.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" && strings.HasPrefix(cfg.BaseURL, defaultBaseURL) {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	occ := goopenai.DefaultConfig(key)
	occ.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	occ.HTTPClient = &http.Client{Timeout: t}

	dim := cfg.Dimension
	if dim == 0 {
		dim = modelDimensions[cfg.Model]
	}
	return &Client{
		api:        goopenai.NewClientWithConfig(occ),
		model:      cfg.Model,
		maxRetries: 5,
		dimension:  dim,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Dimension returns the dimensionality of the produced embedding vectors,
// zero until known from the model table, the config or a first call.
func (c *Client) Dimension() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dimension
}

// Embed returns a unit-length embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	req := goopenai.EmbeddingRequest{
		Input: []string{text},
		Model: goopenai.EmbeddingModel(c.model),
	}
	for attempt := 0; ; attempt++ {
		resp, err := c.api.CreateEmbeddings(ctx, req)
		if err != nil {
			if attempt < c.maxRetries && retryable(err) {
				if err := sleep(ctx, retryDelay(attempt)); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("openai embeddings: %w", err)
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return nil, errors.New("no embedding returned")
		}
		v := append([]float32(nil), resp.Data[0].Embedding...)
		c.mu.Lock()
		if c.dimension == 0 {
			c.dimension = len(v)
		}
		c.mu.Unlock()
		return embedding.Normalize(v), nil
	}
}

func retryable(err error) bool {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
