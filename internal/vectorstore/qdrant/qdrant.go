package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"kbqa/internal/domain"
	"kbqa/internal/vectorstore"
)

// ErrNotFound is returned for 404 responses.
var ErrNotFound = errors.New("qdrant: not found")

// Storage is a minimal REST client to one Qdrant collection.
// It uses cosine distance and creates the collection if missing.
type Storage struct {
	url        string
	apiKey     string
	collection string
	embedder   domain.Embedder
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config, embedder domain.Embedder) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Storage{
		url:        strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		embedder:   embedder,
		client:     &http.Client{Timeout: timeout},
	}
}

// PointID maps a chunk id onto the UUID Qdrant requires. The chunk id itself
// travels in the payload.
func PointID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String()
}

func (s *Storage) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", s.url, s.collection)
}

// Open creates the collection unless it already exists.
func (s *Storage) Open(ctx context.Context) error {
	err := s.do(ctx, http.MethodGet, s.collectionURL(), nil, nil)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.create(ctx)
}

// Reset drops the collection and creates it again.
func (s *Storage) Reset(ctx context.Context) error {
	if err := s.do(ctx, http.MethodDelete, s.collectionURL(), nil, nil); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.create(ctx)
}

func (s *Storage) create(ctx context.Context) error {
	dim, err := vectorstore.ProbeDimension(ctx, s.embedder)
	if err != nil {
		return err
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dim,
			"distance": "Cosine",
		},
	}
	return s.do(ctx, http.MethodPut, s.collectionURL(), body, nil)
}

func (s *Storage) Add(ctx context.Context, entries []domain.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}
	entries, err := vectorstore.EmbedMissing(ctx, s.embedder, entries)
	if err != nil {
		return err
	}
	points := make([]map[string]any, len(entries))
	for i, e := range entries {
		payload := map[string]any{
			"chunk_id": e.ID,
			"text":     e.Text,
		}
		for k, v := range e.Metadata {
			payload[k] = v
		}
		points[i] = map[string]any{
			"id":      PointID(e.ID),
			"vector":  e.Embedding,
			"payload": payload,
		}
	}
	body := map[string]any{"points": points}
	return s.do(ctx, http.MethodPut, s.collectionURL()+"/points?wait=true", body, nil)
}

func (s *Storage) Query(ctx context.Context, text string, n int) ([]domain.QueryResult, error) {
	if n <= 0 {
		return nil, nil
	}
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        n,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL()+"/points/search", req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.QueryResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		res := domain.QueryResult{
			Distance: vectorstore.DistanceFromCosine(r.Score),
			Metadata: map[string]string{},
		}
		for k, v := range r.Payload {
			str, ok := v.(string)
			if !ok {
				continue
			}
			switch k {
			case "chunk_id":
				res.ID = str
			case "text":
				res.Text = str
			default:
				res.Metadata[k] = str
			}
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Storage) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL()+"/points/count", map[string]any{"exact": true}, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

func (s *Storage) Has(ctx context.Context, id string) (bool, error) {
	err := s.do(ctx, http.MethodGet, s.collectionURL()+"/points/"+PointID(id), nil, nil)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Storage) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *Storage) do(ctx context.Context, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("qdrant %s %s failed: %s: %s", method, url, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
