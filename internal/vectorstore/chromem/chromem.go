package chromem

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	chromemgo "github.com/philippgille/chromem-go"

	"kbqa/internal/domain"
	"kbqa/internal/vectorstore"
)

// Storage is one collection of an embedded chromem database.
type Storage struct {
	db       *chromemgo.DB
	name     string
	embedder domain.Embedder

	mu   sync.RWMutex
	coll *chromemgo.Collection
}

// NewDB returns an in-memory database that several collections can share.
func NewDB() *chromemgo.DB {
	return chromemgo.NewDB()
}

// NewStorage binds the named collection of db. Texts are embedded with embedder.
func NewStorage(db *chromemgo.DB, name string, embedder domain.Embedder) *Storage {
	return &Storage{db: db, name: name, embedder: embedder}
}

func (s *Storage) embeddingFunc() chromemgo.EmbeddingFunc {
	return chromemgo.EmbeddingFunc(s.embedder.Embed)
}

// Open gets the collection, creating it when missing.
func (s *Storage) Open(_ context.Context) error {
	coll, err := s.db.GetOrCreateCollection(s.name, nil, s.embeddingFunc())
	if err != nil {
		return fmt.Errorf("open collection %s: %w", s.name, err)
	}
	s.mu.Lock()
	s.coll = coll
	s.mu.Unlock()
	return nil
}

// Reset drops the collection if present and creates it empty.
func (s *Storage) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db.GetCollection(s.name, s.embeddingFunc()) != nil {
		if err := s.db.DeleteCollection(s.name); err != nil {
			return fmt.Errorf("delete collection %s: %w", s.name, err)
		}
	}
	coll, err := s.db.CreateCollection(s.name, nil, s.embeddingFunc())
	if err != nil {
		return fmt.Errorf("create collection %s: %w", s.name, err)
	}
	s.coll = coll
	return nil
}

func (s *Storage) collection() (*chromemgo.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.coll == nil {
		return nil, errors.New("collection not open")
	}
	return s.coll, nil
}

// Add stores the entries, embedding the ones that carry no vector.
func (s *Storage) Add(ctx context.Context, entries []domain.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}
	coll, err := s.collection()
	if err != nil {
		return err
	}
	docs := make([]chromemgo.Document, len(entries))
	for i, e := range entries {
		docs[i] = chromemgo.Document{
			ID:        e.ID,
			Content:   e.Text,
			Metadata:  e.Metadata,
			Embedding: e.Embedding,
		}
	}
	if err := coll.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add to %s: %w", s.name, err)
	}
	return nil
}

// Query returns up to n entries nearest to text. An empty collection yields no
// results instead of an error.
func (s *Storage) Query(ctx context.Context, text string, n int) ([]domain.QueryResult, error) {
	coll, err := s.collection()
	if err != nil {
		return nil, err
	}
	n = vectorstore.ClampLimit(n, coll.Count())
	if n == 0 {
		return nil, nil
	}
	res, err := coll.Query(ctx, text, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.name, err)
	}
	out := make([]domain.QueryResult, 0, len(res))
	for _, r := range res {
		out = append(out, domain.QueryResult{
			ID:       r.ID,
			Text:     r.Content,
			Distance: vectorstore.DistanceFromCosine(float64(r.Similarity)),
			Metadata: r.Metadata,
		})
	}
	return out, nil
}

// Count returns the number of stored entries.
func (s *Storage) Count(_ context.Context) (int, error) {
	coll, err := s.collection()
	if err != nil {
		return 0, err
	}
	return coll.Count(), nil
}

// Has reports whether an entry with id is stored.
func (s *Storage) Has(ctx context.Context, id string) (bool, error) {
	coll, err := s.collection()
	if err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, err := coll.GetByID(ctx, id); err != nil {
		// chromem reports a missing id only through the error text.
		if strings.Contains(err.Error(), "not found") {
			return false, nil
		}
		return false, fmt.Errorf("get %s from %s: %w", id, s.name, err)
	}
	return true, nil
}

// Close is a no-op, the database lives in memory.
func (s *Storage) Close() error { return nil }
