package milvus

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"kbqa/internal/domain"
	"kbqa/internal/vectorstore"
)

const (
	fieldID        = "id"
	fieldText      = "text"
	fieldMetadata  = "metadata"
	fieldEmbedding = "embedding"

	maxIDLength   = 512
	maxTextLength = 65535
)

// Options configures the Milvus client.
type Options struct {
	Address    string
	Username   string
	Password   string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Storage keeps one collection in Milvus. Vectors are unit length and indexed
// with L2, which Milvus reports squared, so scores are distances as is.
type Storage struct {
	opts     Options
	embedder domain.Embedder
	client   client.Client
}

// NewStorage connects to Milvus.
func NewStorage(ctx context.Context, opts Options, embedder domain.Embedder) (*Storage, error) {
	if opts.Address == "" {
		opts.Address = "localhost:19530"
	}
	if opts.Database == "" {
		opts.Database = "default"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	c, err := client.NewClient(cctx, client.Config{
		Address:  opts.Address,
		DBName:   opts.Database,
		Username: opts.Username,
		Password: opts.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}
	return &Storage{opts: opts, embedder: embedder, client: c}, nil
}

func collectionSchema(name string, dim int) *entity.Schema {
	return &entity.Schema{
		CollectionName: name,
		Description:    "document chunks",
		Fields: []*entity.Field{
			{
				Name:       fieldID,
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{"max_length": strconv.Itoa(maxIDLength)},
			},
			{
				Name:       fieldText,
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": strconv.Itoa(maxTextLength)},
			},
			{
				Name:       fieldMetadata,
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": strconv.Itoa(maxTextLength)},
			},
			{
				Name:       fieldEmbedding,
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": strconv.Itoa(dim)},
			},
		},
	}
}

// Open creates and loads the collection when missing.
func (s *Storage) Open(ctx context.Context) error {
	ok, err := s.client.HasCollection(ctx, s.opts.Collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !ok {
		if err := s.create(ctx); err != nil {
			return err
		}
	}
	if err := s.client.LoadCollection(ctx, s.opts.Collection, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	return nil
}

// Reset drops the collection and creates it again.
func (s *Storage) Reset(ctx context.Context) error {
	ok, err := s.client.HasCollection(ctx, s.opts.Collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if ok {
		if err := s.client.DropCollection(ctx, s.opts.Collection); err != nil {
			return fmt.Errorf("failed to drop collection: %w", err)
		}
	}
	if err := s.create(ctx); err != nil {
		return err
	}
	if err := s.client.LoadCollection(ctx, s.opts.Collection, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	return nil
}

func (s *Storage) create(ctx context.Context) error {
	dim, err := vectorstore.ProbeDimension(ctx, s.embedder)
	if err != nil {
		return err
	}
	if err := s.client.CreateCollection(ctx, collectionSchema(s.opts.Collection, dim), entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	index, err := entity.NewIndexHNSW(entity.L2, 8, 64)
	if err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}
	if err := s.client.CreateIndex(ctx, s.opts.Collection, fieldEmbedding, index, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// columns lays entries out column-wise for Insert.
func columns(entries []domain.VectorEntry, dim int) ([]entity.Column, error) {
	ids := make([]string, len(entries))
	texts := make([]string, len(entries))
	metas := make([]string, len(entries))
	vectors := make([][]float32, len(entries))
	for i, e := range entries {
		if len(e.Embedding) != dim {
			return nil, fmt.Errorf("entry %s: embedding has %d dimensions, want %d", e.ID, len(e.Embedding), dim)
		}
		meta, err := json.Marshal(e.Metadata)
		if err != nil {
			return nil, err
		}
		ids[i], texts[i], metas[i], vectors[i] = e.ID, e.Text, string(meta), e.Embedding
	}
	return []entity.Column{
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnVarChar(fieldText, texts),
		entity.NewColumnVarChar(fieldMetadata, metas),
		entity.NewColumnFloatVector(fieldEmbedding, dim, vectors),
	}, nil
}

func (s *Storage) Add(ctx context.Context, entries []domain.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}
	entries, err := vectorstore.EmbedMissing(ctx, s.embedder, entries)
	if err != nil {
		return err
	}
	cols, err := columns(entries, len(entries[0].Embedding))
	if err != nil {
		return err
	}
	if _, err := s.client.Insert(ctx, s.opts.Collection, "", cols...); err != nil {
		return fmt.Errorf("milvus insert failed: %w", err)
	}
	if err := s.client.Flush(ctx, s.opts.Collection, false); err != nil {
		return fmt.Errorf("milvus flush failed: %w", err)
	}
	return nil
}

func (s *Storage) Query(ctx context.Context, text string, n int) ([]domain.QueryResult, error) {
	if n <= 0 {
		return nil, nil
	}
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, err
	}
	results, err := s.client.Search(
		ctx,
		s.opts.Collection,
		[]string{},
		"",
		[]string{fieldText, fieldMetadata},
		[]entity.Vector{entity.FloatVector(vector)},
		fieldEmbedding,
		entity.L2,
		n,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	if results[0].Err != nil {
		return nil, fmt.Errorf("milvus search error: %w", results[0].Err)
	}
	return decodeResult(results[0]), nil
}

func decodeResult(result client.SearchResult) []domain.QueryResult {
	var ids, texts, metas []string
	if col, ok := result.IDs.(*entity.ColumnVarChar); ok {
		ids = col.Data()
	}
	for _, field := range result.Fields {
		col, ok := field.(*entity.ColumnVarChar)
		if !ok {
			continue
		}
		switch field.Name() {
		case fieldText:
			texts = col.Data()
		case fieldMetadata:
			metas = col.Data()
		}
	}
	out := make([]domain.QueryResult, 0, result.ResultCount)
	for i := 0; i < result.ResultCount; i++ {
		r := domain.QueryResult{Metadata: map[string]string{}}
		if i < len(ids) {
			r.ID = ids[i]
		}
		if i < len(texts) {
			r.Text = texts[i]
		}
		if i < len(metas) {
			var meta map[string]string
			if json.Unmarshal([]byte(metas[i]), &meta) == nil && meta != nil {
				r.Metadata = meta
			}
		}
		if i < len(result.Scores) {
			r.Distance = float64(result.Scores[i])
		}
		out = append(out, r)
	}
	return out
}

func (s *Storage) Count(ctx context.Context) (int, error) {
	stats, err := s.client.GetCollectionStatistics(ctx, s.opts.Collection)
	if err != nil {
		return 0, fmt.Errorf("milvus statistics failed: %w", err)
	}
	n, err := strconv.Atoi(stats["row_count"])
	if err != nil {
		return 0, fmt.Errorf("milvus row count %q: %w", stats["row_count"], err)
	}
	return n, nil
}

func (s *Storage) Has(ctx context.Context, id string) (bool, error) {
	rs, err := s.client.Query(ctx, s.opts.Collection, []string{}, idExpr(id), []string{fieldID})
	if err != nil {
		return false, fmt.Errorf("milvus query failed: %w", err)
	}
	for _, col := range rs {
		if col.Len() > 0 {
			return true, nil
		}
	}
	return false, nil
}

func idExpr(id string) string {
	return fieldID + " == " + strconv.Quote(id)
}

func (s *Storage) Close() error {
	return s.client.Close()
}
