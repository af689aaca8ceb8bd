package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"kbqa/internal/chunker"
	"kbqa/internal/config"
	"kbqa/internal/converter"
	"kbqa/internal/domain"
	"kbqa/internal/embedding/hashing"
	"kbqa/internal/embedding/openai"
	"kbqa/internal/generator"
	"kbqa/internal/service"
	"kbqa/internal/vectorstore/chromem"
	"kbqa/internal/vectorstore/milvus"
	"kbqa/internal/vectorstore/qdrant"
)

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func newEmbedder(cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "hashing", "":
		return hashing.NewEmbedder(cfg.Dimension), nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.OpenAI.Model,
			Dimension: cfg.Dimension,
			Timeout:   seconds(cfg.OpenAI.TimeoutSecs),
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}

func newChunker(cfg config.ChunkerConfig) (domain.Chunker, error) {
	switch cfg.Type {
	case "recursive", "":
		return chunker.NewRecursiveChunker(cfg.ChunkSize, cfg.ChunkOverlap, cfg.Separators), nil
	case "sentence":
		return chunker.NewSentenceChunker(cfg.SentencesPerChunk, cfg.OverlapSentences), nil
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Type)
	}
}

func newStore(ctx context.Context, cfg config.VectorStoreConfig, collection string, emb domain.Embedder) (domain.VectorStore, error) {
	switch cfg.Type {
	case "chromem", "":
		return chromem.NewStorage(chromem.NewDB(), collection, emb), nil
	case "qdrant":
		if cfg.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        cfg.Qdrant.URL,
			APIKey:     cfg.Qdrant.APIKey,
			Collection: collection,
			Timeout:    seconds(cfg.Qdrant.TimeoutSecs),
		}, emb), nil
	case "milvus":
		if cfg.Milvus == nil {
			return nil, fmt.Errorf("milvus config missing")
		}
		return milvus.NewStorage(ctx, milvus.Options{
			Address:    cfg.Milvus.Address,
			Username:   cfg.Milvus.Username,
			Password:   cfg.Milvus.Password,
			Database:   cfg.Milvus.Database,
			Collection: collection,
			Timeout:    seconds(cfg.Milvus.TimeoutSecs),
		}, emb)
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.Type)
	}
}

func newGenerator(cfg config.GeneratorConfig) (domain.Generator, error) {
	switch cfg.Type {
	case "extractive", "":
		return generator.NewExtractive(0), nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai generator config missing")
		}
		gen, err := generator.NewOpenAI(generator.OpenAIConfig{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.OpenAI.Model,
			Timeout:   seconds(cfg.OpenAI.TimeoutSecs),
		})
		if err != nil {
			return nil, fmt.Errorf("openai generator init failed: %w", err)
		}
		return gen, nil
	default:
		return nil, fmt.Errorf("unknown generator: %s", cfg.Type)
	}
}

func answerOptions(cfg *config.AppConfig) service.AnswerOptions {
	return service.AnswerOptions{
		TopK:        cfg.Retrieval.TopK,
		MaxDistance: cfg.Retrieval.MaxDistance,
		MaxTokens:   cfg.Generator.MaxTokens,
	}
}

// pipeline holds the components shared by both apps.
type pipeline struct {
	store     domain.VectorStore
	generator domain.Generator
}

func newPipeline(ctx context.Context, e *env, collection string) (*pipeline, error) {
	emb, err := newEmbedder(e.cfg.Embedder)
	if err != nil {
		return nil, err
	}
	st, err := newStore(ctx, e.cfg.VectorStore, collection, emb)
	if err != nil {
		return nil, err
	}
	gen, err := newGenerator(e.cfg.Generator)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	e.log.Info("pipeline ready",
		zap.String("embedder", emb.Name()),
		zap.String("store", e.cfg.VectorStore.Type),
		zap.String("collection", collection),
		zap.String("generator", gen.Name()))
	return &pipeline{store: st, generator: gen}, nil
}

func newKnowledgeBase(ctx context.Context, e *env) (*service.KnowledgeBase, func() error, error) {
	ch, err := newChunker(e.cfg.Chunker)
	if err != nil {
		return nil, nil, err
	}
	p, err := newPipeline(ctx, e, e.cfg.VectorStore.Collection)
	if err != nil {
		return nil, nil, err
	}
	kb := service.NewKnowledgeBase(service.KnowledgeBaseDeps{
		Converter: converter.NewManager(converter.Options{
			PDFBackend:       e.cfg.Converter.PDFBackend,
			UnidocLicenseEnv: e.cfg.Converter.UnidocLicenseEnv,
		}, e.log),
		Chunker:   ch,
		Store:     p.store,
		Generator: p.generator,
		Answer:    answerOptions(e.cfg),
		History:   e.cfg.History.MaxEntries,
		Metrics:   e.metrics,
		Logger:    e.log,
	})
	if err := kb.Start(ctx); err != nil {
		_ = p.store.Close()
		return nil, nil, fmt.Errorf("failed to start knowledge base: %w", err)
	}
	return kb, p.store.Close, nil
}
