package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Development bool   `yaml:"development"`
	File        string `yaml:"file"`
}

// OpenAIConfig holds connection details for an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" validate:"gte=0"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string        `yaml:"type" validate:"oneof=hashing openai"`
	Dimension int           `yaml:"dimension" validate:"gte=0"`
	OpenAI    *OpenAIConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Type              string   `yaml:"type" validate:"oneof=recursive sentence"`
	ChunkSize         int      `yaml:"chunk_size" validate:"gt=0"`
	ChunkOverlap      int      `yaml:"chunk_overlap" validate:"gte=0,ltfield=ChunkSize"`
	Separators        []string `yaml:"separators"`
	SentencesPerChunk int      `yaml:"sentences_per_chunk" validate:"gte=0"`
	OverlapSentences  int      `yaml:"overlap_sentences" validate:"gte=0"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type       string        `yaml:"type" validate:"oneof=chromem qdrant milvus"`
	Collection string        `yaml:"collection"`
	Qdrant     *QdrantConfig `yaml:"qdrant,omitempty"`
	Milvus     *MilvusConfig `yaml:"milvus,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// MilvusConfig contains connection details for a Milvus vector store.
type MilvusConfig struct {
	Address     string `yaml:"address"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	Database    string `yaml:"database"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// GeneratorConfig selects the answer generation model.
type GeneratorConfig struct {
	Type      string        `yaml:"type" validate:"oneof=extractive openai"`
	MaxTokens int           `yaml:"max_tokens" validate:"gt=0"`
	OpenAI    *OpenAIConfig `yaml:"openai,omitempty"`
}

// ConverterConfig configures document-to-text conversion.
type ConverterConfig struct {
	PDFBackend       string `yaml:"pdf_backend" validate:"oneof=plain unipdf"`
	UnidocLicenseEnv string `yaml:"unidoc_license_env"`
}

// RetrievalConfig holds the query size and the relevance gate threshold.
type RetrievalConfig struct {
	TopK        int     `yaml:"top_k" validate:"gt=0"`
	MaxDistance float64 `yaml:"max_distance" validate:"gt=0"`
}

// HistoryConfig caps the in-session search history.
type HistoryConfig struct {
	MaxEntries int `yaml:"max_entries" validate:"gt=0"`
}

// MetricsConfig enables the Prometheus listener when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Log         LogConfig         `yaml:"log"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Generator   GeneratorConfig   `yaml:"generator"`
	Converter   ConverterConfig   `yaml:"converter"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	History     HistoryConfig     `yaml:"history"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

const unsetOverlap = -1

// DefaultSeparators are tried in priority order by the recursive chunker.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	// An explicit chunk_overlap of 0 is valid, so absence is marked apart.
	cfg := AppConfig{Chunker: ChunkerConfig{ChunkOverlap: unsetOverlap}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/kbqa/config.yaml.
// If neither exists, defaults are returned without touching the disk.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := DefaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	return Default(), "", nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the value ranges and component names.
func (c *AppConfig) Validate() error {
	return validator.New().Struct(c)
}

// DefaultUserConfigPath is ~/.config/kbqa/config.yaml.
func DefaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "kbqa", "config.yaml"), nil
}

// Default returns the built-in offline configuration: hashing embedder,
// in-process chromem store and extractive generator.
func Default() *AppConfig {
	cfg := &AppConfig{
		Log:         LogConfig{Level: "info"},
		Embedder:    EmbedderConfig{Type: "hashing"},
		Chunker:     ChunkerConfig{Type: "recursive", ChunkOverlap: unsetOverlap},
		VectorStore: VectorStoreConfig{Type: "chromem"},
		Generator:   GeneratorConfig{Type: "extractive"},
		Converter:   ConverterConfig{PDFBackend: "plain"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "hashing"
	}
	if cfg.Embedder.Dimension == 0 && cfg.Embedder.Type == "hashing" {
		cfg.Embedder.Dimension = 8192
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIConfig{}
		}
		applyOpenAIDefaults(cfg.Embedder.OpenAI, "text-embedding-3-small")
	}
	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = "recursive"
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 700
	}
	if cfg.Chunker.ChunkOverlap == unsetOverlap {
		cfg.Chunker.ChunkOverlap = 100
	}
	if len(cfg.Chunker.Separators) == 0 {
		cfg.Chunker.Separators = append([]string(nil), DefaultSeparators...)
	}
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = 5
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "chromem"
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "documents"
	}
	if cfg.VectorStore.Type == "qdrant" {
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{}
		}
		if cfg.VectorStore.Qdrant.URL == "" {
			cfg.VectorStore.Qdrant.URL = "http://localhost:6333"
		}
		if cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
			cfg.VectorStore.Qdrant.TimeoutSecs = 15
		}
	}
	if cfg.VectorStore.Type == "milvus" {
		if cfg.VectorStore.Milvus == nil {
			cfg.VectorStore.Milvus = &MilvusConfig{}
		}
		if cfg.VectorStore.Milvus.Address == "" {
			cfg.VectorStore.Milvus.Address = "localhost:19530"
		}
		if cfg.VectorStore.Milvus.TimeoutSecs == 0 {
			cfg.VectorStore.Milvus.TimeoutSecs = 10
		}
	}
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = "extractive"
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = 150
	}
	if cfg.Generator.Type == "openai" {
		if cfg.Generator.OpenAI == nil {
			cfg.Generator.OpenAI = &OpenAIConfig{}
		}
		applyOpenAIDefaults(cfg.Generator.OpenAI, "gpt-4o-mini")
	}
	if cfg.Converter.PDFBackend == "" {
		cfg.Converter.PDFBackend = "plain"
	}
	if cfg.Converter.UnidocLicenseEnv == "" {
		cfg.Converter.UnidocLicenseEnv = "UNIDOC_LICENSE_API_KEY"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Retrieval.MaxDistance == 0 {
		cfg.Retrieval.MaxDistance = 1.5
	}
	if cfg.History.MaxEntries == 0 {
		cfg.History.MaxEntries = 10
	}
}

func applyOpenAIDefaults(c *OpenAIConfig, model string) {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Model == "" {
		c.Model = model
	}
	if c.TimeoutSecs == 0 {
		c.TimeoutSecs = 30
	}
}
