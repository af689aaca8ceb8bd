package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kbqa/internal/config"
	"kbqa/internal/metrics"
)

func TestNewComponents_Defaults(t *testing.T) {
	cfg := config.Default()

	emb, err := newEmbedder(cfg.Embedder)
	require.NoError(t, err)
	assert.Equal(t, "hashing", emb.Name())
	assert.Equal(t, 8192, emb.Dimension())

	_, err = newChunker(cfg.Chunker)
	require.NoError(t, err)

	gen, err := newGenerator(cfg.Generator)
	require.NoError(t, err)
	assert.Equal(t, "extractive", gen.Name())
}

func TestNewComponents_UnknownTypes(t *testing.T) {
	_, err := newEmbedder(config.EmbedderConfig{Type: "word2vec"})
	assert.Error(t, err)
	_, err = newChunker(config.ChunkerConfig{Type: "paragraph"})
	assert.Error(t, err)
	_, err = newStore(context.Background(), config.VectorStoreConfig{Type: "faiss"}, "x", nil)
	assert.Error(t, err)
	_, err = newGenerator(config.GeneratorConfig{Type: "t5"})
	assert.Error(t, err)
}

func TestNewComponents_MissingSections(t *testing.T) {
	_, err := newEmbedder(config.EmbedderConfig{Type: "openai"})
	assert.Error(t, err)
	_, err = newStore(context.Background(), config.VectorStoreConfig{Type: "qdrant"}, "x", nil)
	assert.Error(t, err)
	_, err = newGenerator(config.GeneratorConfig{Type: "openai"})
	assert.Error(t, err)
}

func TestKnowledgeBase_EndToEndOffline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "biology.txt")
	require.NoError(t, os.WriteFile(path, []byte("Mitochondria are the powerhouse of the cell. They produce ATP through respiration."), 0o644))

	ctx := context.Background()
	e := &env{cfg: config.Default(), log: zap.NewNop(), metrics: metrics.New()}
	kb, closeStore, err := newKnowledgeBase(ctx, e)
	require.NoError(t, err)
	defer func() { _ = closeStore() }()

	n, err := kb.UploadPaths(ctx, []string{path})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ans, err := kb.Ask(ctx, "Mitochondria are the powerhouse of the cell.")
	require.NoError(t, err)
	assert.False(t, ans.Fallback)
	assert.Equal(t, "biology.txt", ans.Source)
}

func TestConfigInit_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfgPath = path
	defer func() { cfgPath = "" }()

	var out bytes.Buffer
	configInitCmd.SetOut(&out)
	require.NoError(t, configInitCmd.RunE(configInitCmd, nil))
	assert.Contains(t, out.String(), path)

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), loaded)

	assert.Error(t, configInitCmd.RunE(configInitCmd, nil))
}
