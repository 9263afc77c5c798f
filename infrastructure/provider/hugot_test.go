package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTokenizer(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tokenizer.json"), []byte(`{}`), 0o644))
}

func TestHugotEmbedding_ModelPath(t *testing.T) {
	t.Run("model directory itself", func(t *testing.T) {
		dir := t.TempDir()
		writeTokenizer(t, dir)

		got, err := NewHugotEmbedding(dir).modelPath()
		require.NoError(t, err)
		require.Equal(t, dir, got)
	})

	t.Run("model in subdirectory", func(t *testing.T) {
		dir := t.TempDir()
		sub := filepath.Join(dir, "all-MiniLM-L6-v2")
		writeTokenizer(t, sub)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("readme"), 0o644))

		emb := NewHugotEmbedding(dir)
		got, err := emb.modelPath()
		require.NoError(t, err)
		require.Equal(t, sub, got)
		require.True(t, emb.Available())
		require.Equal(t, "hugot:all-MiniLM-L6-v2", emb.Model())
	})

	t.Run("directory without tokenizer", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "incomplete"), 0o755))

		emb := NewHugotEmbedding(dir)
		_, err := emb.modelPath()
		require.ErrorIs(t, err, ErrModelNotFound)
		require.False(t, emb.Available())
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := NewHugotEmbedding("").modelPath()
		require.ErrorIs(t, err, ErrModelNotFound)
	})
}

func TestHugotEmbedding_EmbedEmpty(t *testing.T) {
	emb := NewHugotEmbedding(t.TempDir())

	resp, err := emb.Embed(context.Background(), NewEmbeddingRequest(nil))
	require.NoError(t, err)
	require.Empty(t, resp.Embeddings())
}

func TestHugotEmbedding_EmbedOverCapacity(t *testing.T) {
	emb := NewHugotEmbedding(t.TempDir())

	texts := make([]string, emb.Capacity()+1)
	for i := range texts {
		texts[i] = "text"
	}
	_, err := emb.Embed(context.Background(), NewEmbeddingRequest(texts))
	require.Error(t, err)
}

func TestHugotEmbedding_CancelledContext(t *testing.T) {
	emb := NewHugotEmbedding(t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := emb.Embed(ctx, NewEmbeddingRequest([]string{"hello"}))
	require.ErrorIs(t, err, context.Canceled)
}

func TestHugotEmbedding_MissingModel(t *testing.T) {
	emb := NewHugotEmbedding(t.TempDir())

	_, err := emb.Embed(context.Background(), NewEmbeddingRequest([]string{"hello"}))
	require.ErrorIs(t, err, ErrModelNotFound)
}

func TestHugotEmbedding_CloseWithoutSession(t *testing.T) {
	emb := NewHugotEmbedding(t.TempDir())
	require.NoError(t, emb.Close())
	require.NoError(t, emb.Close())
}

func TestHugotEmbedding_RealModel(t *testing.T) {
	dir := os.Getenv("AFFINITY_TEST_MODEL_DIR")
	if dir == "" {
		t.Skip("set AFFINITY_TEST_MODEL_DIR to run against a local model")
	}

	emb := NewHugotEmbedding(dir)
	defer func() { require.NoError(t, emb.Close()) }()

	resp, err := emb.Embed(context.Background(), NewEmbeddingRequest([]string{"healthcare investor", "healthcare investor"}))
	require.NoError(t, err)

	embeddings := resp.Embeddings()
	require.Len(t, embeddings, 2)
	require.NotEmpty(t, embeddings[0])
	require.Equal(t, len(embeddings[0]), len(embeddings[1]))
}
