package provider

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func embedOne(t *testing.T, h *HashingEmbedder, text string) []float64 {
	t.Helper()
	resp, err := h.Embed(context.Background(), NewEmbeddingRequest([]string{text}))
	require.NoError(t, err)
	require.Len(t, resp.Embeddings(), 1)
	return resp.Embeddings()[0]
}

func TestHashingEmbedder_Deterministic(t *testing.T) {
	h := NewHashingEmbedder(0)
	require.Equal(t, DefaultHashingDimension, h.Dimension())
	require.Equal(t, "hashing-fnv1a-512", h.Model())

	a := embedOne(t, h, "VC partner, healthcare investments")
	b := embedOne(t, h, "VC partner, healthcare investments")
	require.Equal(t, a, b)
	require.Len(t, a, DefaultHashingDimension)
}

func TestHashingEmbedder_Normalized(t *testing.T) {
	h := NewHashingEmbedder(64)
	v := embedOne(t, h, "Seed round for a healthcare AI startup")
	require.InDelta(t, 1.0, math.Sqrt(dot(v, v)), 1e-9)
}

func TestHashingEmbedder_CaseAndPunctuationInsensitive(t *testing.T) {
	h := NewHashingEmbedder(128)
	require.Equal(t,
		embedOne(t, h, "Healthcare, AI!"),
		embedOne(t, h, "healthcare ai"),
	)
}

func TestHashingEmbedder_StopwordsOnlyIsZero(t *testing.T) {
	h := NewHashingEmbedder(32)
	v := embedOne(t, h, "the and of a")
	require.Zero(t, dot(v, v))
}

func TestHashingEmbedder_SharedTermsScoreHigher(t *testing.T) {
	h := NewHashingEmbedder(0)
	goal := embedOne(t, h, "Raise a seed round for a healthcare AI startup")
	investor := embedOne(t, h, "Alice Chen | VC partner, healthcare investments")
	designer := embedOne(t, h, "Bob Smith | graphic designer, no industry specified")

	require.Greater(t, dot(goal, investor), dot(goal, designer))
}

func TestHashingEmbedder_Batch(t *testing.T) {
	h := NewHashingEmbedder(16)
	resp, err := h.Embed(context.Background(), NewEmbeddingRequest([]string{"one", "two", ""}))
	require.NoError(t, err)
	require.Len(t, resp.Embeddings(), 3)
	require.Equal(t, 2, resp.Usage().TotalTokens())
}
