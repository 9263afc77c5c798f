package provider

import (
	"context"
	"fmt"

	"github.com/helixml/affinity/domain/embedding"
)

// Adapter exposes a batch Embedder as a single-text embedding.Embedder.
type Adapter struct {
	embedder Embedder
	model    string
}

// NewAdapter creates an Adapter. model identifies the vectors produced by
// embedder; cached vectors from another model are treated as stale.
func NewAdapter(embedder Embedder, model string) *Adapter {
	return &Adapter{embedder: embedder, model: model}
}

// Model returns the model identifier.
func (a *Adapter) Model() string { return a.model }

// Embed returns the vector for text. Every failure wraps embedding.ErrUnavailable.
func (a *Adapter) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := a.embedder.Embed(ctx, NewEmbeddingRequest([]string{text}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", embedding.ErrUnavailable, err)
	}
	vectors := resp.Embeddings()
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("%w: %w", embedding.ErrUnavailable, ErrEmptyResponse)
	}
	return vectors[0], nil
}

var _ embedding.Embedder = (*Adapter)(nil)
