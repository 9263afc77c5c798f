package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/helixml/affinity/domain/embedding"
)

// Lookup is the result of an embedding cache lookup.
type Lookup struct {
	vector []float64
	hit    bool
}

// Vector returns the embedding vector.
func (l Lookup) Vector() []float64 { return l.vector }

// Hit reports whether the vector came from the cache without a provider call.
func (l Lookup) Hit() bool { return l.hit }

// EmbeddingCache applies the cache policy around an embedder: reuse the
// stored vector while its text hash and model match, recompute otherwise.
type EmbeddingCache struct {
	store    embedding.Store
	embedder embedding.Embedder
	budget   embedding.Budget
	logger   *slog.Logger
}

// NewEmbeddingCache creates a new EmbeddingCache.
// The budget controls truncation of text before it reaches the embedder.
func NewEmbeddingCache(
	store embedding.Store,
	embedder embedding.Embedder,
	budget embedding.Budget,
	logger *slog.Logger,
) (*EmbeddingCache, error) {
	if store == nil {
		return nil, fmt.Errorf("NewEmbeddingCache: nil store")
	}
	if embedder == nil {
		return nil, fmt.Errorf("NewEmbeddingCache: nil embedder")
	}
	if budget.MaxChars() <= 0 {
		budget = embedding.DefaultBudget()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingCache{
		store:    store,
		embedder: embedder,
		budget:   budget,
		logger:   logger,
	}, nil
}

// Model returns the identifier of the active embedding model.
func (c *EmbeddingCache) Model() string { return c.embedder.Model() }

// GetOrCompute returns the embedding for text under key.
//
// A stored vector whose hash matches the text (and whose model matches the
// active embedder) is returned without calling the embedder. Otherwise the
// truncated text is embedded and stored with its hash. On failure the stored
// value is left untouched and the returned *embedding.UnavailableError
// carries it as Stale.
func (c *EmbeddingCache) GetOrCompute(ctx context.Context, key embedding.Key, text string) (Lookup, error) {
	if strings.TrimSpace(text) == "" {
		return Lookup{}, &embedding.UnavailableError{Key: key, Err: embedding.ErrEmptyText}
	}

	hash := embedding.TextHash(text)
	model := c.embedder.Model()

	cached, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("embedding cache read failed",
			slog.String("key", key.String()),
			slog.String("error", err.Error()),
		)
		found = false
	}
	if found && cached.Fresh(hash, model) {
		return Lookup{vector: cached.Vector(), hit: true}, nil
	}

	vector, err := c.embedder.Embed(ctx, c.budget.Truncate(text))
	if err == nil && len(vector) == 0 {
		err = fmt.Errorf("%w: empty vector", embedding.ErrUnavailable)
	}
	if err != nil {
		unavailable := &embedding.UnavailableError{Key: key, Err: err}
		if found {
			unavailable.Stale = cached.Vector()
		}
		return Lookup{}, unavailable
	}

	if err := c.store.Put(ctx, embedding.NewCached(key, model, hash, vector)); err != nil {
		c.logger.Warn("embedding cache write failed",
			slog.String("key", key.String()),
			slog.String("error", err.Error()),
		)
	}

	return Lookup{vector: vector}, nil
}

// Invalidate removes the cached embedding for key.
func (c *EmbeddingCache) Invalidate(ctx context.Context, key embedding.Key) error {
	if err := c.store.Invalidate(ctx, key); err != nil {
		return fmt.Errorf("invalidate %s: %w", key, err)
	}
	return nil
}
