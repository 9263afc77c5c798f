package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/helixml/affinity/domain/embedding"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeEmbedder struct {
	mu    sync.Mutex
	calls []string
	model string
	err   error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float64{float64(len(text)), 1}, nil
}

func (f *fakeEmbedder) Model() string {
	if f.model == "" {
		return "fake-model"
	}
	return f.model
}

type fakeEmbeddingStore struct {
	rows   map[embedding.Key]embedding.Cached
	getErr error
	putErr error
	puts   int
}

func newFakeEmbeddingStore() *fakeEmbeddingStore {
	return &fakeEmbeddingStore{rows: map[embedding.Key]embedding.Cached{}}
}

func (f *fakeEmbeddingStore) Get(_ context.Context, key embedding.Key) (embedding.Cached, bool, error) {
	if f.getErr != nil {
		return embedding.Cached{}, false, f.getErr
	}
	c, ok := f.rows[key]
	return c, ok, nil
}

func (f *fakeEmbeddingStore) Put(_ context.Context, cached embedding.Cached) error {
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	f.rows[cached.Key()] = cached
	return nil
}

func (f *fakeEmbeddingStore) Invalidate(_ context.Context, key embedding.Key) error {
	delete(f.rows, key)
	return nil
}

func newCache(t *testing.T, store embedding.Store, embedder embedding.Embedder) *EmbeddingCache {
	t.Helper()
	c, err := NewEmbeddingCache(store, embedder, embedding.DefaultBudget(), nil)
	require.NoError(t, err)
	return c
}

// --- tests ---

func TestNewEmbeddingCache_NilDependencies(t *testing.T) {
	_, err := NewEmbeddingCache(nil, &fakeEmbedder{}, embedding.DefaultBudget(), nil)
	require.Error(t, err)

	_, err = NewEmbeddingCache(newFakeEmbeddingStore(), nil, embedding.DefaultBudget(), nil)
	require.Error(t, err)
}

func TestEmbeddingCache_HitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newFakeEmbeddingStore()
	embedder := &fakeEmbedder{}
	cache := newCache(t, store, embedder)
	key := embedding.ContactKey("c1")

	first, err := cache.GetOrCompute(ctx, key, "VC partner")
	require.NoError(t, err)
	require.False(t, first.Hit())

	second, err := cache.GetOrCompute(ctx, key, "VC partner")
	require.NoError(t, err)
	require.True(t, second.Hit())
	require.Equal(t, first.Vector(), second.Vector())

	require.Len(t, embedder.calls, 1)
}

func TestEmbeddingCache_TextChangeRecomputes(t *testing.T) {
	ctx := context.Background()
	store := newFakeEmbeddingStore()
	embedder := &fakeEmbedder{}
	cache := newCache(t, store, embedder)
	key := embedding.ContactKey("c1")

	_, err := cache.GetOrCompute(ctx, key, "designer")
	require.NoError(t, err)

	got, err := cache.GetOrCompute(ctx, key, "graphic designer")
	require.NoError(t, err)
	require.False(t, got.Hit())

	require.Len(t, embedder.calls, 2)
	require.Equal(t, embedding.TextHash("graphic designer"), store.rows[key].TextHash())
}

func TestEmbeddingCache_ModelChangeRecomputes(t *testing.T) {
	ctx := context.Background()
	store := newFakeEmbeddingStore()
	key := embedding.GoalKey("g1")

	_, err := newCache(t, store, &fakeEmbedder{model: "small"}).GetOrCompute(ctx, key, "goal")
	require.NoError(t, err)

	large := &fakeEmbedder{model: "large"}
	got, err := newCache(t, store, large).GetOrCompute(ctx, key, "goal")
	require.NoError(t, err)
	require.False(t, got.Hit())
	require.Len(t, large.calls, 1)
	require.Equal(t, "large", store.rows[key].Model())
}

func TestEmbeddingCache_FailureKeepsStoredValue(t *testing.T) {
	ctx := context.Background()
	store := newFakeEmbeddingStore()
	embedder := &fakeEmbedder{}
	cache := newCache(t, store, embedder)
	key := embedding.ContactKey("c1")

	ok, err := cache.GetOrCompute(ctx, key, "old bio")
	require.NoError(t, err)

	embedder.err = errors.New("provider down")
	_, err = cache.GetOrCompute(ctx, key, "new bio")
	require.ErrorIs(t, err, embedding.ErrUnavailable)

	var unavailable *embedding.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	require.Equal(t, ok.Vector(), unavailable.Stale)

	require.Equal(t, embedding.TextHash("old bio"), store.rows[key].TextHash())
	require.Equal(t, 1, store.puts)
}

func TestEmbeddingCache_FailureWithoutStoredValue(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("timeout")}
	cache := newCache(t, newFakeEmbeddingStore(), embedder)

	_, err := cache.GetOrCompute(context.Background(), embedding.ContactKey("c1"), "bio")

	var unavailable *embedding.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	require.False(t, unavailable.HasStale())
}

func TestEmbeddingCache_EmptyText(t *testing.T) {
	embedder := &fakeEmbedder{}
	cache := newCache(t, newFakeEmbeddingStore(), embedder)

	_, err := cache.GetOrCompute(context.Background(), embedding.GoalKey("g1"), "  ")

	require.ErrorIs(t, err, embedding.ErrUnavailable)
	require.ErrorIs(t, err, embedding.ErrEmptyText)
	require.Empty(t, embedder.calls)
}

func TestEmbeddingCache_Truncates(t *testing.T) {
	embedder := &fakeEmbedder{}
	budget, err := embedding.NewBudget(4)
	require.NoError(t, err)
	store := newFakeEmbeddingStore()
	cache, err := NewEmbeddingCache(store, embedder, budget, nil)
	require.NoError(t, err)
	key := embedding.ContactKey("c1")

	_, err = cache.GetOrCompute(context.Background(), key, "Dana Smith | notes")
	require.NoError(t, err)

	require.Equal(t, []string{"Dana"}, embedder.calls)
	require.Equal(t, embedding.TextHash("Dana Smith | notes"), store.rows[key].TextHash(),
		"hash covers the full text")
}

func TestEmbeddingCache_WriteFailureStillReturnsVector(t *testing.T) {
	store := newFakeEmbeddingStore()
	store.putErr = errors.New("disk full")
	cache := newCache(t, store, &fakeEmbedder{})

	got, err := cache.GetOrCompute(context.Background(), embedding.ContactKey("c1"), "bio")

	require.NoError(t, err)
	require.NotEmpty(t, got.Vector())
}

func TestEmbeddingCache_ReadFailureTreatedAsMiss(t *testing.T) {
	store := newFakeEmbeddingStore()
	store.getErr = errors.New("connection reset")
	embedder := &fakeEmbedder{}
	cache := newCache(t, store, embedder)

	got, err := cache.GetOrCompute(context.Background(), embedding.ContactKey("c1"), "bio")

	require.NoError(t, err)
	require.False(t, got.Hit())
	require.Len(t, embedder.calls, 1)
}

func TestEmbeddingCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	store := newFakeEmbeddingStore()
	embedder := &fakeEmbedder{}
	cache := newCache(t, store, embedder)
	key := embedding.GoalKey("g1")

	_, err := cache.GetOrCompute(ctx, key, strings.Repeat("x", 10))
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx, key))

	_, err = cache.GetOrCompute(ctx, key, strings.Repeat("x", 10))
	require.NoError(t, err)
	require.Len(t, embedder.calls, 2)
}
