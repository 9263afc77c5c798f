package embedding

import "context"

// Store persists the last computed embedding per entity.
type Store interface {
	// Get returns the cached embedding for key. The boolean is false when
	// nothing is stored.
	Get(ctx context.Context, key Key) (Cached, bool, error)

	// Put stores the vector and its text hash atomically, replacing any
	// previous value for the key.
	Put(ctx context.Context, cached Cached) error

	// Invalidate removes the cached embedding for key.
	Invalidate(ctx context.Context, key Key) error
}
