package embedding

import "context"

// Embedder maps text to a fixed-dimension vector.
type Embedder interface {
	// Embed returns the vector for text. Failures wrap ErrUnavailable.
	Embed(ctx context.Context, text string) ([]float64, error)

	// Model identifies the vectors this embedder produces. Cached vectors
	// from a different model are treated as stale.
	Model() string
}
