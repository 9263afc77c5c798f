package goal

import (
	"context"

	"github.com/helixml/affinity/domain/query"
)

// Store defines persistence for goals.
type Store interface {
	// Find returns goals matching the given options.
	Find(ctx context.Context, options ...query.Option) ([]Goal, error)

	// FindOne returns the single goal matching the options.
	// The error wraps database.ErrNotFound when nothing matches.
	FindOne(ctx context.Context, options ...query.Option) (Goal, error)

	// Save creates or updates a goal.
	Save(ctx context.Context, g Goal) (Goal, error)

	// Delete removes a goal.
	Delete(ctx context.Context, g Goal) error
}
