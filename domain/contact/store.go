package contact

import (
	"context"

	"github.com/helixml/affinity/domain/query"
)

// Store defines persistence for contacts and their interactions.
type Store interface {
	// Find returns contacts matching the given options, interactions included.
	Find(ctx context.Context, options ...query.Option) ([]Contact, error)

	// FindOne returns the single contact matching the options.
	// The error wraps database.ErrNotFound when nothing matches.
	FindOne(ctx context.Context, options ...query.Option) (Contact, error)

	// Save creates or updates a contact and replaces its interactions.
	Save(ctx context.Context, c Contact) (Contact, error)

	// Delete removes a contact and its interactions.
	Delete(ctx context.Context, c Contact) error
}
