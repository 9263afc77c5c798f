package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/helixml/affinity/domain/contact"
	"github.com/helixml/affinity/domain/embedding"
	"github.com/helixml/affinity/domain/goal"
	"github.com/helixml/affinity/domain/query"
	domainservice "github.com/helixml/affinity/domain/service"
	"github.com/helixml/affinity/internal/database"
)

// Directory is the write side for goals and contacts. Deleting a record
// also deletes its cached embedding.
type Directory struct {
	goals    goal.Store
	contacts contact.Store
	cache    *domainservice.EmbeddingCache
	logger   *slog.Logger
}

// NewDirectory creates a new Directory.
func NewDirectory(
	goals goal.Store,
	contacts contact.Store,
	cache *domainservice.EmbeddingCache,
	logger *slog.Logger,
) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		goals:    goals,
		contacts: contacts,
		cache:    cache,
		logger:   logger,
	}
}

// Goal returns a goal by ID.
func (d *Directory) Goal(ctx context.Context, id string) (goal.Goal, error) {
	g, err := d.goals.FindOne(ctx, query.WithID(id))
	if err != nil {
		return goal.Goal{}, translate("goal", id, err)
	}
	return g, nil
}

// Goals returns an owner's goals, oldest first.
func (d *Directory) Goals(ctx context.Context, ownerID string) ([]goal.Goal, error) {
	goals, err := d.goals.Find(ctx,
		query.WithOwnerID(ownerID),
		query.WithOrderAsc("created_at"),
		query.WithOrderAsc("id"),
	)
	if err != nil {
		return nil, fmt.Errorf("list goals for %s: %w", ownerID, err)
	}
	return goals, nil
}

// SaveGoal creates or replaces a goal. A changed description makes the
// cached embedding stale through its text hash.
func (d *Directory) SaveGoal(ctx context.Context, g goal.Goal) (goal.Goal, error) {
	if err := validate("goal", g.ID(), g.OwnerID()); err != nil {
		return goal.Goal{}, err
	}
	saved, err := d.goals.Save(ctx, g)
	if err != nil {
		return goal.Goal{}, fmt.Errorf("save goal %s: %w", g.ID(), err)
	}
	return saved, nil
}

// DeleteGoal removes a goal and its cached embedding.
func (d *Directory) DeleteGoal(ctx context.Context, id string) error {
	g, err := d.Goal(ctx, id)
	if err != nil {
		return err
	}
	if err := d.goals.Delete(ctx, g); err != nil {
		return fmt.Errorf("delete goal %s: %w", id, err)
	}
	d.invalidate(ctx, embedding.GoalKey(id))
	return nil
}

// Contact returns a contact by ID.
func (d *Directory) Contact(ctx context.Context, id string) (contact.Contact, error) {
	c, err := d.contacts.FindOne(ctx, query.WithID(id))
	if err != nil {
		return contact.Contact{}, translate("contact", id, err)
	}
	return c, nil
}

// Contacts returns an owner's contacts, oldest first.
func (d *Directory) Contacts(ctx context.Context, ownerID string) ([]contact.Contact, error) {
	contacts, err := d.contacts.Find(ctx,
		query.WithOwnerID(ownerID),
		query.WithOrderAsc("created_at"),
		query.WithOrderAsc("id"),
	)
	if err != nil {
		return nil, fmt.Errorf("list contacts for %s: %w", ownerID, err)
	}
	return contacts, nil
}

// SaveContact creates or replaces a contact and its interactions.
func (d *Directory) SaveContact(ctx context.Context, c contact.Contact) (contact.Contact, error) {
	if err := validate("contact", c.ID(), c.OwnerID()); err != nil {
		return contact.Contact{}, err
	}
	saved, err := d.contacts.Save(ctx, c)
	if err != nil {
		return contact.Contact{}, fmt.Errorf("save contact %s: %w", c.ID(), err)
	}
	return saved, nil
}

// DeleteContact removes a contact and its cached embedding.
func (d *Directory) DeleteContact(ctx context.Context, id string) error {
	c, err := d.Contact(ctx, id)
	if err != nil {
		return err
	}
	if err := d.contacts.Delete(ctx, c); err != nil {
		return fmt.Errorf("delete contact %s: %w", id, err)
	}
	d.invalidate(ctx, embedding.ContactKey(id))
	return nil
}

// invalidate drops a cached embedding. A leftover row is harmless: nothing
// reads it once the entity is gone.
func (d *Directory) invalidate(ctx context.Context, key embedding.Key) {
	if d.cache == nil {
		return
	}
	if err := d.cache.Invalidate(ctx, key); err != nil {
		d.logger.WarnContext(ctx, "failed to delete cached embedding",
			slog.String("key", key.String()),
			slog.String("error", err.Error()),
		)
	}
}

func validate(kind, id, ownerID string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %s id is required", ErrInvalidInput, kind)
	}
	if strings.TrimSpace(ownerID) == "" {
		return fmt.Errorf("%w: %s %s: owner is required", ErrInvalidInput, kind, id)
	}
	return nil
}

func translate(kind, id string, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return fmt.Errorf("load %s %s: %w", kind, id, err)
}
