package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/helixml/affinity/domain/contact"
	"github.com/helixml/affinity/domain/query"
	"github.com/helixml/affinity/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContactStore implements contact.Store using GORM.
type ContactStore struct {
	db     database.Database
	mapper ContactMapper
}

// NewContactStore creates a new ContactStore.
func NewContactStore(db database.Database) ContactStore {
	return ContactStore{db: db, mapper: ContactMapper{}}
}

func (s ContactStore) withInteractions(ctx context.Context) *gorm.DB {
	return s.db.Session(ctx).Preload("Interactions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// Find retrieves contacts matching the given options, interactions included.
func (s ContactStore) Find(ctx context.Context, options ...query.Option) ([]contact.Contact, error) {
	var models []ContactModel
	db := database.ApplyOptions(s.withInteractions(ctx), options...)
	if result := db.Find(&models); result.Error != nil {
		return nil, fmt.Errorf("find contacts: %w", result.Error)
	}

	contacts := make([]contact.Contact, len(models))
	for i, m := range models {
		contacts[i] = s.mapper.ToDomain(m)
	}
	return contacts, nil
}

// FindOne retrieves a single contact matching the given options.
func (s ContactStore) FindOne(ctx context.Context, options ...query.Option) (contact.Contact, error) {
	var model ContactModel
	db := database.ApplyOptions(s.withInteractions(ctx), options...)
	if result := db.First(&model); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return contact.Contact{}, fmt.Errorf("%w: contact", database.ErrNotFound)
		}
		return contact.Contact{}, fmt.Errorf("find one contact: %w", result.Error)
	}
	return s.mapper.ToDomain(model), nil
}

// Save creates or updates a contact and replaces its interactions in one
// transaction.
func (s ContactStore) Save(ctx context.Context, c contact.Contact) (contact.Contact, error) {
	model := s.mapper.ToModel(c)
	now := time.Now().UTC()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	model.UpdatedAt = now
	interactions := model.Interactions
	model.Interactions = nil

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		result := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"owner_id", "name", "notes", "company", "title", "linkedin", "twitter", "updated_at",
			}),
		}).Create(&model)
		if result.Error != nil {
			return fmt.Errorf("upsert contact: %w", result.Error)
		}
		if err := tx.Where("contact_id = ?", model.ID).Delete(&InteractionModel{}).Error; err != nil {
			return fmt.Errorf("clear interactions: %w", err)
		}
		if len(interactions) == 0 {
			return nil
		}
		if err := tx.Create(&interactions).Error; err != nil {
			return fmt.Errorf("save interactions: %w", err)
		}
		return nil
	})
	if err != nil {
		return contact.Contact{}, fmt.Errorf("save contact: %w", err)
	}

	model.Interactions = interactions
	return s.mapper.ToDomain(model), nil
}

// Delete removes a contact and its interactions.
func (s ContactStore) Delete(ctx context.Context, c contact.Contact) error {
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Where("contact_id = ?", c.ID()).Delete(&InteractionModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", c.ID()).Delete(&ContactModel{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}
