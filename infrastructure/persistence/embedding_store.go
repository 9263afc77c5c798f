package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/helixml/affinity/domain/embedding"
	"github.com/helixml/affinity/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmbeddingStore implements embedding.Store using GORM. Each row pairs a
// vector with the hash of its source text.
type EmbeddingStore struct {
	db     database.Database
	mapper EmbeddingMapper
}

// NewEmbeddingStore creates a new EmbeddingStore.
func NewEmbeddingStore(db database.Database) EmbeddingStore {
	return EmbeddingStore{db: db, mapper: EmbeddingMapper{}}
}

// Get returns the cached embedding for key.
func (s EmbeddingStore) Get(ctx context.Context, key embedding.Key) (embedding.Cached, bool, error) {
	var model EmbeddingModel
	result := s.db.Session(ctx).
		Where("entity_type = ? AND entity_id = ?", string(key.EntityType()), key.EntityID()).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return embedding.Cached{}, false, nil
		}
		return embedding.Cached{}, false, fmt.Errorf("get embedding %s: %w", key, result.Error)
	}
	return s.mapper.ToDomain(model), true, nil
}

// Put upserts the vector and hash in a single statement.
func (s EmbeddingStore) Put(ctx context.Context, cached embedding.Cached) error {
	model := s.mapper.ToModel(cached)
	if model.UpdatedAt.IsZero() {
		model.UpdatedAt = time.Now().UTC()
	}

	result := s.db.Session(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entity_type"}, {Name: "entity_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"model", "text_hash", "vector", "updated_at"}),
	}).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("put embedding %s: %w", cached.Key(), result.Error)
	}
	return nil
}

// Invalidate deletes the cached embedding for key.
func (s EmbeddingStore) Invalidate(ctx context.Context, key embedding.Key) error {
	result := s.db.Session(ctx).
		Where("entity_type = ? AND entity_id = ?", string(key.EntityType()), key.EntityID()).
		Delete(&EmbeddingModel{})
	if result.Error != nil {
		return fmt.Errorf("invalidate embedding %s: %w", key, result.Error)
	}
	return nil
}

// Count returns the number of cached embeddings of the given type.
func (s EmbeddingStore) Count(ctx context.Context, entityType embedding.EntityType) (int64, error) {
	var count int64
	result := s.db.Session(ctx).Model(&EmbeddingModel{}).
		Where("entity_type = ?", string(entityType)).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("count embeddings: %w", result.Error)
	}
	return count, nil
}
