package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/helixml/affinity/domain/goal"
	"github.com/helixml/affinity/internal/database"
	"gorm.io/gorm/clause"
)

// GoalStore implements goal.Store using GORM.
type GoalStore struct {
	database.Repository[goal.Goal, GoalModel]
}

// NewGoalStore creates a new GoalStore.
func NewGoalStore(db database.Database) GoalStore {
	return GoalStore{
		Repository: database.NewRepository[goal.Goal, GoalModel](db, GoalMapper{}, "goal"),
	}
}

// Save creates or updates a goal. The original creation time is kept.
func (s GoalStore) Save(ctx context.Context, g goal.Goal) (goal.Goal, error) {
	model := s.Mapper().ToModel(g)
	now := time.Now().UTC()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	model.UpdatedAt = now

	result := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner_id", "title", "description", "updated_at"}),
	}).Create(&model)
	if result.Error != nil {
		return goal.Goal{}, fmt.Errorf("save goal: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// Delete removes a goal.
func (s GoalStore) Delete(ctx context.Context, g goal.Goal) error {
	result := s.DB(ctx).Where("id = ?", g.ID()).Delete(&GoalModel{})
	if result.Error != nil {
		return fmt.Errorf("delete goal: %w", result.Error)
	}
	return nil
}
