// Package persistence provides database storage implementations.
package persistence

import (
	"context"
	"fmt"

	"github.com/helixml/affinity/internal/database"
)

// Models returns every model managed by AutoMigrate.
func Models() []any {
	return []any{
		&GoalModel{},
		&ContactModel{},
		&InteractionModel{},
		&EmbeddingModel{},
	}
}

// AutoMigrate runs GORM auto migration for all models.
func AutoMigrate(ctx context.Context, db database.Database) error {
	if err := db.Session(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
