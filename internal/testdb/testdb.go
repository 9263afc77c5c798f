// Package testdb opens migrated in-memory SQLite databases for tests.
package testdb

import (
	"testing"

	"github.com/helixml/affinity/infrastructure/persistence"
	"github.com/helixml/affinity/internal/database"
)

// New returns an empty database holding the goal, contact and embedding
// tables. It is closed when t finishes.
func New(t *testing.T) database.Database {
	t.Helper()

	db, err := database.NewDatabase(t.Context(), "sqlite:///:memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("close test database: %v", err)
		}
	})

	if err := persistence.AutoMigrate(t.Context(), db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}
