package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/helixml/affinity/domain/contact"
	"github.com/helixml/affinity/domain/embedding"
	"github.com/helixml/affinity/domain/goal"
	"github.com/helixml/affinity/domain/query"
	"github.com/helixml/affinity/internal/database"
	"github.com/stretchr/testify/require"
)

// newTestDB creates a migrated in-memory SQLite database for testing.
// Cannot use testdb package here due to import cycle (testdb imports persistence).
func newTestDB(t *testing.T) database.Database {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewDatabase(ctx, "sqlite:///:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, AutoMigrate(ctx, db))
	return db
}

func TestGoalStore_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	store := NewGoalStore(newTestDB(t))

	saved, err := store.Save(ctx, goal.NewGoal("g1", "u1", "Fundraise", "Raise a seed round"))
	require.NoError(t, err)
	require.Equal(t, "g1", saved.ID())

	got, err := store.FindOne(ctx, query.WithID("g1"))
	require.NoError(t, err)
	require.Equal(t, "u1", got.OwnerID())
	require.Equal(t, "Raise a seed round", got.Description())

	_, err = store.Save(ctx, got.WithDescription("Raise a Series A"))
	require.NoError(t, err)

	goals, err := store.Find(ctx, query.WithOwnerID("u1"))
	require.NoError(t, err)
	require.Len(t, goals, 1)
	require.Equal(t, "Raise a Series A", goals[0].Description())
}

func TestGoalStore_NotFoundAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewGoalStore(newTestDB(t))

	_, err := store.FindOne(ctx, query.WithID("missing"))
	require.ErrorIs(t, err, database.ErrNotFound)

	g, err := store.Save(ctx, goal.NewGoal("g1", "u1", "t", "d"))
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, g))

	_, err = store.FindOne(ctx, query.WithID("g1"))
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestContactStore_SaveWithInteractions(t *testing.T) {
	ctx := context.Background()
	store := NewContactStore(newTestDB(t))
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	c := contact.NewContact("c1", "u1", contact.Profile{
		Name:     "Dana",
		Notes:    "VC partner",
		LinkedIn: "linkedin.com/in/dana",
	},
		contact.NewInteraction("intro call", base),
		contact.NewInteraction("follow-up", base.Add(time.Hour)),
	)

	_, err := store.Save(ctx, c)
	require.NoError(t, err)

	got, err := store.FindOne(ctx, query.WithID("c1"))
	require.NoError(t, err)
	require.Equal(t, "Dana", got.Name())
	require.Equal(t, "linkedin.com/in/dana", got.LinkedIn())

	interactions := got.Interactions()
	require.Len(t, interactions, 2)
	require.Equal(t, "intro call", interactions[0].Summary())
	require.True(t, interactions[1].OccurredAt().Equal(base.Add(time.Hour)))
}

func TestContactStore_SaveReplacesInteractions(t *testing.T) {
	ctx := context.Background()
	store := NewContactStore(newTestDB(t))

	c := contact.NewContact("c1", "u1", contact.Profile{Name: "Dana"},
		contact.NewInteraction("one", time.Now()),
		contact.NewInteraction("two", time.Now()),
	)
	_, err := store.Save(ctx, c)
	require.NoError(t, err)

	updated := contact.NewContact("c1", "u1", contact.Profile{Name: "Dana B"},
		contact.NewInteraction("three", time.Now()))
	_, err = store.Save(ctx, updated)
	require.NoError(t, err)

	got, err := store.FindOne(ctx, query.WithID("c1"))
	require.NoError(t, err)
	require.Equal(t, "Dana B", got.Name())
	require.Len(t, got.Interactions(), 1)
	require.Equal(t, "three", got.Interactions()[0].Summary())
}

func TestContactStore_FindByOwnerOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewContactStore(newTestDB(t))

	for _, id := range []string{"b", "a", "c"} {
		_, err := store.Save(ctx, contact.NewContact(id, "u1", contact.Profile{Name: id}))
		require.NoError(t, err)
	}
	_, err := store.Save(ctx, contact.NewContact("other", "u2", contact.Profile{Name: "x"}))
	require.NoError(t, err)

	got, err := store.Find(ctx, query.WithOwnerID("u1"), query.WithOrderAsc("id"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "a", got[0].ID())
	require.Equal(t, "c", got[2].ID())
}

func TestContactStore_Delete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store := NewContactStore(db)

	c, err := store.Save(ctx, contact.NewContact("c1", "u1", contact.Profile{Name: "Dana"},
		contact.NewInteraction("hello", time.Now())))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, c))

	_, err = store.FindOne(ctx, query.WithID("c1"))
	require.ErrorIs(t, err, database.ErrNotFound)

	var orphans int64
	require.NoError(t, db.Session(ctx).Model(&InteractionModel{}).Count(&orphans).Error)
	require.Zero(t, orphans)
}

func TestEmbeddingStore_PutGetInvalidate(t *testing.T) {
	ctx := context.Background()
	store := NewEmbeddingStore(newTestDB(t))
	key := embedding.ContactKey("c1")

	_, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Put(ctx, embedding.NewCached(key, "m1", embedding.TextHash("v1"), []float64{0.5, -0.25})))

	got, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []float64{0.5, -0.25}, got.Vector())
	require.Equal(t, "m1", got.Model())
	require.True(t, got.Fresh(embedding.TextHash("v1"), "m1"))

	require.NoError(t, store.Put(ctx, embedding.NewCached(key, "m1", embedding.TextHash("v2"), []float64{1, 0, 0})))

	got, _, err = store.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, embedding.TextHash("v2"), got.TextHash())
	require.Len(t, got.Vector(), 3)

	count, err := store.Count(ctx, embedding.EntityTypeContact)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	require.NoError(t, store.Invalidate(ctx, key))
	_, found, err = store.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, found)
}

func TestEmbeddingStore_KeysAreTypeScoped(t *testing.T) {
	ctx := context.Background()
	store := NewEmbeddingStore(newTestDB(t))

	require.NoError(t, store.Put(ctx, embedding.NewCached(embedding.GoalKey("x"), "m", "h1", []float64{1})))
	require.NoError(t, store.Put(ctx, embedding.NewCached(embedding.ContactKey("x"), "m", "h2", []float64{2})))

	g, _, err := store.Get(ctx, embedding.GoalKey("x"))
	require.NoError(t, err)
	c, _, err := store.Get(ctx, embedding.ContactKey("x"))
	require.NoError(t, err)
	require.Equal(t, []float64{1}, g.Vector())
	require.Equal(t, []float64{2}, c.Vector())
}

func TestFloat64Slice_Scan(t *testing.T) {
	var f Float64Slice
	require.NoError(t, f.Scan([]byte("[1.5,2]")))
	require.Equal(t, Float64Slice{1.5, 2}, f)

	require.NoError(t, f.Scan("[3]"))
	require.Equal(t, Float64Slice{3}, f)

	require.NoError(t, f.Scan(nil))
	require.Nil(t, f)

	require.Error(t, f.Scan(42))
}
