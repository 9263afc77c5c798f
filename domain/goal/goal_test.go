package goal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewGoal(t *testing.T) {
	g := NewGoal("g1", "user-1", "  Seed round ", "Raise a seed round")

	require.Equal(t, "g1", g.ID())
	require.Equal(t, "user-1", g.OwnerID())
	require.Equal(t, "Seed round", g.Title())
	require.Equal(t, "Raise a seed round", g.Description())
	require.True(t, g.HasOwner())
	require.False(t, g.CreatedAt().IsZero())
}

func TestGoal_HasOwner(t *testing.T) {
	require.False(t, NewGoal("g1", "", "t", "d").HasOwner())
	require.False(t, NewGoal("g1", "   ", "t", "d").HasOwner())
}

func TestGoal_WithDescription(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	g := ReconstructGoal("g1", "u", "t", "old", created, created)

	updated := g.WithDescription("new")

	require.Equal(t, "old", g.Description())
	require.Equal(t, "new", updated.Description())
	require.Equal(t, created, updated.CreatedAt())
	require.True(t, updated.UpdatedAt().After(created))
}
