package contact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestContact_RecentInteractions(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewContact("c1", "u1", Profile{Name: "Ada"},
		NewInteraction("oldest", base),
		NewInteraction("newest", base.Add(3*time.Hour)),
		NewInteraction("tie-first", base.Add(time.Hour)),
		NewInteraction("tie-second", base.Add(time.Hour)),
	)

	recent := c.RecentInteractions(3)

	require.Len(t, recent, 3)
	require.Equal(t, "newest", recent[0].Summary())
	require.Equal(t, "tie-first", recent[1].Summary())
	require.Equal(t, "tie-second", recent[2].Summary())
}

func TestContact_RecentInteractions_Bounds(t *testing.T) {
	c := NewContact("c1", "u1", Profile{Name: "Ada"}, NewInteraction("only", time.Now()))

	require.Empty(t, c.RecentInteractions(0))
	require.Len(t, c.RecentInteractions(10), 1)
	require.Empty(t, NewContact("c2", "u1", Profile{}).RecentInteractions(5))
}

func TestContact_InteractionsAreCopied(t *testing.T) {
	in := []Interaction{NewInteraction("a", time.Now())}
	c := NewContact("c1", "u1", Profile{Name: "Ada"}, in...)

	in[0] = NewInteraction("mutated", time.Now())
	got := c.Interactions()
	got[0] = NewInteraction("mutated again", time.Now())

	require.Equal(t, "a", c.Interactions()[0].Summary())
}

func TestContact_WithProfile(t *testing.T) {
	c := NewContact("c1", "u1", Profile{Name: "Ada", Company: "Analytical"})

	updated := c.WithProfile(Profile{Name: "Ada Lovelace", Title: "Engineer"})

	require.Equal(t, "Ada", c.Name())
	require.Equal(t, "Ada Lovelace", updated.Name())
	require.Empty(t, updated.Company())
	require.Equal(t, "Engineer", updated.Profile().Title)
}

func TestContact_WithInteraction(t *testing.T) {
	c := NewContact("c1", "u1", Profile{Name: "Ada"})
	updated := c.WithInteraction(NewInteraction("coffee", time.Now()))

	require.Empty(t, c.Interactions())
	require.Len(t, updated.Interactions(), 1)
}
