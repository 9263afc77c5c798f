package match

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func ids(scored []Scored) []string {
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.ContactID()
	}
	return out
}

func TestRank_DescendingByScore(t *testing.T) {
	goal := []float64{1, 0}
	got := Rank(goal, []Candidate{
		Available("far", []float64{0, 1}),
		Available("near", []float64{1, 0.1}),
		Available("mid", []float64{1, 1}),
	})

	require.Equal(t, []string{"near", "mid", "far"}, ids(got))
	for i, s := range got {
		require.Equal(t, i+1, s.Rank())
		require.True(t, s.Available())
	}
}

func TestRank_StableTies(t *testing.T) {
	goal := []float64{1, 1}
	same := []float64{2, 2}
	got := Rank(goal, []Candidate{
		Available("first", same),
		Available("second", same),
		Available("third", same),
	})

	require.Equal(t, []string{"first", "second", "third"}, ids(got))
	require.Equal(t, got[0].Score(), got[1].Score())
}

func TestRank_LargeVectors(t *testing.T) {
	goal := []float64{1e200, 1e200}
	got := Rank(goal, []Candidate{
		Available("opposite", []float64{-1e200, -1e200}),
		Available("same", []float64{1e200, 1e200}),
	})

	require.Equal(t, []string{"same", "opposite"}, ids(got))
	require.InDelta(t, 1.0, got[0].Score(), 1e-12)
	require.InDelta(t, -1.0, got[1].Score(), 1e-12)
}

func TestRank_Deterministic(t *testing.T) {
	goal := []float64{0.2, 0.5, -0.1}
	candidates := []Candidate{
		Available("a", []float64{0.1, 0.1, 0.1}),
		Unavailable("b", errors.New("boom")),
		Available("c", []float64{0.2, 0.5, -0.1}),
		Available("d", []float64{0, 0, 0}),
		Available("e", []float64{0.1, 0.1, 0.1}),
	}

	require.Equal(t, Rank(goal, candidates), Rank(goal, candidates))
}

func TestRank_UnavailableIsolation(t *testing.T) {
	goal := []float64{1, 0}
	got := Rank(goal, []Candidate{
		Available("pos", []float64{1, 0.2}),
		Available("neg", []float64{-1, 0}),
		Unavailable("failed", errors.New("timeout")),
		Available("zero", []float64{0, 1}),
		Available("pos2", []float64{1, 1}),
	})

	require.Len(t, got, 5)
	require.Equal(t, []string{"pos", "pos2", "failed", "zero", "neg"}, ids(got))

	failed := got[2]
	require.False(t, failed.Available())
	require.Equal(t, 0.0, failed.Score())
}

func TestRank_ZeroGoalVector(t *testing.T) {
	got := Rank([]float64{0, 0}, []Candidate{
		Available("a", []float64{1, 0}),
		Unavailable("b", nil),
		Available("c", []float64{0, 1}),
	})

	require.Equal(t, []string{"a", "b", "c"}, ids(got))
	for _, s := range got {
		require.Equal(t, 0.0, s.Score())
	}
}

func TestRank_Empty(t *testing.T) {
	require.Empty(t, Rank([]float64{1}, nil))
}

func TestCandidate_Accessors(t *testing.T) {
	cause := errors.New("down")
	u := Unavailable("x", cause)
	require.False(t, u.IsAvailable())
	require.Same(t, cause, u.Err())
	require.Empty(t, u.Vector())

	v := []float64{1, 2}
	a := Available("y", v)
	v[0] = 9
	require.Equal(t, []float64{1, 2}, a.Vector())
	require.NoError(t, a.Err())
}
