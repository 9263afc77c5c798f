package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/helixml/affinity"
	"github.com/helixml/affinity/application/service"
	"github.com/helixml/affinity/infrastructure/fixture"
	"github.com/helixml/affinity/internal/log"
)

type stubMatcher struct {
	matches []service.Match
	err     error
}

func (s stubMatcher) MatchGoal(_ context.Context, _ string, _ ...service.MatchingOption) ([]service.Match, error) {
	return s.matches, s.err
}

func TestRunMatch_PrintsTable(t *testing.T) {
	matcher := stubMatcher{matches: []service.Match{
		{GoalID: "g1", ContactID: "c2", ContactName: "Sam", Score: 0.8123, Rank: 1, Available: true},
		{GoalID: "g1", ContactID: "c1", ContactName: "Pat", Score: 0, Rank: 2, Available: false},
	}}

	var out bytes.Buffer
	require.NoError(t, runMatch(context.Background(), &out, matcher, "g1", 0))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "RANK")
	require.Contains(t, lines[1], "0.8123")
	require.Contains(t, lines[1], "Sam")
	require.Contains(t, lines[2], "n/a")
}

func TestRunMatch_Errors(t *testing.T) {
	var out bytes.Buffer
	err := runMatch(context.Background(), &out, stubMatcher{err: service.ErrNotFound}, "g1", 0)
	require.ErrorIs(t, err, service.ErrNotFound)

	err = runMatch(context.Background(), &out, stubMatcher{}, "g1", -1)
	require.Error(t, err)
	require.False(t, errors.Is(err, service.ErrNotFound))
}

const seedYAML = `
owner: u1
goals:
  - id: g1
    title: Fundraise
    description: Raise a seed round for a healthcare AI startup
contacts:
  - id: c1
    name: Alice Chen
    notes: VC partner, healthcare investments
  - id: c2
    name: Bob Park
    notes: graphic designer, no industry specified
`

func TestRunSeed_Warm(t *testing.T) {
	tmpDir := t.TempDir()
	client, err := affinity.New(
		affinity.WithSQLite(filepath.Join(tmpDir, "test.db")),
		affinity.WithDataDir(tmpDir),
		affinity.WithHashingEmbedder(0),
		affinity.WithLogger(log.Discard()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	fx, err := fixture.Parse(strings.NewReader(seedYAML))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runSeed(context.Background(), &out, client, fx, true))
	require.Contains(t, out.String(), "seeded 1 goals and 2 contacts")
	require.Contains(t, out.String(), "owner u1: 3 computed, 0 cached, 0 failed")

	out.Reset()
	require.NoError(t, runMatch(context.Background(), &out, client.Matching, "g1", 1))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], "c1")

	out.Reset()
	require.NoError(t, runSeed(context.Background(), &out, client, fx, true))
	require.Contains(t, out.String(), "owner u1: 0 computed, 3 cached, 0 failed")
}

func TestVersionCmd(t *testing.T) {
	cmd := versionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "affinity version "+version)
}
