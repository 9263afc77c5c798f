// Package service provides application layer services that orchestrate domain operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/helixml/affinity/domain/bio"
	"github.com/helixml/affinity/domain/contact"
	"github.com/helixml/affinity/domain/embedding"
	"github.com/helixml/affinity/domain/goal"
	"github.com/helixml/affinity/domain/match"
	"github.com/helixml/affinity/domain/query"
	domainservice "github.com/helixml/affinity/domain/service"
	"github.com/helixml/affinity/internal/database"
)

// Matching defaults.
const (
	DefaultParallelism = 4
	DefaultCallTimeout = 30 * time.Second
)

const tracerName = "github.com/helixml/affinity/application/service"

// Match is one ranked contact for a goal.
type Match struct {
	GoalID      string
	ContactID   string
	ContactName string
	Score       float64
	Rank        int
	// Available is false when the contact's embedding could not be obtained
	// and Score is the neutral 0.
	Available bool
}

// RefreshResult counts the outcome of warming an owner's embeddings.
type RefreshResult struct {
	Computed int
	Cached   int
	Failed   int
}

// MatchingOption configures Matching.
type MatchingOption func(*Matching)

// WithParallelism caps concurrent embedding calls. Values below 1 are ignored.
func WithParallelism(n int) MatchingOption {
	return func(m *Matching) {
		if n > 0 {
			m.parallelism = n
		}
	}
}

// WithCallTimeout bounds each embedding call. Zero disables the bound.
func WithCallTimeout(d time.Duration) MatchingOption {
	return func(m *Matching) {
		if d >= 0 {
			m.callTimeout = d
		}
	}
}

// WithLimit truncates results to the top n after ranking. Zero returns all.
func WithLimit(n int) MatchingOption {
	return func(m *Matching) {
		if n >= 0 {
			m.limit = n
		}
	}
}

// WithComposer sets the bio composer.
func WithComposer(c bio.Composer) MatchingOption {
	return func(m *Matching) { m.composer = c }
}

// WithStaleFallback controls whether a contact whose embedding cannot be
// recomputed is scored with its previously cached vector. Enabled by default.
// The goal never falls back.
func WithStaleFallback(enabled bool) MatchingOption {
	return func(m *Matching) { m.staleFallback = enabled }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) MatchingOption {
	return func(m *Matching) {
		if l != nil {
			m.logger = l
		}
	}
}

// Matching ranks a user's contacts against one of their goals.
type Matching struct {
	goals         goal.Store
	contacts      contact.Store
	cache         *domainservice.EmbeddingCache
	composer      bio.Composer
	parallelism   int
	callTimeout   time.Duration
	limit         int
	staleFallback bool
	closed        *atomic.Bool
	logger        *slog.Logger
	tracer        trace.Tracer
}

// NewMatching creates a new Matching service.
func NewMatching(
	goals goal.Store,
	contacts contact.Store,
	cache *domainservice.EmbeddingCache,
	opts ...MatchingOption,
) (*Matching, error) {
	if goals == nil || contacts == nil {
		return nil, errors.New("NewMatching: goal and contact stores are required")
	}
	if cache == nil {
		return nil, errors.New("NewMatching: nil embedding cache")
	}

	m := &Matching{
		goals:         goals,
		contacts:      contacts,
		cache:         cache,
		composer:      bio.DefaultComposer(),
		parallelism:   DefaultParallelism,
		callTimeout:   DefaultCallTimeout,
		staleFallback: true,
		closed:        &atomic.Bool{},
		logger:        slog.Default(),
		tracer:        otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// WithClosed shares a closed flag with the owning client.
func (m *Matching) WithClosed(closed *atomic.Bool) *Matching {
	if closed != nil {
		m.closed = closed
	}
	return m
}

// MatchGoal ranks every contact owned by the goal's owner against the goal.
//
// The only errors returned wrap ErrNotFound (unknown goal, or goal without an
// owner) or ErrEmbeddingUnavailable (the goal's own embedding failed, or
// ErrStoreUnavailable when the goal or contacts could not be read). A
// contact whose embedding fails is kept with a neutral score of 0.
func (m *Matching) MatchGoal(ctx context.Context, goalID string, opts ...MatchingOption) ([]Match, error) {
	if m.closed.Load() {
		return nil, ErrClientClosed
	}
	cfg := m.apply(opts)

	ctx, span := m.tracer.Start(ctx, "Matching.MatchGoal", trace.WithAttributes(
		attribute.String("goal.id", goalID),
	))
	defer span.End()

	matches, err := cfg.matchGoal(ctx, span, goalID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return matches, nil
}

func (m *Matching) matchGoal(ctx context.Context, span trace.Span, goalID string) ([]Match, error) {
	g, err := m.loadGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}

	text := m.composer.GoalBio(g)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: goal %s: %w", ErrEmbeddingUnavailable, g.ID(), embedding.ErrEmptyText)
	}
	goalLookup, err := m.embed(ctx, embedding.GoalKey(g.ID()), text)
	if err != nil {
		return nil, fmt.Errorf("%w: goal %s: %w", ErrEmbeddingUnavailable, g.ID(), err)
	}

	contacts, err := m.ownedContacts(ctx, g.OwnerID())
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("contacts.count", len(contacts)))

	candidates := m.candidates(ctx, g.ID(), contacts)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingUnavailable, err)
	}

	names := make(map[string]string, len(contacts))
	for _, c := range contacts {
		names[c.ID()] = c.Name()
	}

	scored := match.Rank(goalLookup.Vector(), candidates)
	if m.limit > 0 && len(scored) > m.limit {
		scored = scored[:m.limit]
	}

	matches := make([]Match, len(scored))
	unavailable := 0
	for i, s := range scored {
		if !s.Available() {
			unavailable++
		}
		matches[i] = Match{
			GoalID:      g.ID(),
			ContactID:   s.ContactID(),
			ContactName: names[s.ContactID()],
			Score:       s.Score(),
			Rank:        s.Rank(),
			Available:   s.Available(),
		}
	}

	span.SetAttributes(attribute.Int("contacts.unavailable", unavailable))
	m.logger.InfoContext(ctx, "goal matched",
		slog.String("goal_id", g.ID()),
		slog.Int("candidates", len(candidates)),
		slog.Int("returned", len(matches)),
		slog.Int("unavailable", unavailable),
		slog.Bool("goal_cache_hit", goalLookup.Hit()),
	)
	return matches, nil
}

// Refresh computes missing or stale embeddings for all of an owner's goals
// and contacts. Individual failures are counted, not returned.
func (m *Matching) Refresh(ctx context.Context, ownerID string) (RefreshResult, error) {
	if m.closed.Load() {
		return RefreshResult{}, ErrClientClosed
	}
	if strings.TrimSpace(ownerID) == "" {
		return RefreshResult{}, fmt.Errorf("%w: empty owner", ErrNotFound)
	}

	ctx, span := m.tracer.Start(ctx, "Matching.Refresh", trace.WithAttributes(
		attribute.String("owner.id", ownerID),
	))
	defer span.End()

	goals, err := m.goals.Find(ctx, query.WithOwnerID(ownerID))
	if err != nil {
		return RefreshResult{}, fmt.Errorf("%w: load goals for %s: %w", ErrStoreUnavailable, ownerID, err)
	}
	contacts, err := m.ownedContacts(ctx, ownerID)
	if err != nil {
		return RefreshResult{}, err
	}

	type item struct {
		key  embedding.Key
		text string
	}
	items := make([]item, 0, len(goals)+len(contacts))
	for _, g := range goals {
		items = append(items, item{key: embedding.GoalKey(g.ID()), text: m.composer.GoalBio(g)})
	}
	for _, c := range contacts {
		items = append(items, item{key: embedding.ContactKey(c.ID()), text: m.composer.ContactBio(c)})
	}

	var computed, cached, failed atomic.Int64
	var group errgroup.Group
	group.SetLimit(m.parallelism)
	for _, it := range items {
		group.Go(func() error {
			lookup, err := m.embed(ctx, it.key, it.text)
			switch {
			case err != nil:
				failed.Add(1)
				m.logger.WarnContext(ctx, "refresh embedding failed",
					slog.String("key", it.key.String()),
					slog.String("error", err.Error()),
				)
			case lookup.Hit():
				cached.Add(1)
			default:
				computed.Add(1)
			}
			return nil
		})
	}
	_ = group.Wait()

	result := RefreshResult{
		Computed: int(computed.Load()),
		Cached:   int(cached.Load()),
		Failed:   int(failed.Load()),
	}
	m.logger.InfoContext(ctx, "embeddings refreshed",
		slog.String("owner_id", ownerID),
		slog.Int("computed", result.Computed),
		slog.Int("cached", result.Cached),
		slog.Int("failed", result.Failed),
	)
	return result, nil
}

// apply returns a copy of m with per-call options applied.
func (m *Matching) apply(opts []MatchingOption) *Matching {
	if len(opts) == 0 {
		return m
	}
	clone := *m
	for _, opt := range opts {
		opt(&clone)
	}
	return &clone
}

func (m *Matching) loadGoal(ctx context.Context, goalID string) (goal.Goal, error) {
	if strings.TrimSpace(goalID) == "" {
		return goal.Goal{}, fmt.Errorf("%w: empty goal id", ErrNotFound)
	}
	g, err := m.goals.FindOne(ctx, query.WithID(goalID))
	if errors.Is(err, database.ErrNotFound) {
		return goal.Goal{}, fmt.Errorf("%w: goal %s", ErrNotFound, goalID)
	}
	if err != nil {
		return goal.Goal{}, fmt.Errorf("%w: load goal %s: %w", ErrStoreUnavailable, goalID, err)
	}
	if !g.HasOwner() {
		return goal.Goal{}, fmt.Errorf("%w: goal %s has no owner", ErrNotFound, goalID)
	}
	return g, nil
}

func (m *Matching) ownedContacts(ctx context.Context, ownerID string) ([]contact.Contact, error) {
	contacts, err := m.contacts.Find(ctx,
		query.WithOwnerID(ownerID),
		query.WithOrderAsc("created_at"),
		query.WithOrderAsc("id"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: load contacts for %s: %w", ErrStoreUnavailable, ownerID, err)
	}
	return contacts, nil
}

// candidates embeds every contact concurrently. Results keep input order
// and no failure cancels the others.
func (m *Matching) candidates(ctx context.Context, goalID string, contacts []contact.Contact) []match.Candidate {
	candidates := make([]match.Candidate, len(contacts))

	var group errgroup.Group
	group.SetLimit(m.parallelism)
	for i, c := range contacts {
		group.Go(func() error {
			candidates[i] = m.candidate(ctx, goalID, c)
			return nil
		})
	}
	_ = group.Wait()

	return candidates
}

func (m *Matching) candidate(ctx context.Context, goalID string, c contact.Contact) match.Candidate {
	key := embedding.ContactKey(c.ID())
	lookup, err := m.embed(ctx, key, m.composer.ContactBio(c))
	if err == nil {
		return match.Available(c.ID(), lookup.Vector())
	}

	var unavailable *embedding.UnavailableError
	if m.staleFallback && errors.As(err, &unavailable) && unavailable.HasStale() {
		m.logger.WarnContext(ctx, "using stale contact embedding",
			slog.String("goal_id", goalID),
			slog.String("contact_id", c.ID()),
			slog.String("error", err.Error()),
		)
		return match.Available(c.ID(), unavailable.Stale)
	}

	m.logger.WarnContext(ctx, "contact embedding unavailable",
		slog.String("goal_id", goalID),
		slog.String("contact_id", c.ID()),
		slog.String("error", err.Error()),
	)
	return match.Unavailable(c.ID(), err)
}

// embed runs one cache lookup under the per-call timeout.
func (m *Matching) embed(ctx context.Context, key embedding.Key, text string) (domainservice.Lookup, error) {
	if m.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.callTimeout)
		defer cancel()
	}

	ctx, span := m.tracer.Start(ctx, "Matching.embed", trace.WithAttributes(
		attribute.String("embedding.key", key.String()),
	))
	defer span.End()

	lookup, err := m.cache.GetOrCompute(ctx, key, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "embedding unavailable")
		return domainservice.Lookup{}, err
	}
	span.SetAttributes(attribute.Bool("embedding.cache_hit", lookup.Hit()))
	return lookup, nil
}
