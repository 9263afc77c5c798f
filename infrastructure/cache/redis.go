// Package cache provides a Redis read-through layer for embedding storage.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/helixml/affinity/domain/embedding"
)

// DefaultKeyPrefix namespaces embedding entries in Redis.
const DefaultKeyPrefix = "affinity:embedding:"

// NewRedisClient connects to the Redis server at url (redis://host:port/db)
// and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}

	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// entry is the JSON form of a cached embedding in Redis.
type entry struct {
	Model     string    `json:"model"`
	TextHash  string    `json:"text_hash"`
	Vector    []float64 `json:"vector"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RedisStore wraps an embedding.Store with a Redis read-through cache.
// The wrapped store stays the source of truth: Redis failures are logged
// and bypassed.
type RedisStore struct {
	next   embedding.Store
	rdb    goredis.UniversalClient
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL sets the lifetime of Redis entries. Zero keeps them until evicted.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

// WithKeyPrefix sets the Redis key prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RedisOption {
	return func(s *RedisStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewRedisStore creates a RedisStore in front of next.
func NewRedisStore(next embedding.Store, rdb goredis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		next:   next,
		rdb:    rdb,
		prefix: DefaultKeyPrefix,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the cached embedding, checking Redis before the wrapped store
// and back-filling Redis on a store hit.
func (s *RedisStore) Get(ctx context.Context, key embedding.Key) (embedding.Cached, bool, error) {
	raw, err := s.rdb.Get(ctx, s.redisKey(key)).Bytes()
	switch {
	case err == nil:
		var e entry
		if jsonErr := json.Unmarshal(raw, &e); jsonErr == nil {
			return embedding.ReconstructCached(key, e.Model, e.TextHash, e.Vector, e.UpdatedAt), true, nil
		}
		s.warn(ctx, "discarding undecodable redis entry", key, nil)
	case errors.Is(err, goredis.Nil):
	default:
		s.warn(ctx, "redis get failed", key, err)
	}

	cached, found, err := s.next.Get(ctx, key)
	if err != nil || !found {
		return cached, found, err
	}
	_ = s.set(ctx, cached)
	return cached, true, nil
}

// Put writes through to the wrapped store, then to Redis. If Redis cannot
// take the new entry the old one is deleted, so reads fall back to the
// wrapped store.
func (s *RedisStore) Put(ctx context.Context, cached embedding.Cached) error {
	if err := s.next.Put(ctx, cached); err != nil {
		return err
	}
	if err := s.set(ctx, cached); err != nil {
		if err := s.rdb.Del(ctx, s.redisKey(cached.Key())).Err(); err != nil {
			s.warn(ctx, "redis delete of outdated entry failed", cached.Key(), err)
		}
	}
	return nil
}

// Invalidate removes the entry from Redis and the wrapped store.
func (s *RedisStore) Invalidate(ctx context.Context, key embedding.Key) error {
	if err := s.rdb.Del(ctx, s.redisKey(key)).Err(); err != nil {
		s.warn(ctx, "redis delete failed", key, err)
	}
	return s.next.Invalidate(ctx, key)
}

func (s *RedisStore) set(ctx context.Context, cached embedding.Cached) error {
	raw, err := json.Marshal(entry{
		Model:     cached.Model(),
		TextHash:  cached.TextHash(),
		Vector:    cached.Vector(),
		UpdatedAt: cached.UpdatedAt(),
	})
	if err != nil {
		s.warn(ctx, "encode redis entry failed", cached.Key(), err)
		return err
	}
	if err := s.rdb.Set(ctx, s.redisKey(cached.Key()), raw, s.ttl).Err(); err != nil {
		s.warn(ctx, "redis set failed", cached.Key(), err)
		return err
	}
	return nil
}

func (s *RedisStore) redisKey(key embedding.Key) string {
	return s.prefix + key.String()
}

func (s *RedisStore) warn(ctx context.Context, msg string, key embedding.Key, err error) {
	attrs := []any{slog.String("key", key.String())}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.WarnContext(ctx, msg, attrs...)
}

var _ embedding.Store = (*RedisStore)(nil)
