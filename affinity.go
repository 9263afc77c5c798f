// Package affinity matches a user's goals against their contacts.
//
// Contacts and goals are turned into short bios, embedded once and cached,
// then ranked by cosine similarity to the goal.
//
// Basic usage:
//
//	client, err := affinity.New(
//	    affinity.WithSQLite(".affinity/affinity.db"),
//	    affinity.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	_, err = client.Directory.SaveGoal(ctx, goal.NewGoal("g1", "u1", "Raise seed", "Looking for healthcare investors"))
//
//	matches, err := client.Matching.MatchGoal(ctx, "g1", service.WithLimit(10))
//	for _, m := range matches {
//	    fmt.Println(m.Rank, m.ContactName, m.Score)
//	}
package affinity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	goredis "github.com/redis/go-redis/v9"

	"github.com/helixml/affinity/application/service"
	"github.com/helixml/affinity/domain/bio"
	"github.com/helixml/affinity/domain/embedding"
	domainservice "github.com/helixml/affinity/domain/service"
	"github.com/helixml/affinity/infrastructure/cache"
	"github.com/helixml/affinity/infrastructure/persistence"
	"github.com/helixml/affinity/infrastructure/provider"
	"github.com/helixml/affinity/internal/database"
)

// Version is the library version reported by the API and MCP servers.
var Version = "0.1.0"

// ErrNoEmbeddingProvider indicates no embedding provider was configured and
// no local model was found.
var ErrNoEmbeddingProvider = errors.New("no embedding provider configured")

// Client is the main entry point for the affinity library.
//
// Access services via struct fields:
//
//	client.Directory.SaveContact(ctx, c)
//	client.Matching.MatchGoal(ctx, goalID)
type Client struct {
	Matching  *service.Matching
	Directory *service.Directory

	db         database.Database
	embeddings *domainservice.EmbeddingCache
	hugot      *provider.HugotEmbedding
	redis      *goredis.Client
	closers    []io.Closer

	logger  *slog.Logger
	dataDir string
	apiKeys []string
	closed  atomic.Bool
	mu      sync.Mutex
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(cfg.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	embedder, hugot, err := selectEmbedder(cfg, logger)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	db, err := database.NewDatabaseWithLogger(ctx, cfg.databaseURL(), logger)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open database: %w", err), closeHugot(hugot))
	}

	if err := persistence.AutoMigrate(ctx, db); err != nil {
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), db.Close(), closeHugot(hugot))
	}

	goalStore := persistence.NewGoalStore(db)
	contactStore := persistence.NewContactStore(db)

	var embeddingStore embedding.Store = persistence.NewEmbeddingStore(db)
	var ownedRedis *goredis.Client
	rdb := cfg.redisClient
	if rdb == nil && cfg.redisURL != "" {
		ownedRedis, err = cache.NewRedisClient(ctx, cfg.redisURL)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("connect redis: %w", err), db.Close(), closeHugot(hugot))
		}
		rdb = ownedRedis
	}
	if rdb != nil {
		embeddingStore = cache.NewRedisStore(embeddingStore, rdb,
			cache.WithTTL(cfg.redisTTL),
			cache.WithLogger(logger),
		)
		logger.Info("redis embedding cache enabled", slog.Duration("ttl", cfg.redisTTL))
	}

	embeddings, err := domainservice.NewEmbeddingCache(embeddingStore, embedder, cfg.budget, logger)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create embedding cache: %w", err), db.Close(), closeHugot(hugot))
	}

	client := &Client{
		db:         db,
		embeddings: embeddings,
		hugot:      hugot,
		redis:      ownedRedis,
		closers:    cfg.closers,
		logger:     logger,
		dataDir:    cfg.dataDir,
		apiKeys:    cfg.apiKeys,
	}

	matching, err := service.NewMatching(goalStore, contactStore, embeddings,
		service.WithParallelism(cfg.parallelism),
		service.WithCallTimeout(cfg.callTimeout),
		service.WithComposer(bio.NewComposer(cfg.interactionLimit)),
		service.WithLogger(logger),
	)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create matching service: %w", err), client.release())
	}
	client.Matching = matching.WithClosed(&client.closed)
	client.Directory = service.NewDirectory(goalStore, contactStore, embeddings, logger)

	logger.Info("affinity client ready",
		slog.String("embedding_model", embeddings.Model()),
		slog.Int("parallelism", cfg.parallelism),
		slog.Duration("call_timeout", cfg.callTimeout),
	)
	return client, nil
}

// selectEmbedder picks, in order: an explicit provider, the offline
// hashing embedder, then the local model under the model directory.
func selectEmbedder(cfg *clientConfig, logger *slog.Logger) (embedding.Embedder, *provider.HugotEmbedding, error) {
	if cfg.embeddingProvider != nil {
		model := cfg.embeddingModel
		if model == "" {
			model = "custom"
		}
		return provider.NewAdapter(cfg.embeddingProvider, model), nil, nil
	}

	if cfg.hashingDimension > 0 {
		h := provider.NewHashingEmbedder(cfg.hashingDimension)
		logger.Info("offline hashing embedder enabled", slog.Int("dimension", h.Dimension()))
		return provider.NewAdapter(h, h.Model()), nil, nil
	}

	modelDir := cfg.modelDir
	if modelDir == "" {
		modelDir = filepath.Join(cfg.dataDir, "models")
	}
	hugot := provider.NewHugotEmbedding(modelDir)
	if !hugot.Available() {
		return nil, nil, fmt.Errorf("%w: no model found in %s, set EMBEDDING_ENDPOINT_API_KEY or EMBEDDING_MODEL_DIR", ErrNoEmbeddingProvider, modelDir)
	}
	logger.Info("built-in embedding provider enabled", slog.String("model_dir", modelDir))
	return provider.NewAdapter(hugot, hugot.Model()), hugot, nil
}

func closeHugot(h *provider.HugotEmbedding) error {
	if h == nil {
		return nil
	}
	return h.Close()
}

// Close releases all resources.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return service.ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.release(); err != nil {
		return err
	}
	c.logger.Info("affinity client closed")
	return nil
}

func (c *Client) release() error {
	if err := closeHugot(c.hugot); err != nil {
		c.logger.Error("failed to close hugot embedding", slog.Any("error", err))
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.logger.Error("failed to close redis client", slog.Any("error", err))
		}
	}
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return service.ErrClientClosed
	}
	return c.db.Ping(ctx)
}

// EmbeddingModel returns the identifier of the active embedding model.
func (c *Client) EmbeddingModel() string {
	return c.embeddings.Model()
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// APIKeys returns the keys accepted by the HTTP API for mutating requests.
func (c *Client) APIKeys() []string {
	keys := make([]string, len(c.apiKeys))
	copy(keys, c.apiKeys)
	return keys
}

// DataDir returns the data directory.
func (c *Client) DataDir() string {
	return c.dataDir
}
