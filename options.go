package affinity

import (
	"io"
	"log/slog"
	"path/filepath"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/helixml/affinity/domain/embedding"
	"github.com/helixml/affinity/infrastructure/provider"
	"github.com/helixml/affinity/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	dbURL             string
	dataDir           string
	modelDir          string
	embeddingProvider provider.Embedder
	embeddingModel    string
	hashingDimension  int
	httpCacheDir      string
	redisURL          string
	redisClient       goredis.UniversalClient
	redisTTL          time.Duration
	logger            *slog.Logger
	apiKeys           []string
	budget            embedding.Budget
	parallelism       int
	callTimeout       time.Duration
	interactionLimit  int
	closers           []io.Closer
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		dataDir:          config.DefaultDataDir(),
		redisTTL:         config.DefaultRedisTTL,
		budget:           embedding.DefaultBudget(),
		parallelism:      config.DefaultEndpointParallelTasks,
		callTimeout:      config.DefaultCallTimeout,
		interactionLimit: config.DefaultInteractionLimit,
	}
}

// databaseURL returns the configured URL, or SQLite under the data directory.
func (c *clientConfig) databaseURL() string {
	if c.dbURL != "" {
		return c.dbURL
	}
	return "sqlite:///" + filepath.Join(c.dataDir, config.DefaultDBFile)
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite stores goals, contacts and embeddings in a SQLite file.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.dbURL = "sqlite:///" + path
	}
}

// WithPostgres stores goals, contacts and embeddings in PostgreSQL.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.dbURL = dsn
	}
}

// WithDatabaseURL sets a database URL in the sqlite:/// or postgres:// form.
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.dbURL = url
	}
}

// WithOpenAI embeds through the OpenAI API with the default model.
func WithOpenAI(apiKey string) Option {
	return WithOpenAIConfig(provider.OpenAIConfig{APIKey: apiKey})
}

// WithOpenAIConfig embeds through an OpenAI-compatible endpoint.
func WithOpenAIConfig(cfg provider.OpenAIConfig) Option {
	return func(c *clientConfig) {
		if cfg.Transport == nil && c.httpCacheDir != "" {
			cfg.Transport = provider.NewCachingTransport(c.httpCacheDir, nil)
		}
		p := provider.NewOpenAIProvider(cfg)
		c.embeddingProvider = p
		c.embeddingModel = p.Model()
		c.hashingDimension = 0
	}
}

// WithEmbeddingProvider sets a custom embedding provider. model identifies
// the vectors it produces; changing it invalidates every cached embedding.
func WithEmbeddingProvider(p provider.Embedder, model string) Option {
	return func(c *clientConfig) {
		c.embeddingProvider = p
		c.embeddingModel = model
		c.hashingDimension = 0
	}
}

// WithHashingEmbedder uses the offline feature-hashing embedder. A
// dimension of 0 selects provider.DefaultHashingDimension. The last
// provider option given wins.
func WithHashingEmbedder(dimension int) Option {
	return func(c *clientConfig) {
		if dimension <= 0 {
			dimension = provider.DefaultHashingDimension
		}
		c.hashingDimension = dimension
		c.embeddingProvider = nil
		c.embeddingModel = ""
	}
}

// WithModelDir sets the directory holding the local embedding model.
// Defaults to {dataDir}/models if not specified.
func WithModelDir(dir string) Option {
	return func(c *clientConfig) {
		c.modelDir = dir
	}
}

// WithHTTPCacheDir caches embedding API responses on disk. Must precede
// WithOpenAI or WithOpenAIConfig.
func WithHTTPCacheDir(dir string) Option {
	return func(c *clientConfig) {
		c.httpCacheDir = dir
	}
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.dataDir = dir
	}
}

// WithRedis fronts the embedding cache with the Redis server at url.
func WithRedis(url string) Option {
	return func(c *clientConfig) {
		c.redisURL = url
	}
}

// WithRedisClient fronts the embedding cache with an existing Redis client.
// The client is not closed by Client.Close.
func WithRedisClient(rdb goredis.UniversalClient) Option {
	return func(c *clientConfig) {
		c.redisClient = rdb
	}
}

// WithRedisTTL sets how long embeddings stay in Redis.
func WithRedisTTL(ttl time.Duration) Option {
	return func(c *clientConfig) {
		if ttl > 0 {
			c.redisTTL = ttl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithAPIKeys sets the keys accepted by the HTTP API for mutating requests.
func WithAPIKeys(keys ...string) Option {
	return func(c *clientConfig) {
		c.apiKeys = keys
	}
}

// WithMaxChars sets the character budget applied to bios before embedding.
func WithMaxChars(n int) Option {
	return func(c *clientConfig) {
		if b, err := embedding.NewBudget(n); err == nil {
			c.budget = b
		}
	}
}

// WithParallelism caps concurrent embedding calls per match.
func WithParallelism(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// WithCallTimeout bounds each embedding call. Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d >= 0 {
			c.callTimeout = d
		}
	}
}

// WithInteractionLimit sets how many recent interactions a contact bio includes.
func WithInteractionLimit(n int) Option {
	return func(c *clientConfig) {
		if n >= 0 {
			c.interactionLimit = n
		}
	}
}

// WithCloser registers a resource to be closed when the Client shuts down.
func WithCloser(c io.Closer) Option {
	return func(cfg *clientConfig) {
		cfg.closers = append(cfg.closers, c)
	}
}

// WithConfig applies an application configuration loaded from the
// environment. Options given after it take precedence.
func WithConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) {
		c.dataDir = cfg.DataDir()
		c.dbURL = cfg.DBURL()
		c.apiKeys = cfg.APIKeys()
		c.redisURL = cfg.RedisURL()
		c.redisTTL = cfg.RedisTTL()
		c.httpCacheDir = cfg.HTTPCacheDir()
		c.modelDir = cfg.EmbeddingModelDir()
		c.parallelism = cfg.Parallelism()
		c.callTimeout = cfg.CallTimeout()
		c.interactionLimit = cfg.InteractionLimit()
		if b, err := embedding.NewBudget(cfg.MaxChars()); err == nil {
			c.budget = b
		}

		endpoint := cfg.EmbeddingEndpoint()
		if endpoint == nil || !endpoint.IsConfigured() {
			return
		}
		WithOpenAIConfig(provider.OpenAIConfig{
			APIKey:        endpoint.APIKey(),
			BaseURL:       endpoint.BaseURL(),
			Model:         endpoint.Model(),
			Timeout:       endpoint.Timeout(),
			MaxRetries:    endpoint.MaxRetries(),
			InitialDelay:  endpoint.InitialDelay(),
			BackoffFactor: endpoint.BackoffFactor(),
		})(c)
	}
}
