package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig mirrors the process environment. Endpoint settings nest with
// an underscore, e.g. EMBEDDING_ENDPOINT_BASE_URL.
type EnvConfig struct {
	Host      string `envconfig:"HOST" default:"0.0.0.0"`
	Port      int    `envconfig:"PORT" default:"8080"`
	DataDir   string `envconfig:"DATA_DIR"` // default ~/.affinity
	DBURL     string `envconfig:"DB_URL"`   // default sqlite:///{DATA_DIR}/affinity.db
	LogLevel  string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"` // pretty or json

	// Comma-separated.
	APIKeys            string `envconfig:"API_KEYS"`
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS"`

	// RedisURL enables the Redis embedding cache (redis://host:port/db).
	RedisURL        string  `envconfig:"REDIS_URL"`
	RedisTTLSeconds float64 `envconfig:"REDIS_TTL_SECONDS" default:"86400"`

	// HTTPCacheDir caches embedding API responses on disk.
	HTTPCacheDir string `envconfig:"HTTP_CACHE_DIR"`

	EmbeddingEndpoint EndpointEnv `envconfig:"EMBEDDING_ENDPOINT"`
	EmbeddingModelDir string      `envconfig:"EMBEDDING_MODEL_DIR"`

	MatchInteractionLimit int     `envconfig:"MATCH_INTERACTION_LIMIT" default:"5"`
	MatchCallTimeout      float64 `envconfig:"MATCH_CALL_TIMEOUT" default:"30"` // seconds
}

// EndpointEnv is the environment block of an OpenAI-compatible embedding
// endpoint. Durations are in seconds.
type EndpointEnv struct {
	BaseURL          string  `envconfig:"BASE_URL"`
	Model            string  `envconfig:"MODEL"`
	APIKey           string  `envconfig:"API_KEY"`
	NumParallelTasks int     `envconfig:"NUM_PARALLEL_TASKS" default:"4"`
	Timeout          float64 `envconfig:"TIMEOUT" default:"60"`
	MaxRetries       int     `envconfig:"MAX_RETRIES" default:"5"`
	InitialDelay     float64 `envconfig:"INITIAL_DELAY" default:"2.0"`
	BackoffFactor    float64 `envconfig:"BACKOFF_FACTOR" default:"2.0"`
	MaxChars         int     `envconfig:"MAX_CHARS" default:"16000"`
}

// LoadFromEnv reads EnvConfig from unprefixed variables.
func LoadFromEnv() (EnvConfig, error) {
	return LoadFromEnvWithPrefix("")
}

// LoadFromEnvWithPrefix reads EnvConfig from variables named PREFIX_NAME,
// e.g. AFFINITY_DATA_DIR for prefix "AFFINITY".
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

// ToAppConfig converts the environment into an AppConfig. Unset values
// keep the AppConfig defaults.
func (e EnvConfig) ToAppConfig() AppConfig {
	opts := []AppConfigOption{
		WithRedisTTL(seconds(e.RedisTTLSeconds)),
		WithInteractionLimit(e.MatchInteractionLimit),
		WithCallTimeout(seconds(e.MatchCallTimeout)),
	}

	if e.Host != "" {
		opts = append(opts, WithHost(e.Host))
	}
	if e.Port != 0 {
		opts = append(opts, WithPort(e.Port))
	}
	if e.DataDir != "" {
		opts = append(opts, WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		opts = append(opts, WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		opts = append(opts, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		opts = append(opts, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.APIKeys != "" {
		opts = append(opts, WithAPIKeys(ParseList(e.APIKeys)))
	}
	if e.CORSAllowedOrigins != "" {
		opts = append(opts, WithCORSAllowedOrigins(ParseList(e.CORSAllowedOrigins)))
	}
	if e.RedisURL != "" {
		opts = append(opts, WithRedisURL(e.RedisURL))
	}
	if e.HTTPCacheDir != "" {
		opts = append(opts, WithHTTPCacheDir(e.HTTPCacheDir))
	}
	if e.EmbeddingEndpoint.IsConfigured() {
		opts = append(opts, WithEmbeddingEndpoint(e.EmbeddingEndpoint.ToEndpoint()))
	}
	if e.EmbeddingModelDir != "" {
		opts = append(opts, WithEmbeddingModelDir(e.EmbeddingModelDir))
	}

	return NewAppConfigWithOptions(opts...)
}

// IsConfigured returns true if the endpoint has a model configured.
func (e EndpointEnv) IsConfigured() bool {
	return e.Model != ""
}

// ToEndpoint converts EndpointEnv to Endpoint.
func (e EndpointEnv) ToEndpoint() Endpoint {
	opts := []EndpointOption{
		WithModel(e.Model),
		WithNumParallelTasks(e.NumParallelTasks),
		WithTimeout(seconds(e.Timeout)),
		WithMaxRetries(e.MaxRetries),
		WithInitialDelay(seconds(e.InitialDelay)),
		WithBackoffFactor(e.BackoffFactor),
		WithMaxChars(e.MaxChars),
	}

	if e.BaseURL != "" {
		opts = append(opts, WithBaseURL(e.BaseURL))
	}
	if e.APIKey != "" {
		opts = append(opts, WithAPIKey(e.APIKey))
	}

	return NewEndpointWithOptions(opts...)
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
