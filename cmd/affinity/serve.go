package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/helixml/affinity"
	"github.com/helixml/affinity/infrastructure/api"
	"github.com/helixml/affinity/internal/config"
	"github.com/helixml/affinity/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		flags commonFlags
		host  string
		port  int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                         Server host to bind to (default: 0.0.0.0)
  PORT                         Server port to listen on (default: 8080)
  DATA_DIR                     Data directory (default: .affinity)
  DB_URL                       Database URL (default: sqlite:///{data_dir}/affinity.db)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)
  API_KEYS                     Comma-separated keys required for POST, PUT and DELETE
  CORS_ALLOWED_ORIGINS         Comma-separated browser origins allowed to call the API
  REDIS_URL                    Redis URL fronting the embedding cache
  REDIS_TTL_SECONDS            Redis entry lifetime (default: 86400)
  HTTP_CACHE_DIR               On-disk cache of embedding API responses
  EMBEDDING_MODEL_DIR          Local model directory (default: {data_dir}/models)

  EMBEDDING_ENDPOINT_*         Embedding API configuration
    BASE_URL                   Base URL (e.g., https://api.openai.com/v1)
    MODEL                      Model identifier (e.g., text-embedding-3-small)
    API_KEY                    API key for authentication
    NUM_PARALLEL_TASKS         Concurrent requests per match (default: 4)
    TIMEOUT                    Request timeout in seconds (default: 60)
    MAX_RETRIES                Retry attempts (default: 5)
    MAX_CHARS                  Bio character budget (default: 16000)

  MATCH_INTERACTION_LIMIT      Recent interactions per contact bio (default: 5)
  MATCH_CALL_TIMEOUT           Seconds allowed per embedding call (default: 30)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), &flags, host, port)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(ctx context.Context, flags *commonFlags, host string, port int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := flags.config()
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	slogger := log.Configure(cfg).Slog()
	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	slogger.LogAttrs(ctx, slog.LevelInfo, "starting affinity", attrs...)

	client, err := affinity.New(flags.clientOptions(cfg, slogger)...)
	if err != nil {
		return fmt.Errorf("create affinity client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close affinity client", slog.Any("error", err))
		}
	}()

	apiServer := api.NewAPIServer(client, client.APIKeys())
	apiServer.MountRoutes()

	server := api.NewServer(cfg.Addr(), slogger, api.WithCORSOrigins(cfg.CORSAllowedOrigins()))
	server.Router().Mount("/", apiServer.Router())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slogger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("shutdown error", slog.Any("error", err))
		}
	}()

	if err := server.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
