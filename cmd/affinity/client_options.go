package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/helixml/affinity"
	"github.com/helixml/affinity/internal/config"
)

// commonFlags are shared by every command that opens a Client.
type commonFlags struct {
	envFile string
	dataDir string
	offline bool
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&f.dataDir, "data-dir", "", "Data directory (default: DATA_DIR or .affinity)")
	cmd.Flags().BoolVar(&f.offline, "offline", false, "Use the offline hashing embedder instead of a model or API")
}

// config loads the application configuration and applies flag overrides.
func (f *commonFlags) config() (config.AppConfig, error) {
	cfg, err := loadConfig(f.envFile)
	if err != nil {
		return config.AppConfig{}, err
	}
	if f.dataDir != "" {
		cfg = cfg.Apply(config.WithDataDir(f.dataDir))
	}
	return cfg, nil
}

// clientOptions returns the affinity.Option slice derived from AppConfig.
// Callers append entrypoint-specific options before passing the slice to
// affinity.New.
func (f *commonFlags) clientOptions(cfg config.AppConfig, logger *slog.Logger) []affinity.Option {
	opts := []affinity.Option{
		affinity.WithConfig(cfg),
		affinity.WithLogger(logger),
	}
	if f.offline {
		opts = append(opts, affinity.WithHashingEmbedder(0))
	}
	return opts
}
