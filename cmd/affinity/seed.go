package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixml/affinity"
	"github.com/helixml/affinity/infrastructure/fixture"
	"github.com/helixml/affinity/internal/log"
)

func seedCmd() *cobra.Command {
	var (
		flags commonFlags
		file  string
		warm  bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load goals and contacts from a YAML seed file",
		Long: `Load goals and contacts from a YAML seed file.

Records are upserted by ID. With --warm, embeddings for every owner in the
file are computed up front so the first match is served from the cache.`,
		Example: `  affinity seed --file seed.yaml --warm --offline`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := fixture.Load(file)
			if err != nil {
				return err
			}

			cfg, err := flags.config()
			if err != nil {
				return err
			}
			slogger := log.NewLoggerWithWriter(os.Stderr, cfg.LogFormat(), cfg.LogLevel()).Slog()

			client, err := affinity.New(flags.clientOptions(cfg, slogger)...)
			if err != nil {
				return fmt.Errorf("create affinity client: %w", err)
			}
			defer func() {
				if err := client.Close(); err != nil {
					slogger.Error("failed to close affinity client", slog.Any("error", err))
				}
			}()

			return runSeed(cmd.Context(), cmd.OutOrStdout(), client, fx, warm)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the YAML seed file")
	cmd.Flags().BoolVar(&warm, "warm", false, "Compute embeddings after loading")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// runSeed saves every record in fx and optionally warms the embedding cache.
func runSeed(ctx context.Context, out io.Writer, client *affinity.Client, fx fixture.Fixture, warm bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	goals := fx.Goals()
	for _, g := range goals {
		if _, err := client.Directory.SaveGoal(ctx, g); err != nil {
			return err
		}
	}
	contacts := fx.Contacts()
	for _, c := range contacts {
		if _, err := client.Directory.SaveContact(ctx, c); err != nil {
			return err
		}
	}
	_, _ = fmt.Fprintf(out, "seeded %d goals and %d contacts\n", len(goals), len(contacts))

	if !warm {
		return nil
	}
	for _, owner := range fx.Owners() {
		result, err := client.Matching.Refresh(ctx, owner)
		if err != nil {
			return fmt.Errorf("warm embeddings for %s: %w", owner, err)
		}
		_, _ = fmt.Fprintf(out, "owner %s: %d computed, %d cached, %d failed\n",
			owner, result.Computed, result.Cached, result.Failed)
	}
	return nil
}
