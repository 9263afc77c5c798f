package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/helixml/affinity"
	"github.com/helixml/affinity/application/service"
	"github.com/helixml/affinity/internal/log"
)

func matchCmd() *cobra.Command {
	var (
		flags  commonFlags
		goalID string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank a goal owner's contacts against the goal",
		Example: `  affinity match --goal g1
  affinity match --goal g1 --limit 5 --offline`,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			return runMatch(cmd.Context(), cmd.OutOrStdout(), client.Matching, goalID, limit)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&goalID, "goal", "", "ID of the goal to match")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of contacts to print (0 for all)")
	_ = cmd.MarkFlagRequired("goal")

	return cmd
}

type goalMatcher interface {
	MatchGoal(ctx context.Context, goalID string, opts ...service.MatchingOption) ([]service.Match, error)
}

// runMatch prints the ranked contacts for goalID as a table.
func runMatch(ctx context.Context, out io.Writer, matcher goalMatcher, goalID string, limit int) error {
	if limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	matches, err := matcher.MatchGoal(ctx, goalID, service.WithLimit(limit))
	if err != nil {
		return fmt.Errorf("match goal %s: %w", goalID, err)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RANK\tSCORE\tCONTACT\tNAME")
	for _, m := range matches {
		score := fmt.Sprintf("%.4f", m.Score)
		if !m.Available {
			score = "n/a"
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", m.Rank, score, m.ContactID, m.ContactName)
	}
	return tw.Flush()
}
