package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixml/affinity"
	"github.com/helixml/affinity/internal/log"
	"github.com/helixml/affinity/internal/mcp"
)

func stdioCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This lets AI assistants rank a user's contacts against their goals.
Configuration is loaded from environment variables and .env file.
Logs go to stderr because stdout carries the protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(&flags)
		},
	}

	flags.register(cmd)

	return cmd
}

func runStdio(flags *commonFlags) error {
	cfg, err := flags.config()
	if err != nil {
		return err
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	slogger := log.NewLoggerWithWriter(os.Stderr, cfg.LogFormat(), cfg.LogLevel()).Slog()
	slogger.Info("starting MCP server",
		slog.String("version", version),
		slog.String("data_dir", cfg.DataDir()),
	)

	client, err := affinity.New(flags.clientOptions(cfg, slogger)...)
	if err != nil {
		return fmt.Errorf("create affinity client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close affinity client", slog.Any("error", err))
		}
	}()

	mcpServer := mcp.NewServer(client.Matching, client.Directory, affinity.Version, slogger)
	return mcpServer.ServeStdio()
}
