package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/osirenko/finch/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the transaction API server",
		Long: `Start the HTTP API the clients talk to. Migrations run
automatically before the server begins accepting requests.`,
		RunE: runServe,
	}

	cmd.Flags().String("listen", ":8080", "address to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	listen, _ := cmd.Flags().GetString("listen")

	store, err := openStorage()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("starting API server", "listen", listen)
	return server.New(store).ListenAndServe(ctx, listen)
}
