package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/burrow/internal/auth"
	"github.com/dyluth/burrow/internal/printer"
	"github.com/dyluth/burrow/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Burrow web server",
	Long: `Run the Burrow web server.

Serves the JSON API under /api (bearer token) and the browser surface
under /web (cookie) on the configured listen address. Shuts down
gracefully on SIGINT or SIGTERM.

Examples:
  # Run with the default config file (burrow.yml)
  burrow serve

  # Run with an explicit config file
  burrow serve --config /etc/burrow/burrow.yml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, cfg, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	tokens, err := auth.NewTokenService(cfg.TokenSecret, cfg.Lifetime())
	if err != nil {
		return printer.Error(
			"invalid token configuration",
			fmt.Sprintf("Error: %v", err),
			[]string{"Set token_secret in the config file."},
		)
	}

	srv := server.New(cfg, store, tokens)

	printer.Info("Burrow listening on %s\n", cfg.ListenAddr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigCh:
		printer.Info("\nReceived %v, shutting down...\n", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	printer.Success("Server stopped\n")
	return nil
}
