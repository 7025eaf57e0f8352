package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dyluth/burrow/internal/auth"
	"github.com/dyluth/burrow/internal/config"
	"github.com/dyluth/burrow/internal/server"
	"github.com/dyluth/burrow/pkg/taskboard"
)

func main() {
	// 1. Load configuration from environment
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Parse Redis URL
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid REDIS_URL: %v\n", err)
		os.Exit(1)
	}

	// 3. Create store client
	store := taskboard.NewClient(redisOpts)
	defer store.Close()

	// 4. Verify Redis connectivity
	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Redis not accessible: %v\n", err)
		os.Exit(1)
	}

	// 5. Create token service
	tokens, err := auth.NewTokenService(cfg.TokenSecret, cfg.Lifetime())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to create token service: %v\n", err)
		os.Exit(1)
	}

	// 6. Create server
	srv := server.New(cfg, store, tokens)

	fmt.Printf("Burrow daemon starting on %s\n", cfg.ListenAddr)

	// 7. Setup graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	// 8. Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// 9. Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		fmt.Printf("Received signal %v, shutting down gracefully...\n", sig)

		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Shutdown failed: %v\n", err)
			os.Exit(1)
		}
	case runErr := <-errCh:
		if runErr != nil && runErr != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", runErr)
			os.Exit(1)
		}
	}

	fmt.Println("Burrow daemon stopped")
}
