package commands

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/dyluth/burrow/internal/config"
	"github.com/dyluth/burrow/internal/printer"
	"github.com/dyluth/burrow/pkg/taskboard"
)

// configPath is the shared --config flag, registered on the root command so
// every subcommand that touches the store or server picks it up.
var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "burrow.yml", "Path to config file")
}

// openStore loads the config and connects to the Redis-backed store.
// Callers must Close() the returned client.
func openStore(ctx context.Context) (*taskboard.Client, *config.BurrowConfig, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, printer.Error(
			"failed to load config",
			fmt.Sprintf("Error: %v", err),
			[]string{fmt.Sprintf("Check the config file:\n  cat %s", configPath)},
		)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	store := taskboard.NewClient(redisOpts)

	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, nil, printer.ErrorWithContext(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis at %s", cfg.RedisURL),
			map[string]string{"Config": configPath},
			[]string{"Check that Redis is running and redis_url is correct."},
		)
	}

	return store, cfg, nil
}

// resolveUser maps a --user username to its stored record.
func resolveUser(ctx context.Context, store *taskboard.Client, cmd *cobra.Command, username string) (*taskboard.User, error) {
	if username == "" {
		return nil, printer.Error(
			"missing --user flag",
			fmt.Sprintf("The '%s' command operates on a single user's todos.", cmd.Name()),
			[]string{fmt.Sprintf("Specify the user:\n  burrow %s --user <username>", cmd.Name())},
		)
	}

	user, err := store.GetUserByUsername(ctx, username)
	if err != nil {
		if taskboard.IsNotFound(err) {
			return nil, printer.Error(
				fmt.Sprintf("user '%s' not found", username),
				"No account exists with that username.",
				[]string{fmt.Sprintf("Create it first:\n  burrow user add %s", username)},
			)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return user, nil
}
