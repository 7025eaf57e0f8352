package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dyluth/burrow/internal/auth"
	"github.com/dyluth/burrow/internal/printer"
	"github.com/dyluth/burrow/pkg/taskboard"
)

var userAddPassword string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
	Long:  `Manage user accounts directly in the store.`,
}

var userAddCmd = &cobra.Command{
	Use:   "add USERNAME",
	Short: "Create a user account",
	Long: `Create a user account directly in the store.

The password is hashed before storage; the plaintext is never written
anywhere. Usernames are unique and case-sensitive.

Examples:
  # Create a user
  burrow user add alice --password hunter2`,
	Args: cobra.ExactArgs(1),
	RunE: runUserAdd,
}

func init() {
	userAddCmd.Flags().StringVarP(&userAddPassword, "password", "p", "", "Password for the new account (required)")
	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	username := args[0]

	if userAddPassword == "" {
		return printer.Error(
			"missing --password flag",
			"A password is required to create an account.",
			[]string{fmt.Sprintf("Provide one:\n  burrow user add %s --password <password>", username)},
		)
	}

	store, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	hash, err := auth.HashPassword(userAddPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &taskboard.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAtMs:  time.Now().UnixMilli(),
	}

	if err := store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, taskboard.ErrUsernameTaken) {
			return printer.Error(
				fmt.Sprintf("username '%s' is already taken", username),
				"An account with that username already exists.",
				[]string{"Pick a different username."},
			)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	printer.Success("Created user '%s' (%s)\n", username, user.ID)
	return nil
}
