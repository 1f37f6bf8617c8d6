package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage server accounts",
	}
	cmd.AddCommand(userAddCmd())
	return cmd
}

func userAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an account in the local database",
		Long: `Create a login account directly in the database. There is no
self-service signup; accounts are provisioned by whoever runs the
server.`,
		Args: cobra.ExactArgs(1),
		RunE: runUserAdd,
	}

	cmd.Flags().String("name", "", "display name shown on transactions (defaults to the username)")

	return cmd
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	username := args[0]
	personName, _ := cmd.Flags().GetString("name")
	if personName == "" {
		personName = username
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	store, err := openStorage()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	id, err := store.CreateUser(ctx, username, password, personName)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created", "username", username, "id", id)
	return nil
}
