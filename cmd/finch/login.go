package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Log in to the API server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword("Password: ")
			if err != nil {
				return err
			}

			s, c := newSession(nil)
			defer s.Close()

			if err := c.Login(cmd.Context(), args[0], password); err != nil {
				return err
			}
			if err := saveToken(s.Token.Get()); err != nil {
				return err
			}

			slog.Info("logged in", "username", args[0], "server", serverURL())
			return nil
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, c := newSession(nil)
			defer s.Close()

			// The token is discarded locally even if the server is
			// unreachable.
			if err := c.Logout(cmd.Context()); err != nil {
				slog.Warn("server logout failed", "error", err)
			}
			return clearToken()
		},
	}
}
