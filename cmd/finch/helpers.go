package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/osirenko/finch/internal/client"
	"github.com/osirenko/finch/internal/state"
	"github.com/osirenko/finch/internal/storage"
)

func serverURL() string {
	if u := viper.GetString("server.url"); u != "" {
		return strings.TrimRight(u, "/")
	}
	return "http://localhost:8080"
}

func databasePath() (string, error) {
	if p := viper.GetString("database.path"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "finch", "finch.db"), nil
}

func openStorage() (*storage.SQLiteStorage, error) {
	dbPath, err := databasePath()
	if err != nil {
		return nil, err
	}
	if mkErr := os.MkdirAll(filepath.Dir(dbPath), 0o755); mkErr != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", mkErr)
	}
	return storage.NewSQLiteStorage(dbPath)
}

func tokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "finch", "token"), nil
}

func saveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if mkErr := os.MkdirAll(filepath.Dir(path), 0o700); mkErr != nil {
		return fmt.Errorf("failed to create config directory: %w", mkErr)
	}
	if wrErr := os.WriteFile(path, []byte(token), 0o600); wrErr != nil {
		return fmt.Errorf("failed to save session token: %w", wrErr)
	}
	return nil
}

func loadToken() string {
	path, err := tokenPath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func clearToken() error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
		return fmt.Errorf("failed to remove session token: %w", rmErr)
	}
	return nil
}

// newSession builds the state graph and API client the interactive
// commands share, seeding the session token from disk.
func newSession(params url.Values) (*state.AppState, *client.Client) {
	s := state.New(params, time.Now(), nil)
	if token := loadToken(); token != "" {
		s.Token.Set(token)
	}
	return s, client.New(serverURL(), s)
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}
