package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/osirenko/finch/internal/common"
)

// User is a stored account.
type User struct {
	Username     string
	HashPassword string
	PersonName   string
	ID           int64
}

// CreateUser stores a new account with an argon2id password hash.
func (s *SQLiteStorage) CreateUser(ctx context.Context, username, password, personName string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(username, "username"); err != nil {
		return 0, err
	}
	if err := validateString(password, "password"); err != nil {
		return 0, err
	}

	hash, err := common.HashPassword(password, common.DefaultArgon2Params())
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, hash_password, person_name) VALUES (?, ?, ?)",
		username, hash, personName)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return result.LastInsertId()
}

// GetUserByUsername looks up an account. Returns common.ErrNotFound when
// the username is unknown.
func (s *SQLiteStorage) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(username, "username"); err != nil {
		return nil, err
	}

	user := &User{}
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id, username, hash_password, person_name FROM users WHERE username = ?",
		username).Scan(&user.ID, &user.Username, &user.HashPassword, &user.PersonName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// CreateSession records a session token for a user.
func (s *SQLiteStorage) CreateSession(ctx context.Context, userID int64, token, device, lastIP string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(token, "token"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (session_code, user_id, device, last_ip) VALUES (?, ?, ?, ?)",
		token, userID, device, lastIP)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSessionUser resolves a session token to its user ID, bumping the
// session's last_used stamp. Unknown tokens return common.ErrUnauthorized.
func (s *SQLiteStorage) GetSessionUser(ctx context.Context, token string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if token == "" {
		return 0, common.ErrUnauthorized
	}

	var userID int64
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id FROM sessions WHERE session_code = ?", token).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, common.ErrUnauthorized
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query session: %w", err)
	}

	_, _ = s.db.ExecContext(ctx,
		"UPDATE sessions SET last_used = CURRENT_TIMESTAMP WHERE session_code = ?", token)

	return userID, nil
}

// DeleteSession removes a session token. Deleting an unknown token is not
// an error.
func (s *SQLiteStorage) DeleteSession(ctx context.Context, token string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE session_code = ?", token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
