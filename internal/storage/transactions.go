package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/osirenko/finch/internal/common"
	"github.com/osirenko/finch/internal/model"
)

// ListTransactions returns the user's transactions newest first, with tags
// and photo references aggregated in.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, userID int64) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			t.transaction_id, t.amount, t.currency, t.occurred_at, t.merchant,
			u.person_name, t.card, t.category, t.details,
			COALESCE(GROUP_CONCAT(DISTINCT tags.tag_name), '') AS tags,
			COALESCE(GROUP_CONCAT(DISTINCT tp.file_path), '') AS photos
		FROM transactions t
		JOIN users u ON t.user_id = u.user_id
		LEFT JOIN transaction_tags tt ON t.transaction_id = tt.transaction_id
		LEFT JOIN tags ON tt.tag_id = tags.tag_id
		LEFT JOIN transaction_photos tp ON t.transaction_id = tp.transaction_id
		WHERE t.user_id = ?
		GROUP BY t.transaction_id
		ORDER BY t.occurred_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	transactions := []model.Transaction{}
	for rows.Next() {
		var tr model.Transaction
		var tags, photos string
		if err := rows.Scan(&tr.ID, &tr.Amount, &tr.Currency, &tr.OccurredAt, &tr.Merchant,
			&tr.PersonName, &tr.Card, &tr.Category, &tr.Details, &tags, &photos); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tr.Tags = splitAggregate(tags)
		tr.Photos = splitAggregate(photos)
		transactions = append(transactions, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

func splitAggregate(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// AddTransactions inserts a batch for the user in one database
// transaction. A row that collides on (user, merchant, occurred_at,
// amount) updates the categorization fields instead of duplicating the
// transaction.
func (s *SQLiteStorage) AddTransactions(ctx context.Context, userID int64, payload []model.NewTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(payload) == 0 {
		return common.ErrNoTransactions
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range payload {
		currency := t.Currency
		if currency == "" {
			currency = model.DefaultCurrency
		}

		var transactionID int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO transactions (user_id, amount, currency, occurred_at, merchant, card, category, details)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, merchant, occurred_at, amount) DO UPDATE SET
				category = excluded.category,
				card = excluded.card,
				details = CASE
					WHEN excluded.details IS NOT NULL AND excluded.details <> '' THEN excluded.details
					ELSE transactions.details
				END
			RETURNING transaction_id
		`, userID, t.Amount, currency, t.OccurredAt, t.Merchant, t.Card, t.Category, t.Details).Scan(&transactionID)
		if err != nil {
			return fmt.Errorf("failed to upsert transaction: %w", err)
		}

		for _, tag := range model.NormalizeTags(t.Tags) {
			if err := linkTag(ctx, tx, transactionID, tag); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}
	return nil
}

func linkTag(ctx context.Context, tx *sql.Tx, transactionID int64, tag string) error {
	var tagID int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO tags (tag_name) VALUES (?)
		ON CONFLICT (tag_name) DO UPDATE SET tag_name = excluded.tag_name
		RETURNING tag_id
	`, tag).Scan(&tagID)
	if err != nil {
		return fmt.Errorf("failed to get or create tag %q: %w", tag, err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO transaction_tags (transaction_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		transactionID, tagID)
	if err != nil {
		return fmt.Errorf("failed to link tag %q: %w", tag, err)
	}
	return nil
}

// UpdateTransaction replaces the stored record with the given one,
// reconciling the tag set. Returns common.ErrNotFound when the user owns
// no transaction with that ID.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, userID int64, tr model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET amount = ?, currency = ?, occurred_at = ?, merchant = ?, card = ?, category = ?, details = ?
		WHERE transaction_id = ? AND user_id = ?
	`, tr.Amount, tr.Currency, tr.OccurredAt, tr.Merchant, tr.Card, tr.Category, tr.Details, tr.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM transaction_tags WHERE transaction_id = ?", tr.ID); err != nil {
		return fmt.Errorf("failed to clear tags: %w", err)
	}
	for _, tag := range model.NormalizeTags(tr.Tags) {
		if err := linkTag(ctx, tx, tr.ID, tag); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit update: %w", err)
	}
	return nil
}

// DeleteTransaction removes the user's transaction. Returns
// common.ErrNotFound when no row matches.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, userID, transactionID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE transaction_id = ? AND user_id = ?",
		transactionID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// SetCategory assigns one category to a batch of the user's transactions.
func (s *SQLiteStorage) SetCategory(ctx context.Context, userID int64, ids []int64, category string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("transaction IDs cannot be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		"UPDATE transactions SET category = ? WHERE transaction_id = ? AND user_id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, category, id, userID); err != nil {
			return fmt.Errorf("failed to set category on transaction %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit category update: %w", err)
	}
	return nil
}

// Tag actions accepted by ManageTag.
const (
	TagActionAdd    = "add"
	TagActionRemove = "remove"
)

// ManageTag adds or removes one tag across a batch of the user's
// transactions.
func (s *SQLiteStorage) ManageTag(ctx context.Context, userID int64, ids []int64, tag, action string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(tag, "tag"); err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("transaction IDs cannot be empty")
	}
	if action != TagActionAdd && action != TagActionRemove {
		return fmt.Errorf("invalid tag action %q", action)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var tagID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO tags (tag_name) VALUES (?)
		ON CONFLICT (tag_name) DO UPDATE SET tag_name = excluded.tag_name
		RETURNING tag_id
	`, tag).Scan(&tagID)
	if err != nil {
		return fmt.Errorf("failed to get or create tag %q: %w", tag, err)
	}

	query := "INSERT INTO transaction_tags (transaction_id, tag_id) SELECT ?, ? WHERE EXISTS (SELECT 1 FROM transactions WHERE transaction_id = ? AND user_id = ?) ON CONFLICT DO NOTHING"
	if action == TagActionRemove {
		query = "DELETE FROM transaction_tags WHERE transaction_id = ? AND tag_id = ? AND EXISTS (SELECT 1 FROM transactions WHERE transaction_id = ? AND user_id = ?)"
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id, tagID, id, userID); err != nil {
			return fmt.Errorf("failed to %s tag on transaction %d: %w", action, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tag update: %w", err)
	}
	return nil
}

// ListCategories returns the distinct categories in use by the user,
// alphabetically.
func (s *SQLiteStorage) ListCategories(ctx context.Context, userID int64) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT category FROM transactions WHERE user_id = ? AND category <> '' ORDER BY category",
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}
