package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindCategory(ctx context.Context, email, description string) (string, error) {
	// POSITION keeps '%' and '_' in learned patterns literal.
	query := `
		SELECT category
		FROM category_mappings
		WHERE email = $1 AND POSITION(LOWER(raw_pattern) IN LOWER($2)) > 0
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var category string

	err := s.db.QueryRowContext(ctx, query, email, description).Scan(&category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding category: %w", err)
	}

	return category, nil
}

func (s *Store) UpsertMapping(ctx context.Context, email, pattern, category string) error {
	query := `
		INSERT INTO category_mappings (email, raw_pattern, category, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (email, LOWER(raw_pattern)) DO UPDATE SET category = EXCLUDED.category
	`

	_, err := s.db.ExecContext(ctx, query, email, pattern, category)
	if err != nil {
		return fmt.Errorf("saving mapping: %w", err)
	}

	return nil
}
