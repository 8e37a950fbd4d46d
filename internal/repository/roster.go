package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

type RosterRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRosterRepository(sqlDB *sql.DB, logger zerolog.Logger) *RosterRepository {
	return &RosterRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// List returns every roster name in insertion order.
func (r *RosterRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM roster ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ReplaceAll rewrites the roster as one full-list write. Every roster mutation
// goes through this single operation, so last write wins is safe here.
func (r *RosterRepository) ReplaceAll(ctx context.Context, names []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM roster`); err != nil {
		return fmt.Errorf("failed to clear roster: %w", err)
	}

	for _, name := range names {
		if _, err := tx.ExecContext(ctx, `INSERT INTO roster (name) VALUES (?)`, name); err != nil {
			return fmt.Errorf("failed to insert roster name %s: %w", name, err)
		}
	}

	return tx.Commit()
}

func (r *RosterRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM roster`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count roster: %w", err)
	}
	return count, nil
}
