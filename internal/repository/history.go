package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"munchkin-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type HistoryRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewHistoryRepository(sqlDB *sql.DB, logger zerolog.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Append inserts one immutable entry and returns its assigned id. Entries are
// never updated afterwards; the only other write path is Delete.
func (r *HistoryRepository) Append(ctx context.Context, entry domain.HistoryEntry) (string, error) {
	id := entry.ID
	if id == "" {
		var err error
		id, err = gonanoid.New()
		if err != nil {
			return "", fmt.Errorf("failed to generate nanoid: %w", err)
		}
	}

	details, err := marshalNullable(entry.Details)
	if err != nil {
		return "", fmt.Errorf("failed to encode details: %w", err)
	}
	matchesCount, err := marshalNullable(entry.MatchesCount)
	if err != nil {
		return "", fmt.Errorf("failed to encode matches count: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO games_history (id, date, played_at, participants, winner, details, final_target, is_archive, matches_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, entry.Date, entry.PlayedAt, entry.Participants, entry.Winner,
		details, nullableInt(entry.FinalTarget), entry.IsArchive, matchesCount,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert history entry: %w", err)
	}

	r.logger.Info().Str("id", id).Str("winner", entry.Winner).Msg("history entry appended")
	return id, nil
}

// List returns up to limit entries, most recent first by numeric timestamp.
// The display date string is not sortable, which is why played_at exists.
func (r *HistoryRepository) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, played_at, participants, winner, details, final_target, is_archive, matches_count
		FROM games_history
		ORDER BY played_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// All returns every entry; ordering does not matter to the aggregator.
func (r *HistoryRepository) All(ctx context.Context) ([]domain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, played_at, participants, winner, details, final_target, is_archive, matches_count
		FROM games_history`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (r *HistoryRepository) Get(ctx context.Context, id string) (*domain.HistoryEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, played_at, participants, winner, details, final_target, is_archive, matches_count
		FROM games_history
		WHERE id = ?`, id)

	entry, err := scanEntry(row.Scan)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *HistoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM games_history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete history entry %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	r.logger.Info().Str("id", id).Msg("history entry deleted")
	return nil
}

func scanEntries(rows *sql.Rows) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(scan func(...any) error) (domain.HistoryEntry, error) {
	var entry domain.HistoryEntry
	var details, matchesCount sql.NullString
	var finalTarget sql.NullInt64

	err := scan(
		&entry.ID, &entry.Date, &entry.PlayedAt, &entry.Participants, &entry.Winner,
		&details, &finalTarget, &entry.IsArchive, &matchesCount,
	)
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("failed to scan history entry: %w", err)
	}

	if details.Valid {
		if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
			return domain.HistoryEntry{}, fmt.Errorf("failed to decode details: %w", err)
		}
	}
	if matchesCount.Valid {
		if err := json.Unmarshal([]byte(matchesCount.String), &entry.MatchesCount); err != nil {
			return domain.HistoryEntry{}, fmt.Errorf("failed to decode matches count: %w", err)
		}
	}
	if finalTarget.Valid {
		entry.FinalTarget = int(finalTarget.Int64)
	}
	return entry, nil
}

func marshalNullable(v any) (sql.NullString, error) {
	switch value := v.(type) {
	case map[string][]int:
		if len(value) == 0 {
			return sql.NullString{}, nil
		}
	case map[string]int:
		if len(value) == 0 {
			return sql.NullString{}, nil
		}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func nullableInt(v int) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}
