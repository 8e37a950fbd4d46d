package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"munchkin-tracker/internal/config"
	"munchkin-tracker/internal/database"
	"munchkin-tracker/internal/domain"

	"github.com/rs/zerolog"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRosterReplaceAllRoundTrip(t *testing.T) {
	repo := NewRosterRepository(newTestDB(t), zerolog.Nop())
	ctx := context.Background()

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty roster, got %d", count)
	}

	if err := repo.ReplaceAll(ctx, []string{"Ann", "Bob", "Kate"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	// A second full-list write fully supersedes the first.
	if err := repo.ReplaceAll(ctx, []string{"Kate", "Ann"}); err != nil {
		t.Fatalf("replace again: %v", err)
	}

	names, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"Kate", "Ann"}) {
		t.Fatalf("expected insertion order preserved, got %v", names)
	}
}

func TestHistoryAppendAndRead(t *testing.T) {
	repo := NewHistoryRepository(newTestDB(t), zerolog.Nop())
	ctx := context.Background()

	first := domain.HistoryEntry{
		Date:         "Mar 14, 19:30",
		PlayedAt:     time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC),
		Participants: "Ann, Bob",
		Winner:       "Ann",
		Details:      map[string][]int{"Ann": {9}, "Bob": {2, 1}},
		FinalTarget:  10,
	}
	id, err := repo.Append(ctx, first)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}

	second := domain.HistoryEntry{
		Date:         "Mar 15, 21:00",
		PlayedAt:     time.Date(2026, 3, 15, 21, 0, 0, 0, time.UTC),
		Participants: "Ann, Bob",
		Winner:       "Bob",
	}
	if _, err := repo.Append(ctx, second); err != nil {
		t.Fatalf("append second: %v", err)
	}

	entries, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Most recent first, by numeric timestamp rather than the display date.
	if entries[0].Winner != "Bob" {
		t.Fatalf("expected newest entry first, got winner %q", entries[0].Winner)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FinalTarget != 10 {
		t.Fatalf("expected final target 10, got %d", got.FinalTarget)
	}
	if !reflect.DeepEqual(got.Details, first.Details) {
		t.Fatalf("details round trip failed: %v", got.Details)
	}
}

func TestHistoryArchiveEntryRoundTrip(t *testing.T) {
	repo := NewHistoryRepository(newTestDB(t), zerolog.Nop())
	ctx := context.Background()

	entry := domain.HistoryEntry{
		Date:         "Archive (spreadsheet)",
		PlayedAt:     time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Participants: "Ann, Bob",
		Winner:       "Ann, Ann, Bob",
		IsArchive:    true,
		MatchesCount: map[string]int{"Ann": 5, "Bob": 3},
	}
	id, err := repo.Append(ctx, entry)
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsArchive {
		t.Fatal("expected archive flag to survive")
	}
	if !reflect.DeepEqual(got.MatchesCount, entry.MatchesCount) {
		t.Fatalf("matches count round trip failed: %v", got.MatchesCount)
	}
	if got.Details != nil {
		t.Fatalf("expected no details on archive entry, got %v", got.Details)
	}
}

func TestHistoryDelete(t *testing.T) {
	repo := NewHistoryRepository(newTestDB(t), zerolog.Nop())
	ctx := context.Background()

	id, err := repo.Append(ctx, domain.HistoryEntry{
		Date:         "Mar 14, 19:30",
		PlayedAt:     time.Now(),
		Participants: "Ann",
		Winner:       "Ann",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, id); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows on second delete, got %v", err)
	}
	if _, err := repo.Get(ctx, id); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected entry gone, got %v", err)
	}
}
