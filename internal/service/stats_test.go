package service

import (
	"context"
	"testing"

	"munchkin-tracker/internal/domain"

	"github.com/rs/zerolog"
)

func TestStatsOverview(t *testing.T) {
	roster := &fakeRosterRepo{names: []string{"Ann", "Bob", "Benched"}}
	history := &fakeHistoryRepo{}
	history.entries = []domain.HistoryEntry{
		{ID: "h1", Participants: "Ann, Bob", Winner: "Ann"},
		{ID: "h2", Participants: "Ann, Bob", Winner: "Bob"},
		{ID: "h3", IsArchive: true, Winner: "Ann, Ann", MatchesCount: map[string]int{"Ann": 2}},
	}

	svc := NewStatsService(roster, history, zerolog.Nop())

	overview, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	if len(overview.Table) != 3 {
		t.Fatalf("expected one row per roster name, got %d", len(overview.Table))
	}
	top := overview.Table[0]
	if top.Name != "Ann" || top.Matches != 4 || top.Wins != 3 || top.Rate != 75 {
		t.Fatalf("unexpected top row %+v", top)
	}

	if overview.Podium.Wins.Names != "Ann" || overview.Podium.Wins.Value != 3 {
		t.Fatalf("unexpected wins podium %+v", overview.Podium.Wins)
	}
	if overview.Podium.Matches.Names != "Ann" || overview.Podium.Matches.Value != 4 {
		t.Fatalf("unexpected matches podium %+v", overview.Podium.Matches)
	}
}
