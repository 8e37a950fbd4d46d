package stats

import (
	"reflect"
	"testing"

	"munchkin-tracker/internal/domain"
)

func TestComputeRoundTrip(t *testing.T) {
	roster := []string{"A", "B"}
	history := []domain.HistoryEntry{
		{Participants: "A, B", Winner: "A"},
		{Participants: "A, B", Winner: "B"},
	}

	rows := Compute(roster, history)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Matches != 2 || row.Wins != 1 || row.Rate != 50 {
			t.Fatalf("%s: expected matches=2 wins=1 rate=50, got %+v", row.Name, row)
		}
	}

	leader := Leaderboard(rows, MetricWins)
	if leader.Names != "A, B" || leader.Value != 1 {
		t.Fatalf("expected tied leaderboard {A, B / 1}, got %+v", leader)
	}
}

func TestLegacyArchiveCountsOccurrences(t *testing.T) {
	roster := []string{"A", "B"}
	history := []domain.HistoryEntry{
		{
			IsArchive:    true,
			Winner:       "A, A, A",
			MatchesCount: map[string]int{"A": 5},
		},
	}

	rows := Compute(roster, history)

	var a domain.PlayerStats
	for _, row := range rows {
		if row.Name == "A" {
			a = row
		}
	}
	if a.Matches != 5 {
		t.Fatalf("expected A.matches = 5, got %d", a.Matches)
	}
	if a.Wins != 3 {
		t.Fatalf("expected A.wins = 3 (occurrence counting), got %d", a.Wins)
	}
	if a.Rate != 60 {
		t.Fatalf("expected A.rate = 60, got %d", a.Rate)
	}
}

func TestComputeIgnoresNamesOffRoster(t *testing.T) {
	roster := []string{"A"}
	history := []domain.HistoryEntry{
		{Participants: "A, Stranger", Winner: "Stranger"},
	}

	rows := Compute(roster, history)
	if len(rows) != 1 {
		t.Fatalf("expected only roster names, got %d rows", len(rows))
	}
	if rows[0].Matches != 1 || rows[0].Wins != 0 {
		t.Fatalf("expected A matches=1 wins=0, got %+v", rows[0])
	}
}

func TestComputeSortsByWinsThenRate(t *testing.T) {
	roster := []string{"A", "B", "C"}
	history := []domain.HistoryEntry{
		// A: 2 wins in 5 games (rate 40), B: 2 wins in 4 (rate 50), C: 1 win.
		{Participants: "A, B, C", Winner: "A"},
		{Participants: "A, B, C", Winner: "B"},
		{Participants: "A, B", Winner: "A"},
		{Participants: "A, B", Winner: "B"},
		{Participants: "A, C", Winner: "C"},
	}

	rows := Compute(roster, history)

	got := make([]string, len(rows))
	for i, row := range rows {
		got[i] = row.Name
	}
	if !reflect.DeepEqual(got, []string{"B", "A", "C"}) {
		t.Fatalf("expected order B, A, C, got %v", got)
	}
}

func TestRateZeroWithoutMatches(t *testing.T) {
	rows := Compute([]string{"A"}, nil)
	if rows[0].Rate != 0 {
		t.Fatalf("expected rate 0 with no matches, got %d", rows[0].Rate)
	}
}

func TestLeaderboardExcludesUnplayed(t *testing.T) {
	roster := []string{"A", "Benched"}
	history := []domain.HistoryEntry{
		{Participants: "A", Winner: ""},
	}

	rows := Compute(roster, history)

	leader := Leaderboard(rows, MetricRate)
	if leader.Names != "A" {
		t.Fatalf("expected only players with matches on the podium, got %+v", leader)
	}

	empty := Leaderboard(Compute(roster, nil), MetricWins)
	if empty.Names != "" || empty.Value != 0 {
		t.Fatalf("expected empty leaderboard with no games, got %+v", empty)
	}
}
