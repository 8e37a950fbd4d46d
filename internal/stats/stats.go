// Package stats derives the all-time standings from the roster and the history
// ledger. Computation is a pure function of its inputs: recomputing from the
// same roster and history always yields the same table.
package stats

import (
	"math"
	"sort"

	"munchkin-tracker/internal/domain"
)

type Metric string

const (
	MetricMatches Metric = "matches"
	MetricWins    Metric = "wins"
	MetricRate    Metric = "rate"
)

// Compute builds one row per roster name. Normal entries count one match per
// participant and one win per winner-list membership. Legacy aggregate entries
// fold in precomputed match counts and count each winner occurrence separately,
// since one such record compresses many pre-digitization games.
func Compute(roster []string, history []domain.HistoryEntry) []domain.PlayerStats {
	index := make(map[string]int, len(roster))
	rows := make([]domain.PlayerStats, 0, len(roster))
	for _, name := range roster {
		if _, ok := index[name]; ok {
			continue
		}
		index[name] = len(rows)
		rows = append(rows, domain.PlayerStats{Name: name})
	}

	for _, entry := range history {
		if entry.IsArchive {
			for name, count := range entry.MatchesCount {
				if i, ok := index[name]; ok {
					rows[i].Matches += count
				}
			}
			for _, name := range entry.WinnerNames() {
				if i, ok := index[name]; ok {
					rows[i].Wins++
				}
			}
			continue
		}

		winners := map[string]bool{}
		for _, name := range entry.WinnerNames() {
			winners[name] = true
		}
		for _, name := range entry.ParticipantNames() {
			i, ok := index[name]
			if !ok {
				continue
			}
			rows[i].Matches++
			if winners[name] {
				rows[i].Wins++
			}
		}
	}

	for i := range rows {
		rows[i].Rate = winRate(rows[i].Wins, rows[i].Matches)
	}

	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].Wins != rows[b].Wins {
			return rows[a].Wins > rows[b].Wins
		}
		return rows[a].Rate > rows[b].Rate
	})
	return rows
}

// Leaderboard returns every player tied at the metric maximum, restricted to
// players with at least one match. An empty result means nobody has played.
func Leaderboard(rows []domain.PlayerStats, metric Metric) domain.Leader {
	maxValue := 0
	var names []string
	for _, row := range rows {
		if row.Matches == 0 {
			continue
		}
		value := metricValue(row, metric)
		switch {
		case len(names) == 0 || value > maxValue:
			maxValue = value
			names = []string{row.Name}
		case value == maxValue:
			names = append(names, row.Name)
		}
	}
	return domain.Leader{Names: domain.JoinNames(names), Value: maxValue}
}

func metricValue(row domain.PlayerStats, metric Metric) int {
	switch metric {
	case MetricMatches:
		return row.Matches
	case MetricWins:
		return row.Wins
	default:
		return row.Rate
	}
}

func winRate(wins, matches int) int {
	if matches == 0 {
		return 0
	}
	return int(math.Round(100 * float64(wins) / float64(matches)))
}
