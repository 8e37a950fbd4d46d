package service

import (
	"context"

	"munchkin-tracker/internal/constants"
	"munchkin-tracker/internal/domain"
	"munchkin-tracker/internal/stats"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type StatsService struct {
	roster  RosterRepo
	history HistoryRepo
	logger  zerolog.Logger
}

func NewStatsService(roster RosterRepo, history HistoryRepo, logger zerolog.Logger) *StatsService {
	return &StatsService{roster: roster, history: history, logger: logger}
}

// Overview holds the ranked table plus the three podium slots.
type Overview struct {
	Table  []domain.PlayerStats
	Podium Podium
}

type Podium struct {
	Matches domain.Leader
	Wins    domain.Leader
	Rate    domain.Leader
}

// Overview recomputes the standings from scratch on every call; stats are a
// pure function of roster and history, never cached state.
func (s *StatsService) Overview(ctx context.Context) (*Overview, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var roster []string
	var history []domain.HistoryEntry

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roster, err = s.roster.List(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.history.All(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("failed to load stats inputs")
		return nil, err
	}

	table := stats.Compute(roster, history)

	return &Overview{
		Table: table,
		Podium: Podium{
			Matches: stats.Leaderboard(table, stats.MetricMatches),
			Wins:    stats.Leaderboard(table, stats.MetricWins),
			Rate:    stats.Leaderboard(table, stats.MetricRate),
		},
	}, nil
}
