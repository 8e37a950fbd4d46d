package service

import (
	"context"
	"strings"

	"munchkin-tracker/internal/config"
	"munchkin-tracker/internal/domain"
	"munchkin-tracker/internal/store"

	"github.com/rs/zerolog"
)

// HistoryRepo is the full ledger surface: appends from the session engine,
// reads for listing and aggregation, passcode-gated deletes.
type HistoryRepo interface {
	HistoryWriter
	List(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
	All(ctx context.Context) ([]domain.HistoryEntry, error)
	Delete(ctx context.Context, id string) error
}

type HistoryService struct {
	repo     HistoryRepo
	store    *store.Store
	passcode string
	logger   zerolog.Logger
}

func NewHistoryService(repo HistoryRepo, st *store.Store, cfg *config.Config, logger zerolog.Logger) *HistoryService {
	return &HistoryService{
		repo:     repo,
		store:    st,
		passcode: cfg.AdminPasscode,
		logger:   logger,
	}
}

func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	return s.repo.List(ctx, limit)
}

// Delete is the only way an entry leaves the ledger.
func (s *HistoryService) Delete(ctx context.Context, id, passcode string) error {
	if err := checkPasscode(passcode, s.passcode); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.store.Notify(historyPath+"/"+id, nil)
	return nil
}

// ImportArchive appends one legacy aggregate entry: precomputed per-name match
// counts plus a winner list that may repeat names, one occurrence per
// pre-digitization win. The aggregator folds these in differently from normal
// single-game entries.
func (s *HistoryService) ImportArchive(ctx context.Context, entry domain.HistoryEntry, passcode string) (string, error) {
	if err := checkPasscode(passcode, s.passcode); err != nil {
		return "", err
	}
	if strings.TrimSpace(entry.Winner) == "" && len(entry.MatchesCount) == 0 {
		return "", domain.ErrEmptyName
	}

	entry.IsArchive = true
	id, err := s.repo.Append(ctx, entry)
	if err != nil {
		return "", err
	}
	entry.ID = id
	s.store.Notify(historyPath+"/"+id, entry)

	s.logger.Info().Str("id", id).Msg("legacy archive entry imported")
	return id, nil
}
