package service

import (
	"context"
	"slices"
	"strings"

	"munchkin-tracker/internal/config"
	"munchkin-tracker/internal/domain"
	"munchkin-tracker/internal/store"

	"github.com/rs/zerolog"
)

const rosterPath = "player_list"

// RosterRepo is the durable side of the roster.
type RosterRepo interface {
	List(ctx context.Context) ([]string, error)
	ReplaceAll(ctx context.Context, names []string) error
	Count(ctx context.Context) (int, error)
}

// RosterService owns the durable list of eligible participant names. Every
// mutation is a full-list replacement mirrored to the store's player_list path
// so observers get a change notification.
type RosterService struct {
	repo     RosterRepo
	store    *store.Store
	passcode string
	seed     []string
	logger   zerolog.Logger
}

func NewRosterService(repo RosterRepo, st *store.Store, cfg *config.Config, logger zerolog.Logger) *RosterService {
	return &RosterService{
		repo:     repo,
		store:    st,
		passcode: cfg.AdminPasscode,
		seed:     cfg.RosterSeed,
		logger:   logger,
	}
}

// SeedIfEmpty writes the configured default list exactly once, on observing an
// empty roster. Two processes racing here both write identical content, so the
// full-list overwrite makes the race harmless.
func (s *RosterService) SeedIfEmpty(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 || len(s.seed) == 0 {
		s.mirror(ctx)
		return nil
	}

	if err := s.repo.ReplaceAll(ctx, s.seed); err != nil {
		return err
	}
	s.store.Set(rosterPath, s.seed)

	s.logger.Info().Int("count", len(s.seed)).Msg("roster seeded with defaults")
	return nil
}

func (s *RosterService) List(ctx context.Context) ([]string, error) {
	return s.repo.List(ctx)
}

// Add appends a new name. Duplicates are compared case-sensitively and
// rejected without mutating the list.
func (s *RosterService) Add(ctx context.Context, name, passcode string) error {
	if err := checkPasscode(passcode, s.passcode); err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "/") {
		return domain.ErrEmptyName
	}

	names, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(names, name) {
		return domain.ErrDuplicateName
	}

	names = append(names, name)
	if err := s.repo.ReplaceAll(ctx, names); err != nil {
		return err
	}
	s.store.Set(rosterPath, names)

	s.logger.Info().Str("name", name).Msg("roster name added")
	return nil
}

// Remove filters the name out and writes the list back. Removing an absent
// name is an idempotent no-op.
func (s *RosterService) Remove(ctx context.Context, name, passcode string) error {
	if err := checkPasscode(passcode, s.passcode); err != nil {
		return err
	}

	names, err := s.repo.List(ctx)
	if err != nil {
		return err
	}

	filtered := slices.DeleteFunc(slices.Clone(names), func(n string) bool { return n == name })
	if err := s.repo.ReplaceAll(ctx, filtered); err != nil {
		return err
	}
	s.store.Set(rosterPath, filtered)

	s.logger.Info().Str("name", name).Msg("roster name removed")
	return nil
}

func (s *RosterService) mirror(ctx context.Context) {
	names, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to mirror roster to store")
		return
	}
	s.store.Set(rosterPath, names)
}
