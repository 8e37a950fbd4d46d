package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"munchkin-tracker/internal/config"
	"munchkin-tracker/internal/constants"
	"munchkin-tracker/internal/domain"
	"munchkin-tracker/internal/store"

	"github.com/rs/zerolog"
)

const (
	sessionPath = "current_game"
	historyPath = "games_history"
)

// HistoryWriter is the ledger side the session engine needs: one append per
// concluded game.
type HistoryWriter interface {
	Append(ctx context.Context, entry domain.HistoryEntry) (string, error)
}

// SessionService owns the lifecycle of the singleton session. All state lives
// in the shared store under current_game; the service reads a snapshot,
// validates the transition, and issues the smallest write that expresses it.
type SessionService struct {
	store    *store.Store
	history  HistoryWriter
	passcode string
	logger   zerolog.Logger
	now      func() time.Time
}

func NewSessionService(st *store.Store, history HistoryWriter, cfg *config.Config, logger zerolog.Logger) *SessionService {
	return &SessionService{
		store:    st,
		history:  history,
		passcode: cfg.AdminPasscode,
		logger:   logger,
		now:      time.Now,
	}
}

// Current decodes the live session from the store. An absent or empty subtree
// is an idle session; illegal combinations cannot be constructed from here
// because decoding normalizes them away.
func (s *SessionService) Current() domain.Session {
	raw, ok := s.store.Get(sessionPath)
	if !ok {
		return domain.NewIdleSession()
	}
	return decodeSession(raw)
}

// Snapshot returns the session together with its derived win condition.
func (s *SessionService) Snapshot() (domain.Session, []string) {
	sess := s.Current()
	return sess, sess.Winners()
}

// Join adds a participant to the lobby via a partial-path merge, never touching
// other players' progress. Joining an idle session opens the lobby. Re-joining
// while a game is active is rejected outright rather than silently resetting
// that player's progress.
func (s *SessionService) Join(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	// Names become store path segments, so a separator would corrupt the tree.
	if name == "" || strings.Contains(name, "/") {
		return domain.ErrEmptyName
	}

	sess := s.Current()
	if sess.Status == domain.StatusActive {
		return domain.ErrSessionActive
	}

	if sess.Status == domain.StatusIdle {
		s.store.Set(sessionPath, map[string]any{
			"status":      string(domain.StatusLobby),
			"targetScore": sess.TargetScore,
			"players":     map[string]any{},
		})
	}

	s.store.Merge(sessionPath+"/players/"+name, map[string]any{
		"name":   name,
		"levels": map[string]any{"0": 0},
	})

	s.logger.Info().Str("player", name).Msg("player joined lobby")
	return nil
}

// Leave removes one lobby participant. Admin only; a started game keeps its
// player set frozen.
func (s *SessionService) Leave(ctx context.Context, name, passcode string) error {
	if err := s.requireAdmin(passcode); err != nil {
		return err
	}

	sess := s.Current()
	switch sess.Status {
	case domain.StatusActive:
		return domain.ErrSessionActive
	case domain.StatusIdle:
		return domain.ErrSessionIdle
	}
	if _, ok := sess.Players[name]; !ok {
		return domain.ErrUnknownPlayer
	}

	s.store.Delete(sessionPath + "/players/" + name)

	if len(sess.Players) == 1 {
		// Last player out closes the lobby; players must be empty while idle.
		s.reset()
	}

	s.logger.Info().Str("player", name).Msg("player left lobby")
	return nil
}

// Start transitions the lobby to an active game. Rejected with an empty lobby.
func (s *SessionService) Start(ctx context.Context, passcode string) error {
	if err := s.requireAdmin(passcode); err != nil {
		return err
	}

	sess := s.Current()
	if sess.Status == domain.StatusActive {
		return domain.ErrSessionActive
	}
	if len(sess.Players) == 0 {
		return domain.ErrEmptyLobby
	}

	s.store.Merge(sessionPath, map[string]any{"status": string(domain.StatusActive)})

	s.logger.Info().Int("players", len(sess.Players)).Msg("game started")
	return nil
}

// AdjustLevel adds delta to one player's round value. This is a read-modify-
// write against the store: two devices adjusting the same cell in the same
// window can lose one update, an accepted risk for a co-located group.
func (s *SessionService) AdjustLevel(ctx context.Context, name string, round, delta int, passcode string) error {
	return s.writeLevel(ctx, name, round, passcode, func(prev int) int { return prev + delta })
}

// SetLevel is the absolute-value convenience form of AdjustLevel.
func (s *SessionService) SetLevel(ctx context.Context, name string, round, value int, passcode string) error {
	return s.writeLevel(ctx, name, round, passcode, func(int) int { return value })
}

func (s *SessionService) writeLevel(ctx context.Context, name string, round int, passcode string, apply func(prev int) int) error {
	if err := s.requireAdmin(passcode); err != nil {
		return err
	}

	sess := s.Current()
	if sess.Status != domain.StatusActive {
		return domain.ErrSessionIdle
	}
	player, ok := sess.Players[name]
	if !ok {
		return domain.ErrUnknownPlayer
	}
	if round < 0 || round >= sess.RoundCount() {
		return domain.ErrBadRound
	}

	prev := 0
	if round < len(player.Levels) {
		prev = player.Levels[round]
	}
	next := apply(prev)

	s.store.Merge(sessionPath+"/players/"+name+"/levels", map[string]any{
		strconv.Itoa(round): next,
	})

	s.logger.Debug().Str("player", name).Int("round", round).Int("value", next).Msg("level written")
	return nil
}

// AddRound extends the known round count by one for the whole session. The
// zero entry is written for every player, so a round is never implicit.
func (s *SessionService) AddRound(ctx context.Context, passcode string) error {
	if err := s.requireAdmin(passcode); err != nil {
		return err
	}

	sess := s.Current()
	if sess.Status != domain.StatusActive {
		return domain.ErrSessionIdle
	}

	round := strconv.Itoa(sess.RoundCount())
	for name := range sess.Players {
		s.store.Merge(sessionPath+"/players/"+name+"/levels", map[string]any{round: 0})
	}

	s.logger.Info().Str("round", round).Msg("round added")
	return nil
}

// SetTargetScore changes the win threshold mid-game. The passcode is checked
// on every call by design: changing the target is a dangerous action and gets
// the double gate even for a client that already authenticated.
func (s *SessionService) SetTargetScore(ctx context.Context, value int, passcode string) error {
	if err := s.requireAdmin(passcode); err != nil {
		return err
	}

	sess := s.Current()
	if sess.Status != domain.StatusActive {
		return domain.ErrSessionIdle
	}
	if !domain.ValidTargetScore(value) {
		return domain.ErrBadTargetScore
	}

	s.store.Merge(sessionPath, map[string]any{"targetScore": value})

	s.logger.Info().Int("target", value).Msg("target score changed")
	return nil
}

// End terminates the session. A non-empty winner list archives one history
// entry first; an empty list is the explicit end-without-saving path. Either
// way the session resets to idle unconditionally.
func (s *SessionService) End(ctx context.Context, winners []string, passcode string) (string, error) {
	if err := s.requireAdmin(passcode); err != nil {
		return "", err
	}

	sess := s.Current()
	if sess.Status == domain.StatusIdle {
		return "", domain.ErrSessionIdle
	}

	var id string
	if len(winners) > 0 {
		for _, winner := range winners {
			if _, ok := sess.Players[winner]; !ok {
				return "", domain.ErrUnknownPlayer
			}
		}
		sort.Strings(winners)

		details := make(map[string][]int, len(sess.Players))
		for name, player := range sess.Players {
			levels := make([]int, len(player.Levels))
			copy(levels, player.Levels)
			details[name] = levels
		}

		now := s.now()
		entry := domain.HistoryEntry{
			Date:         now.Format("Jan 2, 15:04"),
			PlayedAt:     now,
			Participants: domain.JoinNames(sess.PlayerNames()),
			Winner:       domain.JoinNames(winners),
			Details:      details,
			FinalTarget:  sess.TargetScore,
		}

		var err error
		id, err = s.history.Append(ctx, entry)
		if err != nil {
			return "", err
		}
		entry.ID = id
		s.store.Notify(historyPath+"/"+id, entry)

		s.logger.Info().Str("id", id).Strs("winners", winners).Msg("game archived")
	}

	s.reset()
	return id, nil
}

func (s *SessionService) reset() {
	s.store.Set(sessionPath, map[string]any{
		"status":      string(domain.StatusIdle),
		"targetScore": constants.DefaultTargetScore,
		"players":     map[string]any{},
	})
}

func (s *SessionService) requireAdmin(passcode string) error {
	return checkPasscode(passcode, s.passcode)
}

// decodeSession turns the store subtree into a typed session, normalizing the
// sparse per-round map into a dense slice sized to the session's round count.
func decodeSession(raw any) domain.Session {
	sess := domain.NewIdleSession()

	tree, ok := raw.(map[string]any)
	if !ok {
		return sess
	}

	if status, ok := tree["status"].(string); ok {
		switch domain.SessionStatus(status) {
		case domain.StatusLobby, domain.StatusActive:
			sess.Status = domain.SessionStatus(status)
		}
	}
	if target := toInt(tree["targetScore"]); domain.ValidTargetScore(target) {
		sess.TargetScore = target
	}

	players, _ := tree["players"].(map[string]any)
	for name, rawPlayer := range players {
		sess.Players[name] = decodePlayer(name, rawPlayer)
	}

	// Players while idle is an illegal combination; treat it as a lobby.
	if sess.Status == domain.StatusIdle && len(sess.Players) > 0 {
		sess.Status = domain.StatusLobby
	}

	// Every player carries every known round; missing entries mean zero.
	rounds := sess.RoundCount()
	for name, player := range sess.Players {
		for len(player.Levels) < rounds {
			player.Levels = append(player.Levels, 0)
		}
		sess.Players[name] = player
	}

	return sess
}

func decodePlayer(name string, raw any) domain.PlayerProgress {
	player := domain.PlayerProgress{Name: name}

	tree, ok := raw.(map[string]any)
	if !ok {
		return player
	}

	levels, _ := tree["levels"].(map[string]any)
	maxRound := -1
	byRound := make(map[int]int, len(levels))
	for key, value := range levels {
		round, err := strconv.Atoi(key)
		if err != nil || round < 0 {
			continue
		}
		byRound[round] = toInt(value)
		if round > maxRound {
			maxRound = round
		}
	}

	player.Levels = make([]int, maxRound+1)
	for round, value := range byRound {
		player.Levels[round] = value
	}
	return player
}

func toInt(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
