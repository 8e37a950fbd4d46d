package domain

import (
	"sort"
	"strings"
	"time"

	"munchkin-tracker/internal/constants"
)

type SessionStatus string

const (
	StatusIdle   SessionStatus = "idle"
	StatusLobby  SessionStatus = "lobby"
	StatusActive SessionStatus = "active"
)

// PlayerProgress tracks one participant inside the current session. Levels is a
// dense per-round slice: every player always carries an entry for every round the
// session knows about, a zero meaning no change that round.
type PlayerProgress struct {
	Name   string
	Levels []int
}

// Total is the derived level, never stored: starting level plus all round deltas.
func (p PlayerProgress) Total() int {
	total := constants.StartingLevel
	for _, delta := range p.Levels {
		total += delta
	}
	return total
}

// Session is the singleton current game. The zero set of players is only legal
// while idle; Status transitions are owned by the session service.
type Session struct {
	Status      SessionStatus
	TargetScore int
	Players     map[string]PlayerProgress
}

func NewIdleSession() Session {
	return Session{
		Status:      StatusIdle,
		TargetScore: constants.DefaultTargetScore,
		Players:     map[string]PlayerProgress{},
	}
}

// RoundCount is the number of rounds currently known to the session.
func (s Session) RoundCount() int {
	max := 0
	for _, p := range s.Players {
		if len(p.Levels) > max {
			max = len(p.Levels)
		}
	}
	return max
}

// PlayerNames returns the participant names in deterministic order. The store
// keys players by name, so lexicographic order is the only stable one.
func (s Session) PlayerNames() []string {
	names := make([]string, 0, len(s.Players))
	for name := range s.Players {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Winners is the derived win condition: every participant whose total has
// reached the target score. Recomputed on every read, never stored.
func (s Session) Winners() []string {
	var winners []string
	for _, name := range s.PlayerNames() {
		if s.Players[name].Total() >= s.TargetScore {
			winners = append(winners, name)
		}
	}
	return winners
}

// ValidTargetScore reports whether value is one of the configured target scores.
func ValidTargetScore(value int) bool {
	for _, opt := range constants.TargetScoreOptions {
		if value == opt {
			return true
		}
	}
	return false
}

// HistoryEntry is one immutable archival record. Participants and Winner are
// comma-joined name lists; legacy aggregate entries (IsArchive) may repeat a
// winner to encode multiple historical wins in one record.
type HistoryEntry struct {
	ID           string
	Date         string
	PlayedAt     time.Time
	Participants string
	Winner       string
	Details      map[string][]int
	FinalTarget  int
	IsArchive    bool
	MatchesCount map[string]int
}

func (e HistoryEntry) ParticipantNames() []string {
	return splitNames(e.Participants)
}

func (e HistoryEntry) WinnerNames() []string {
	return splitNames(e.Winner)
}

func splitNames(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}

// JoinNames is the inverse of splitNames, matching the stored "A, B" format.
func JoinNames(names []string) string {
	return strings.Join(names, ", ")
}

// PlayerStats is one aggregated row of the all-time table.
type PlayerStats struct {
	Name    string
	Matches int
	Wins    int
	Rate    int
}

// Leader holds one podium slot: every name tied at the metric maximum.
type Leader struct {
	Names string
	Value int
}
