package domain

import "errors"

var (
	ErrEmptyName      = errors.New("name must not be empty")
	ErrDuplicateName  = errors.New("name already present")
	ErrUnknownPlayer  = errors.New("player not in session")
	ErrBadPasscode    = errors.New("passcode mismatch")
	ErrSessionActive  = errors.New("session already active")
	ErrSessionIdle    = errors.New("no session in progress")
	ErrEmptyLobby     = errors.New("lobby has no players")
	ErrBadTargetScore = errors.New("target score not allowed")
	ErrBadRound       = errors.New("round index out of range")
)
