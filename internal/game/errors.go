// internal/game/errors.go
package game

import "errors"

// Sentinel errors shared across the engine, registry, and persistence
// implementations. Callers branch with errors.Is; wrapped messages carry the
// detail.
var (
	// ErrNotFound means an unknown game or participant code.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a code collision or a lost target-selection race; the
	// caller regenerates or retries.
	ErrConflict = errors.New("conflict")

	// ErrValidation means malformed or out-of-range input; never retried.
	ErrValidation = errors.New("invalid input")

	// ErrInsufficientPlayers means a game cannot start with fewer than two
	// participants.
	ErrInsufficientPlayers = errors.New("not enough players")

	// ErrNoTarget means a guess arrived while no target is selected.
	ErrNoTarget = errors.New("no target selected")

	// ErrGameComplete means every participant has already been a target.
	ErrGameComplete = errors.New("game complete")

	// ErrUnavailable means a transient persistence failure (timeout or
	// connectivity); the caller may retry with backoff.
	ErrUnavailable = errors.New("store unavailable")
)
