package models

// GameState tracks where a session is in its round lifecycle.
type GameState string

const (
	// StateAwaitingStart is the initial state before the first target pick.
	StateAwaitingStart GameState = "awaiting_start"
	// StateRoundActive means a target is selected and guesses are accepted.
	StateRoundActive GameState = "round_active"
	// StateRoundResolved means the current round ended (correct or exhausted)
	// and the session is waiting for the next round to begin.
	StateRoundResolved GameState = "round_resolved"
	// StateComplete means every participant has been a target once.
	StateComplete GameState = "complete"
)

// Resolution records how a round ended.
type Resolution string

const (
	ResolutionCorrect   Resolution = "correct"
	ResolutionExhausted Resolution = "exhausted"
)
