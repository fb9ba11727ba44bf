package models

// Game is one play session identified by a short code. The round runtime
// fields (State, RevealedHints, Tries, Resolution) are persisted alongside the
// game row so that every engine operation can run as a stateless unit of work.
type Game struct {
	Code         string `json:"gameCode"`
	Name         string `json:"name"`
	Started      bool   `json:"started"`
	CurrentRound int    `json:"currentRound"`

	// CurrentTarget is the participant code being guessed, empty when no
	// target has been selected yet.
	CurrentTarget string `json:"currentTarget,omitempty"`

	State         GameState  `json:"state"`
	RevealedHints int        `json:"revealedHints"`
	Tries         int        `json:"tries"`
	Resolution    Resolution `json:"resolution,omitempty"`
}
