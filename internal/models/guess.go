package models

import "github.com/google/uuid"

// GuessRecord is one appended guess. Records are never mutated or deleted;
// the (GameCode, GuesserCode, Round, Tries) tuple is the natural dedup key
// that makes retried submissions idempotent. Correct and HintsUsed are stored
// so score cards can be rebuilt from the record stream alone.
type GuessRecord struct {
	ID          uuid.UUID `json:"id"`
	GameCode    string    `json:"gameCode"`
	GuesserCode string    `json:"userCode"`
	GuessedCode string    `json:"guessedUserCode"`
	Round       int       `json:"roundNumber"`
	Tries       int       `json:"numberOfTries"`
	Correct     bool      `json:"correct"`
	HintsUsed   int       `json:"hintsUsed"`
}
