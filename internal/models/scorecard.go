package models

// ScoreCard is a participant's cumulative guessing performance within one
// game. It is maintained incrementally per guess outcome and can be rebuilt
// from the full GuessRecord history.
type ScoreCard struct {
	ParticipantCode string `json:"userCode"`
	Name            string `json:"userName"`

	CorrectGuesses int `json:"correctGuesses"`
	TotalGuesses   int `json:"totalGuesses"`
	HintsUsed      int `json:"hintsUsed"`
	Points         int `json:"points"`

	// AverageTries is the running mean of tries across correct guesses only.
	AverageTries float64 `json:"averageTries"`
}
