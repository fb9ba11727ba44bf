package models

// Participant is a joined player whose profile attributes are the guessing
// material for the rounds where they are the hidden target.
type Participant struct {
	Code     string `json:"userCode"`
	GameCode string `json:"gameCode"`
	Name     string `json:"name"`

	PersonalityType    string `json:"personalityType,omitempty"`
	EyeColor           string `json:"eyeColor,omitempty"`
	CartoonCharacter   string `json:"cartoonCharacter,omitempty"`
	GuiltyPleasureSong string `json:"guiltyPleasureSong,omitempty"`
	ImageURL           string `json:"imageUrl,omitempty"`

	// WasSelected flips false->true exactly once per game cycle, guarded by a
	// conditional write in the persistence layer.
	WasSelected bool `json:"userWasSelected"`
}
