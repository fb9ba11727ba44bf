// internal/scoring/scoring.go
package scoring

const (
	// BasePoints is awarded for every correct guess.
	BasePoints = 100
	// MaxSpeedBonus is the bonus for a first-try correct guess; each extra try
	// costs SpeedBonusStep until the bonus floors at zero.
	MaxSpeedBonus = 50
	// SpeedBonusStep is deducted from the speed bonus per additional try.
	SpeedBonusStep = 10
	// HintPenaltyStep is deducted per hint revealed before the correct guess.
	HintPenaltyStep = 10
	// MaxHints is the number of hint categories a round can reveal.
	MaxHints = 5
)

// Breakdown is the points awarded for a single correct guess, split into its
// components. HintPenalty is stored as a positive amount that was subtracted.
type Breakdown struct {
	Points      int `json:"points"`
	Base        int `json:"base"`
	SpeedBonus  int `json:"speedBonus"`
	HintPenalty int `json:"hintPenalty"`
}

// Compute maps (tries, hintsUsed) to a points breakdown:
//
//	points = 100 + max(0, 50 - (tries-1)*10) - hintsUsed*10
//
// It is a pure function; identical inputs always yield identical output.
// Inputs are clamped to tries >= 1 and hintsUsed in [0, MaxHints].
func Compute(tries, hintsUsed int) Breakdown {
	if tries < 1 {
		tries = 1
	}
	if hintsUsed < 0 {
		hintsUsed = 0
	}
	if hintsUsed > MaxHints {
		hintsUsed = MaxHints
	}

	speedBonus := MaxSpeedBonus - (tries-1)*SpeedBonusStep
	if speedBonus < 0 {
		speedBonus = 0
	}
	hintPenalty := hintsUsed * HintPenaltyStep

	return Breakdown{
		Points:      BasePoints + speedBonus - hintPenalty,
		Base:        BasePoints,
		SpeedBonus:  speedBonus,
		HintPenalty: hintPenalty,
	}
}
