// internal/game/hints.go
package game

import "github.com/guesswho-live/guesswho/internal/models"

// HintCategory is one of the five profile attributes revealed progressively
// during a round.
type HintCategory string

const (
	HintPersonalityType    HintCategory = "personalityType"
	HintEyeColor           HintCategory = "eyeColor"
	HintCartoonCharacter   HintCategory = "cartoonCharacter"
	HintGuiltyPleasureSong HintCategory = "guiltyPleasureSong"
	HintImage              HintCategory = "imageUrl"
)

// HintOrder is the fixed reveal sequence. The portrait image is always last;
// revealing it puts the round into final-guess mode.
var HintOrder = []HintCategory{
	HintPersonalityType,
	HintEyeColor,
	HintCartoonCharacter,
	HintGuiltyPleasureSong,
	HintImage,
}

// RevealedCategories returns the first n categories in reveal order.
func RevealedCategories(n int) []HintCategory {
	if n < 0 {
		n = 0
	}
	if n > len(HintOrder) {
		n = len(HintOrder)
	}
	out := make([]HintCategory, n)
	copy(out, HintOrder[:n])
	return out
}

// HintValue reads the attribute named by a category off a participant profile.
func HintValue(p *models.Participant, c HintCategory) string {
	switch c {
	case HintPersonalityType:
		return p.PersonalityType
	case HintEyeColor:
		return p.EyeColor
	case HintCartoonCharacter:
		return p.CartoonCharacter
	case HintGuiltyPleasureSong:
		return p.GuiltyPleasureSong
	case HintImage:
		return p.ImageURL
	}
	return ""
}
