// internal/leaderboard/leaderboard.go
package leaderboard

import (
	"sort"

	"github.com/guesswho-live/guesswho/internal/models"
	"github.com/guesswho-live/guesswho/internal/scoring"
)

// Outcome is one evaluated guess as seen by the leaderboard. HintsUsed and
// Points are zero for incorrect guesses; an incorrect guess still counts
// toward TotalGuesses.
type Outcome struct {
	GuesserCode string
	GuesserName string
	Correct     bool
	Tries       int
	HintsUsed   int
	Points      int
}

// NewCard returns a zeroed score card for a participant.
func NewCard(code, name string) *models.ScoreCard {
	return &models.ScoreCard{ParticipantCode: code, Name: name}
}

// Fold applies a single guess outcome to a score card in place.
//
// AverageTries is the running mean of tries across correct guesses:
// newAvg = (oldAvg*(correct-1) + tries) / correct.
func Fold(card *models.ScoreCard, o Outcome) {
	card.TotalGuesses++
	if !o.Correct {
		return
	}
	card.CorrectGuesses++
	card.HintsUsed += o.HintsUsed
	card.Points += o.Points
	card.AverageTries = (card.AverageTries*float64(card.CorrectGuesses-1) + float64(o.Tries)) /
		float64(card.CorrectGuesses)
}

// Entry is a score card with its assigned leaderboard rank.
type Entry struct {
	Rank int `json:"rank"`
	models.ScoreCard
}

// Rank sorts cards descending by points and assigns competition ranks: a card
// shares the previous card's rank unless its points are strictly lower, in
// which case its rank is its 1-based position. Ties therefore cause the next
// distinct rank to skip values, e.g. points [100,100,80] rank [1,1,3].
// Equal-point cards are ordered by name, then code, so output is stable.
func Rank(cards []*models.ScoreCard) []Entry {
	sorted := make([]*models.ScoreCard, len(cards))
	copy(sorted, cards)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Points != sorted[j].Points {
			return sorted[i].Points > sorted[j].Points
		}
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].ParticipantCode < sorted[j].ParticipantCode
	})

	entries := make([]Entry, 0, len(sorted))
	rank := 1
	for i, card := range sorted {
		if i > 0 && card.Points < sorted[i-1].Points {
			rank = i + 1
		}
		entries = append(entries, Entry{Rank: rank, ScoreCard: *card})
	}
	return entries
}

// Rebuild recomputes every score card from the full guess record stream,
// re-deriving points from the scoring engine. Used by the auditor to verify
// the incrementally maintained cards. names maps participant code to display
// name; unknown guessers get an empty name rather than being dropped.
func Rebuild(records []*models.GuessRecord, names map[string]string) map[string]*models.ScoreCard {
	cards := make(map[string]*models.ScoreCard)
	for _, rec := range records {
		card, ok := cards[rec.GuesserCode]
		if !ok {
			card = NewCard(rec.GuesserCode, names[rec.GuesserCode])
			cards[rec.GuesserCode] = card
		}
		o := Outcome{
			GuesserCode: rec.GuesserCode,
			Correct:     rec.Correct,
			Tries:       rec.Tries,
		}
		if rec.Correct {
			o.HintsUsed = rec.HintsUsed
			o.Points = scoring.Compute(rec.Tries, rec.HintsUsed).Points
		}
		Fold(card, o)
	}
	return cards
}
