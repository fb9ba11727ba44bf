// internal/game/engine_test.go
package game_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guesswho-live/guesswho/internal/game"
	"github.com/guesswho-live/guesswho/internal/models"
	"github.com/guesswho-live/guesswho/internal/store"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

// setupTestGame seeds an in-memory gateway with one game and n participants.
func setupTestGame(t *testing.T, n int) (*game.Engine, *store.Memory, *models.Game, []*models.Participant) {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()

	g := &models.Game{Code: "AB12C", Name: "Trivia Night", CurrentRound: 1, State: models.StateAwaitingStart}
	require.NoError(t, mem.CreateGame(ctx, g))

	parts := make([]*models.Participant, n)
	for i := 0; i < n; i++ {
		p := &models.Participant{
			Code:               uuid.NewString(),
			GameCode:           g.Code,
			Name:               fmt.Sprintf("player-%d", i),
			PersonalityType:    "INTJ",
			EyeColor:           "green",
			CartoonCharacter:   "Scooby",
			GuiltyPleasureSong: "Dancing Queen",
			ImageURL:           fmt.Sprintf("https://img.example/%d.png", i),
		}
		require.NoError(t, mem.CreateParticipant(ctx, p))
		parts[i] = p
	}
	return game.NewEngine(mem, quietLogger()), mem, g, parts
}

func otherThan(parts []*models.Participant, code string) *models.Participant {
	for _, p := range parts {
		if p.Code != code {
			return p
		}
	}
	return nil
}

func TestStartGameRequiresTwoPlayers(t *testing.T) {
	eng, mem, g, parts := setupTestGame(t, 1)
	ctx := context.Background()

	_, err := eng.StartGame(ctx, g.Code)
	require.ErrorIs(t, err, game.ErrInsufficientPlayers)

	// nothing may have been mutated
	stored, err := mem.GetGame(ctx, g.Code)
	require.NoError(t, err)
	assert.Equal(t, models.StateAwaitingStart, stored.State)
	assert.False(t, stored.Started)

	roster, err := mem.ListParticipants(ctx, g.Code)
	require.NoError(t, err)
	assert.False(t, roster[0].WasSelected)
	assert.Equal(t, parts[0].Code, roster[0].Code)
}

func TestStartGameSelectsTargetAndRevealsFirstHint(t *testing.T) {
	eng, mem, g, parts := setupTestGame(t, 3)
	ctx := context.Background()

	target, err := eng.StartGame(ctx, g.Code)
	require.NoError(t, err)
	require.NotNil(t, target)

	codes := map[string]bool{}
	for _, p := range parts {
		codes[p.Code] = true
	}
	assert.True(t, codes[target.Code], "target must be one of the joined participants")

	stored, err := mem.GetGame(ctx, g.Code)
	require.NoError(t, err)
	assert.True(t, stored.Started)
	assert.Equal(t, models.StateRoundActive, stored.State)
	assert.Equal(t, 1, stored.CurrentRound)
	assert.Equal(t, target.Code, stored.CurrentTarget)
	assert.Equal(t, 1, stored.RevealedHints)

	roster, _ := mem.ListParticipants(ctx, g.Code)
	selected := 0
	for _, p := range roster {
		if p.WasSelected {
			selected++
			assert.Equal(t, target.Code, p.Code)
		}
	}
	assert.Equal(t, 1, selected, "exactly one participant marked selected")

	_, err = eng.StartGame(ctx, g.Code)
	assert.ErrorIs(t, err, game.ErrConflict, "starting an active round must not burn another target")
}

func TestHintRevealFollowsFixedOrder(t *testing.T) {
	eng, _, g, _ := setupTestGame(t, 2)
	ctx := context.Background()

	_, err := eng.StartGame(ctx, g.Code)
	require.NoError(t, err)

	for i := 2; i <= 5; i++ {
		revealed, err := eng.RevealNextHint(ctx, g.Code)
		require.NoError(t, err)
		require.Len(t, revealed, i)
		assert.Equal(t, game.HintOrder[:i], revealed)
	}

	// all five out: further reveals are no-ops
	revealed, err := eng.RevealNextHint(ctx, g.Code)
	require.NoError(t, err)
	assert.Len(t, revealed, 5)
	assert.Equal(t, game.HintImage, revealed[4], "portrait is always last")
}

func TestRevealBeforeStartIsNoOp(t *testing.T) {
	eng, mem, g, _ := setupTestGame(t, 2)
	ctx := context.Background()

	revealed, err := eng.RevealNextHint(ctx, g.Code)
	require.NoError(t, err)
	assert.Empty(t, revealed)

	stored, _ := mem.GetGame(ctx, g.Code)
	assert.Equal(t, 0, stored.RevealedHints)
}

func TestGuessBeforeTargetSelected(t *testing.T) {
	eng, _, g, parts := setupTestGame(t, 2)
	ctx := context.Background()

	_, err := eng.SubmitGuess(ctx, g.Code, parts[0].Code, parts[1].Code, 1)
	assert.ErrorIs(t, err, game.ErrNoTarget)
}

func TestIncorrectGuessAutoRevealsNextHint(t *testing.T) {
	eng, mem, g, parts := setupTestGame(t, 3)
	ctx := context.Background()

	target, err := eng.StartGame(ctx, g.Code)
	require.NoError(t, err)
	guesser := otherThan(parts, target.Code)
	wrong := otherThan(parts, target.Code)

	res, err := eng.SubmitGuess(ctx, g.Code, guesser.Code, "definitely-wrong-"+wrong.Code, 1)
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.False(t, res.RoundOver)
	assert.Equal(t, game.HintEyeColor, res.RevealedHint)
	assert.Equal(t, 1, res.HintsUsed)

	stored, _ := mem.GetGame(ctx, g.Code)
	assert.Equal(t, 2, stored.RevealedHints)
	assert.Equal(t, 1, stored.Tries)

	cards, _ := mem.GetLeaderboard(ctx, g.Code)
	require.Contains(t, cards, guesser.Code)
	assert.Equal(t, 1, cards[guesser.Code].TotalGuesses)
	assert.Equal(t, 0, cards[guesser.Code].CorrectGuesses)
	assert.Equal(t, 0, cards[guesser.Code].Points)
}

// End-to-end scenario: an incorrect first guess auto-reveals the second hint,
// then a correct second guess with two hints out scores 100 + 40 - 20 = 120.
func TestCorrectGuessScoresAndResolves(t *testing.T) {
	eng, mem, g, parts := setupTestGame(t, 3)
	ctx := context.Background()

	target, err := eng.StartGame(ctx, g.Code)
	require.NoError(t, err)
	guesser := otherThan(parts, target.Code)

	res, err := eng.SubmitGuess(ctx, g.Code, guesser.Code, "nobody", 1)
	require.NoError(t, err)
	require.False(t, res.Correct)

	res, err = eng.SubmitGuess(ctx, g.Code, guesser.Code, target.Code, 2)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.True(t, res.RoundOver)
	require.NotNil(t, res.Score)
	assert.Equal(t, 120, res.Score.Points)
	assert.Equal(t, 2, res.HintsUsed)
	assert.Equal(t, target.Name, res.TargetName)

	stored, _ := mem.GetGame(ctx, g.Code)
	assert.Equal(t, models.StateRoundResolved, stored.State)
	assert.Equal(t, models.ResolutionCorrect, stored.Resolution)

	cards, _ := mem.GetLeaderboard(ctx, g.Code)
	card := cards[guesser.Code]
	require.NotNil(t, card)
	assert.Equal(t, 120, card.Points)
	assert.Equal(t, 2, card.TotalGuesses)
	assert.Equal(t, 1, card.CorrectGuesses)
	assert.Equal(t, 2, card.HintsUsed)
	assert.Equal(t, 2.0, card.AverageTries)
}

func TestFinalGuessModeExhaustsRound(t *testing.T) {
	eng, mem, g, parts := setupTestGame(t, 3)
	ctx := context.Background()

	target, err := eng.StartGame(ctx, g.Code)
	require.NoError(t, err)
	guesser := otherThan(parts, target.Code)

	for i := 0; i < 4; i++ {
		_, err := eng.RevealNextHint(ctx, g.Code)
		require.NoError(t, err)
	}

	res, err := eng.SubmitGuess(ctx, g.Code, guesser.Code, "nobody", 1)
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.True(t, res.RoundOver)
	assert.Equal(t, target.Code, res.TargetCode, "identity is disclosed on exhaustion")
	assert.Equal(t, target.Name, res.TargetName)
	assert.Empty(t, res.RevealedHint)

	stored, _ := mem.GetGame(ctx, g.Code)
	assert.Equal(t, models.ResolutionExhausted, stored.Resolution)

	cards, _ := mem.GetLeaderboard(ctx, g.Code)
	assert.Equal(t, 0, cards[guesser.Code].Points)
	assert.Equal(t, 1, cards[guesser.Code].TotalGuesses)
}

func TestGuessAgainstResolvedRoundIsNoOp(t *testing.T) {
	eng, mem, g, parts := setupTestGame(t, 3)
	ctx := context.Background()

	target, err := eng.StartGame(ctx, g.Code)
	require.NoError(t, err)
	guesser := otherThan(parts, target.Code)

	_, err = eng.SubmitGuess(ctx, g.Code, guesser.Code, target.Code, 1)
	require.NoError(t, err)

	before, _ := mem.GetLeaderboard(ctx, g.Code)

	res, err := eng.SubmitGuess(ctx, g.Code, guesser.Code, target.Code, 2)
	require.NoError(t, err)
	assert.True(t, res.AlreadyResolved)
	assert.False(t, res.Correct)

	after, _ := mem.GetLeaderboard(ctx, g.Code)
	assert.Equal(t, before[guesser.Code].Points, after[guesser.Code].Points)
	assert.Equal(t, before[guesser.Code].TotalGuesses, after[guesser.Code].TotalGuesses)
}

func TestDuplicateDeliveryNotDoubleCounted(t *testing.T) {
	eng, mem, g, parts := setupTestGame(t, 3)
	ctx := context.Background()

	target, err := eng.StartGame(ctx, g.Code)
	require.NoError(t, err)
	guesser := otherThan(parts, target.Code)

	res, err := eng.SubmitGuess(ctx, g.Code, guesser.Code, "nobody", 1)
	require.NoError(t, err)
	require.False(t, res.Duplicate)

	// retried delivery of the same submission
	res, err = eng.SubmitGuess(ctx, g.Code, guesser.Code, "nobody", 1)
	require.NoError(t, err)
	assert.True(t, res.Duplicate)

	stored, _ := mem.GetGame(ctx, g.Code)
	assert.Equal(t, 1, stored.Tries)
	assert.Equal(t, 2, stored.RevealedHints, "the retry must not reveal another hint")

	cards, _ := mem.GetLeaderboard(ctx, g.Code)
	assert.Equal(t, 1, cards[guesser.Code].TotalGuesses)

	recs, _ := mem.ListGuesses(ctx, g.Code)
	assert.Len(t, recs, 1)
}

// A game with n participants runs exactly n rounds, never reselects a
// target, and then reports complete.
func TestFullCycleReachesGameComplete(t *testing.T) {
	const n = 4
	eng, mem, g, parts := setupTestGame(t, n)
	ctx := context.Background()

	seen := map[string]bool{}

	target, err := eng.StartGame(ctx, g.Code)
	require.NoError(t, err)
	for round := 1; ; round++ {
		require.False(t, seen[target.Code], "participant selected twice")
		seen[target.Code] = true

		guesser := otherThan(parts, target.Code)
		res, err := eng.SubmitGuess(ctx, g.Code, guesser.Code, target.Code, 1)
		require.NoError(t, err)
		require.True(t, res.Correct)

		next, err := eng.NextRound(ctx, g.Code)
		if err != nil {
			require.ErrorIs(t, err, game.ErrGameComplete)
			assert.Equal(t, n, round, "game must complete after exactly n rounds")
			break
		}
		target = next
	}

	assert.Len(t, seen, n)
	stored, _ := mem.GetGame(ctx, g.Code)
	assert.Equal(t, models.StateComplete, stored.State)
	assert.Equal(t, n, stored.CurrentRound)

	_, err = eng.StartGame(ctx, g.Code)
	assert.ErrorIs(t, err, game.ErrGameComplete)
	_, err = eng.NextRound(ctx, g.Code)
	assert.ErrorIs(t, err, game.ErrGameComplete)
}

// lostRaceStore fails the first MarkSelected attempt the way a concurrent
// winner would, and lets the participant actually get claimed underneath.
type lostRaceStore struct {
	*store.Memory
	failed bool
}

func (s *lostRaceStore) MarkSelected(ctx context.Context, code string) (bool, error) {
	if !s.failed {
		s.failed = true
		// the concurrent caller claimed this pick first
		if _, err := s.Memory.MarkSelected(ctx, code); err != nil {
			return false, err
		}
		return false, nil
	}
	return s.Memory.MarkSelected(ctx, code)
}

func TestSelectionRetriesAfterLostRace(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	g := &models.Game{Code: "ZZ99Z", Name: "Race Night", CurrentRound: 1, State: models.StateAwaitingStart}
	require.NoError(t, mem.CreateGame(ctx, g))
	for i := 0; i < 3; i++ {
		require.NoError(t, mem.CreateParticipant(ctx, &models.Participant{
			Code: uuid.NewString(), GameCode: g.Code, Name: fmt.Sprintf("p%d", i),
		}))
	}
	raced := &lostRaceStore{Memory: mem}
	eng := game.NewEngine(raced, quietLogger())

	target, err := eng.StartGame(ctx, g.Code)
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.True(t, raced.failed, "first selection attempt must have lost the race")

	// the stolen pick and the final target are both marked, nobody else
	roster, _ := mem.ListParticipants(ctx, g.Code)
	marked := 0
	for _, p := range roster {
		if p.WasSelected {
			marked++
		}
	}
	assert.Equal(t, 2, marked)
}

// saveFailStore refuses standalone round-state writes once armed, proving the
// guess path commits its state transition inside RecordGuess rather than in a
// second write that could be lost.
type saveFailStore struct {
	*store.Memory
	armed bool
}

func (s *saveFailStore) SaveRoundState(ctx context.Context, g *models.Game) error {
	if s.armed {
		return fmt.Errorf("round state write refused: %w", game.ErrUnavailable)
	}
	return s.Memory.SaveRoundState(ctx, g)
}

func TestCorrectGuessCommitsStateWithRecord(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	g := &models.Game{Code: "QQ11Q", Name: "Atomic Night", CurrentRound: 1, State: models.StateAwaitingStart}
	require.NoError(t, mem.CreateGame(ctx, g))
	parts := make([]*models.Participant, 3)
	for i := range parts {
		parts[i] = &models.Participant{Code: uuid.NewString(), GameCode: g.Code, Name: fmt.Sprintf("p%d", i)}
		require.NoError(t, mem.CreateParticipant(ctx, parts[i]))
	}
	fs := &saveFailStore{Memory: mem}
	eng := game.NewEngine(fs, quietLogger())

	target, err := eng.StartGame(ctx, g.Code)
	require.NoError(t, err)
	guesser := otherThan(parts, target.Code)
	fs.armed = true

	res, err := eng.SubmitGuess(ctx, g.Code, guesser.Code, target.Code, 1)
	require.NoError(t, err)
	require.True(t, res.Correct)
	require.NotNil(t, res.Score)
	assert.Equal(t, 140, res.Score.Points)

	// the guess, the score card, and the resolved state landed together
	stored, _ := mem.GetGame(ctx, g.Code)
	assert.Equal(t, models.StateRoundResolved, stored.State)
	assert.Equal(t, models.ResolutionCorrect, stored.Resolution)
	cards, _ := mem.GetLeaderboard(ctx, g.Code)
	assert.Equal(t, 140, cards[guesser.Code].Points)
	assert.Equal(t, 1, cards[guesser.Code].TotalGuesses)

	// a retried delivery reports the resolved round and counts nothing
	res, err = eng.SubmitGuess(ctx, g.Code, guesser.Code, target.Code, 1)
	require.NoError(t, err)
	assert.True(t, res.AlreadyResolved)
	assert.True(t, res.RoundOver)
	after, _ := mem.GetLeaderboard(ctx, g.Code)
	assert.Equal(t, 140, after[guesser.Code].Points)
	assert.Equal(t, 1, after[guesser.Code].TotalGuesses)
}

func TestStartGameAfterResolvedRound(t *testing.T) {
	eng, mem, g, parts := setupTestGame(t, 3)
	ctx := context.Background()

	target, err := eng.StartGame(ctx, g.Code)
	require.NoError(t, err)
	guesser := otherThan(parts, target.Code)
	res, err := eng.SubmitGuess(ctx, g.Code, guesser.Code, target.Code, 1)
	require.NoError(t, err)
	require.True(t, res.RoundOver)

	// re-starting a resolved round must not burn a second target in the same
	// round number
	_, err = eng.StartGame(ctx, g.Code)
	require.ErrorIs(t, err, game.ErrConflict)

	stored, _ := mem.GetGame(ctx, g.Code)
	assert.Equal(t, 1, stored.CurrentRound)
	roster, _ := mem.ListParticipants(ctx, g.Code)
	marked := 0
	for _, p := range roster {
		if p.WasSelected {
			marked++
		}
	}
	assert.Equal(t, 1, marked)

	next, err := eng.NextRound(ctx, g.Code)
	require.NoError(t, err)
	assert.NotEqual(t, target.Code, next.Code)
	stored, _ = mem.GetGame(ctx, g.Code)
	assert.Equal(t, 2, stored.CurrentRound)
}

func TestRoundStateSnapshotHidesIdentity(t *testing.T) {
	eng, _, g, _ := setupTestGame(t, 3)
	ctx := context.Background()

	target, err := eng.StartGame(ctx, g.Code)
	require.NoError(t, err)

	snap, err := eng.RoundState(ctx, g.Code)
	require.NoError(t, err)
	assert.Equal(t, models.StateRoundActive, snap.State)
	assert.Equal(t, []game.HintCategory{game.HintPersonalityType}, snap.RevealedHints)
	assert.Equal(t, target.PersonalityType, snap.Hints[game.HintPersonalityType])
	assert.False(t, snap.FinalGuessMode)

	for i := 0; i < 4; i++ {
		_, err := eng.RevealNextHint(ctx, g.Code)
		require.NoError(t, err)
	}
	snap, err = eng.RoundState(ctx, g.Code)
	require.NoError(t, err)
	assert.True(t, snap.FinalGuessMode)
	assert.Len(t, snap.Hints, 5)
}
