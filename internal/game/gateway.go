// internal/game/gateway.go
package game

import (
	"context"

	"github.com/guesswho-live/guesswho/internal/models"
)

// Gateway is the durable storage contract the core consumes. All game,
// participant, and guess state lives behind it; engine operations hold no
// in-process state between invocations.
//
// Implementations map their backend failures onto the sentinel errors in this
// package: unknown codes to ErrNotFound, key collisions to ErrConflict, and
// timeouts or connectivity loss to ErrUnavailable.
type Gateway interface {
	// GetGame returns the game for a code, or ErrNotFound.
	GetGame(ctx context.Context, code string) (*models.Game, error)

	// CreateGame inserts a new game row. A code collision returns ErrConflict;
	// the caller retries with a fresh code.
	CreateGame(ctx context.Context, g *models.Game) error

	// ListParticipants returns a game's participants in join order.
	ListParticipants(ctx context.Context, gameCode string) ([]*models.Participant, error)

	// CreateParticipant inserts a participant bound to an existing game.
	// Unknown game codes return ErrNotFound.
	CreateParticipant(ctx context.Context, p *models.Participant) error

	// MarkSelected flips WasSelected false->true as a conditional write.
	// Returns false when the flag was already true (the caller lost the
	// selection race and must re-read the roster before re-picking).
	MarkSelected(ctx context.Context, participantCode string) (bool, error)

	// SetGameTarget points the game at its current target for a round.
	SetGameTarget(ctx context.Context, gameCode, participantCode string, round int) error

	// SaveRoundState persists the game's round runtime fields (state,
	// revealed hints, tries, resolution, round number).
	SaveRoundState(ctx context.Context, g *models.Game) error

	// RecordGuess appends a guess record, upserts the guesser's score card,
	// and persists the game's advanced round state as one atomic unit. A
	// duplicate natural key (game, guesser, round, tries) is treated as
	// success with applied=false; the card and the game row stay untouched.
	RecordGuess(ctx context.Context, g *models.Game, rec *models.GuessRecord, card *models.ScoreCard) (applied bool, err error)

	// GetLeaderboard returns the score cards of a game keyed by participant
	// code.
	GetLeaderboard(ctx context.Context, gameCode string) (map[string]*models.ScoreCard, error)

	// ListGuesses returns a game's full guess history in append order, for
	// score card rebuilds.
	ListGuesses(ctx context.Context, gameCode string) ([]*models.GuessRecord, error)
}
