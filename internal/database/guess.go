// internal/database/guess.go
package database

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/guesswho-live/guesswho/internal/models"
)

// RecordGuess appends the guess record, upserts the guesser's score card, and
// saves the advanced round state in one transaction, so a guess can never be
// counted while the round fails to move. The ON CONFLICT DO NOTHING on the
// natural key turns retried submissions into successful no-ops that leave the
// card and the game row untouched.
func (s *Store) RecordGuess(ctx context.Context, g *models.Game, rec *models.GuessRecord, card *models.ScoreCard) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	applied := false
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		insGuess := `
		INSERT INTO guesses (id, game_code, guesser_code, guessed_code,
		                     round_number, number_of_tries, correct, hints_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (game_code, guesser_code, round_number, number_of_tries) DO NOTHING
		`
		tag, err := tx.Exec(ctx, insGuess,
			rec.ID, rec.GameCode, rec.GuesserCode, rec.GuessedCode,
			rec.Round, rec.Tries, rec.Correct, rec.HintsUsed,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			// Duplicate delivery; leave the score card untouched.
			return nil
		}
		applied = true

		upsertCard := `
		INSERT INTO score_cards (game_code, participant_code, name,
		                         correct_guesses, total_guesses, hints_used, points, average_tries)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (game_code, participant_code)
		DO UPDATE SET name=$3, correct_guesses=$4, total_guesses=$5,
		              hints_used=$6, points=$7, average_tries=$8
		`
		_, err = tx.Exec(ctx, upsertCard,
			rec.GameCode, card.ParticipantCode, card.Name,
			card.CorrectGuesses, card.TotalGuesses, card.HintsUsed, card.Points, card.AverageTries,
		)
		if err != nil {
			return err
		}

		updGame := `
		UPDATE games
		SET started=$2, current_round=$3, current_target=$4,
		    state=$5, revealed_hints=$6, tries=$7, resolution=$8
		WHERE code=$1
		`
		_, err = tx.Exec(ctx, updGame,
			g.Code, g.Started, g.CurrentRound, g.CurrentTarget,
			g.State, g.RevealedHints, g.Tries, g.Resolution,
		)
		return err
	})
	if err != nil {
		return false, mapErr("record guess", err)
	}
	return applied, nil
}

func (s *Store) ListGuesses(ctx context.Context, gameCode string) ([]*models.GuessRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	q := `
	SELECT id, game_code, guesser_code, guessed_code,
	       round_number, number_of_tries, correct, hints_used
	FROM guesses
	WHERE game_code=$1
	ORDER BY seq
	`
	rows, err := s.pool.Query(ctx, q, gameCode)
	if err != nil {
		return nil, mapErr("list guesses", err)
	}
	defer rows.Close()

	var recs []*models.GuessRecord
	for rows.Next() {
		var rec models.GuessRecord
		if err := rows.Scan(
			&rec.ID, &rec.GameCode, &rec.GuesserCode, &rec.GuessedCode,
			&rec.Round, &rec.Tries, &rec.Correct, &rec.HintsUsed,
		); err != nil {
			return nil, mapErr("scan guess", err)
		}
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list guesses", err)
	}
	return recs, nil
}
