// internal/database/leaderboard.go
package database

import (
	"context"

	"github.com/guesswho-live/guesswho/internal/models"
)

func (s *Store) GetLeaderboard(ctx context.Context, gameCode string) (map[string]*models.ScoreCard, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	q := `
	SELECT participant_code, name, correct_guesses, total_guesses,
	       hints_used, points, average_tries
	FROM score_cards
	WHERE game_code=$1
	`
	rows, err := s.pool.Query(ctx, q, gameCode)
	if err != nil {
		return nil, mapErr("get leaderboard", err)
	}
	defer rows.Close()

	cards := make(map[string]*models.ScoreCard)
	for rows.Next() {
		var c models.ScoreCard
		if err := rows.Scan(
			&c.ParticipantCode, &c.Name, &c.CorrectGuesses, &c.TotalGuesses,
			&c.HintsUsed, &c.Points, &c.AverageTries,
		); err != nil {
			return nil, mapErr("scan score card", err)
		}
		cards[c.ParticipantCode] = &c
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("get leaderboard", err)
	}
	return cards, nil
}
