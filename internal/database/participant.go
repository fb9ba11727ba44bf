// internal/database/participant.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/guesswho-live/guesswho/internal/game"
	"github.com/guesswho-live/guesswho/internal/models"
)

func (s *Store) ListParticipants(ctx context.Context, gameCode string) ([]*models.Participant, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	q := `
	SELECT code, game_code, name, personality_type, eye_color,
	       cartoon_character, guilty_pleasure_song, image_url, was_selected
	FROM participants
	WHERE game_code=$1
	ORDER BY seq
	`
	rows, err := s.pool.Query(ctx, q, gameCode)
	if err != nil {
		return nil, mapErr("list participants", err)
	}
	defer rows.Close()

	var parts []*models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(
			&p.Code, &p.GameCode, &p.Name, &p.PersonalityType, &p.EyeColor,
			&p.CartoonCharacter, &p.GuiltyPleasureSong, &p.ImageURL, &p.WasSelected,
		); err != nil {
			return nil, mapErr("scan participant", err)
		}
		parts = append(parts, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list participants", err)
	}
	return parts, nil
}

func (s *Store) CreateParticipant(ctx context.Context, p *models.Participant) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	q := `
	INSERT INTO participants (code, game_code, name, personality_type, eye_color,
	                          cartoon_character, guilty_pleasure_song, image_url, was_selected)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			p.Code, p.GameCode, p.Name, p.PersonalityType, p.EyeColor,
			p.CartoonCharacter, p.GuiltyPleasureSong, p.ImageURL, p.WasSelected,
		)
		return execErr
	})
	return mapErr("create participant", err)
}

// MarkSelected is the compare-and-set that guards target selection: the
// update only lands when was_selected is still false. A zero row count on an
// existing participant means the caller lost the race.
func (s *Store) MarkSelected(ctx context.Context, participantCode string) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	q := `UPDATE participants SET was_selected=TRUE WHERE code=$1 AND was_selected=FALSE`
	tag, err := s.pool.Exec(ctx, q, participantCode)
	if err != nil {
		return false, mapErr("mark selected", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	err = s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM participants WHERE code=$1)`, participantCode).Scan(&exists)
	if err != nil {
		return false, mapErr("mark selected", err)
	}
	if !exists {
		return false, fmt.Errorf("participant %s: %w", participantCode, game.ErrNotFound)
	}
	return false, nil
}
