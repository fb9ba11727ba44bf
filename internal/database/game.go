// internal/database/game.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/guesswho-live/guesswho/internal/game"
	"github.com/guesswho-live/guesswho/internal/models"
)

func (s *Store) GetGame(ctx context.Context, code string) (*models.Game, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var g models.Game
	q := `
	SELECT code, name, started, current_round, current_target,
	       state, revealed_hints, tries, resolution
	FROM games
	WHERE code=$1
	`
	err := s.pool.QueryRow(ctx, q, code).Scan(
		&g.Code, &g.Name, &g.Started, &g.CurrentRound, &g.CurrentTarget,
		&g.State, &g.RevealedHints, &g.Tries, &g.Resolution,
	)
	if err != nil {
		return nil, mapErr("get game", err)
	}
	return &g, nil
}

func (s *Store) CreateGame(ctx context.Context, g *models.Game) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	q := `
	INSERT INTO games (code, name, started, current_round, current_target,
	                   state, revealed_hints, tries, resolution)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			g.Code, g.Name, g.Started, g.CurrentRound, g.CurrentTarget,
			g.State, g.RevealedHints, g.Tries, g.Resolution,
		)
		return execErr
	})
	return mapErr("create game", err)
}

func (s *Store) SetGameTarget(ctx context.Context, gameCode, participantCode string, round int) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	q := `UPDATE games SET current_target=$2, current_round=$3 WHERE code=$1`
	tag, err := s.pool.Exec(ctx, q, gameCode, participantCode, round)
	if err != nil {
		return mapErr("set game target", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set game target %s: %w", gameCode, game.ErrNotFound)
	}
	return nil
}

func (s *Store) SaveRoundState(ctx context.Context, g *models.Game) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	q := `
	UPDATE games
	SET started=$2, current_round=$3, current_target=$4,
	    state=$5, revealed_hints=$6, tries=$7, resolution=$8
	WHERE code=$1
	`
	tag, err := s.pool.Exec(ctx, q,
		g.Code, g.Started, g.CurrentRound, g.CurrentTarget,
		g.State, g.RevealedHints, g.Tries, g.Resolution,
	)
	if err != nil {
		return mapErr("save round state", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save round state %s: %w", g.Code, game.ErrNotFound)
	}
	return nil
}
