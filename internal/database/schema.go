// internal/database/schema.go
package database

import "context"

// schema is applied idempotently at startup. Round runtime state lives on the
// games row; the unique index on guesses is the natural dedup key that makes
// retried submissions no-ops.
const schema = `
CREATE TABLE IF NOT EXISTS games (
	code           TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	started        BOOLEAN NOT NULL DEFAULT FALSE,
	current_round  INTEGER NOT NULL DEFAULT 1,
	current_target TEXT NOT NULL DEFAULT '',
	state          TEXT NOT NULL DEFAULT 'awaiting_start',
	revealed_hints INTEGER NOT NULL DEFAULT 0,
	tries          INTEGER NOT NULL DEFAULT 0,
	resolution     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS participants (
	seq                  BIGSERIAL,
	code                 TEXT PRIMARY KEY,
	game_code            TEXT NOT NULL REFERENCES games(code),
	name                 TEXT NOT NULL,
	personality_type     TEXT NOT NULL DEFAULT '',
	eye_color            TEXT NOT NULL DEFAULT '',
	cartoon_character    TEXT NOT NULL DEFAULT '',
	guilty_pleasure_song TEXT NOT NULL DEFAULT '',
	image_url            TEXT NOT NULL DEFAULT '',
	was_selected         BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS guesses (
	seq             BIGSERIAL,
	id              UUID PRIMARY KEY,
	game_code       TEXT NOT NULL REFERENCES games(code),
	guesser_code    TEXT NOT NULL REFERENCES participants(code),
	guessed_code    TEXT NOT NULL,
	round_number    INTEGER NOT NULL,
	number_of_tries INTEGER NOT NULL,
	correct         BOOLEAN NOT NULL DEFAULT FALSE,
	hints_used      INTEGER NOT NULL DEFAULT 0,
	UNIQUE (game_code, guesser_code, round_number, number_of_tries)
);

CREATE TABLE IF NOT EXISTS score_cards (
	game_code        TEXT NOT NULL REFERENCES games(code),
	participant_code TEXT NOT NULL,
	name             TEXT NOT NULL,
	correct_guesses  INTEGER NOT NULL DEFAULT 0,
	total_guesses    INTEGER NOT NULL DEFAULT 0,
	hints_used       INTEGER NOT NULL DEFAULT 0,
	points           INTEGER NOT NULL DEFAULT 0,
	average_tries    DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (game_code, participant_code)
);
`

// EnsureSchema creates the tables if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	_, err := s.pool.Exec(ctx, schema)
	return mapErr("ensure schema", err)
}
