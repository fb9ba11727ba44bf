// internal/session/registry.go
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/guesswho-live/guesswho/internal/game"
	"github.com/guesswho-live/guesswho/internal/models"
)

const (
	// CodeLength is the fixed length of a game code.
	CodeLength = 5
	// codeCharset is uppercase alphanumeric, matching the short codes players
	// type in to join.
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// maxCodeAttempts bounds regeneration on code collisions before the
	// create fails with ErrConflict.
	maxCodeAttempts = 5

	minGameName   = 3
	maxGameName   = 50
	minPlayerName = 2
	maxPlayerName = 50
)

// Registry is the external-facing entry point for creating and joining game
// sessions. It owns short-code generation; round flow belongs to game.Engine.
type Registry struct {
	store game.Gateway
	log   *logrus.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRegistry builds a registry over a persistence gateway.
func NewRegistry(store game.Gateway, logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.New()
	}
	return &Registry{
		store: store,
		log:   logger,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Profile carries the join-time participant attributes. Name is required; the
// hint attributes are optional.
type Profile struct {
	Name               string
	PersonalityType    string
	EyeColor           string
	CartoonCharacter   string
	GuiltyPleasureSong string
	ImageURL           string
}

// CreateGame generates a globally unique short code and inserts the game. On
// a collision it regenerates and retries a bounded number of times before
// failing with ErrConflict.
func (r *Registry) CreateGame(ctx context.Context, name string) (*models.Game, error) {
	name = strings.TrimSpace(name)
	if len(name) < minGameName || len(name) > maxGameName {
		return nil, fmt.Errorf("game name must be %d-%d characters: %w", minGameName, maxGameName, game.ErrValidation)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		g := &models.Game{
			Code:         r.newCode(),
			Name:         name,
			CurrentRound: 1,
			State:        models.StateAwaitingStart,
		}
		err := r.store.CreateGame(ctx, g)
		if errors.Is(err, game.ErrConflict) {
			r.log.WithField("code", g.Code).Warn("game code collision, regenerating")
			continue
		}
		if err != nil {
			return nil, err
		}
		r.log.WithFields(logrus.Fields{"game": g.Code, "name": name}).Info("game created")
		return g, nil
	}
	return nil, fmt.Errorf("could not allocate a unique game code after %d attempts: %w", maxCodeAttempts, game.ErrConflict)
}

// JoinGame creates a participant in an existing game with WasSelected=false.
// Unknown game codes fail with ErrNotFound.
func (r *Registry) JoinGame(ctx context.Context, gameCode string, profile Profile) (*models.Participant, error) {
	if len(gameCode) != CodeLength {
		return nil, fmt.Errorf("game code must be %d characters: %w", CodeLength, game.ErrValidation)
	}
	name := strings.TrimSpace(profile.Name)
	if len(name) < minPlayerName || len(name) > maxPlayerName {
		return nil, fmt.Errorf("player name must be %d-%d characters: %w", minPlayerName, maxPlayerName, game.ErrValidation)
	}

	p := &models.Participant{
		Code:               uuid.NewString(),
		GameCode:           gameCode,
		Name:               name,
		PersonalityType:    profile.PersonalityType,
		EyeColor:           profile.EyeColor,
		CartoonCharacter:   profile.CartoonCharacter,
		GuiltyPleasureSong: profile.GuiltyPleasureSong,
		ImageURL:           profile.ImageURL,
		WasSelected:        false,
	}
	if err := r.store.CreateParticipant(ctx, p); err != nil {
		return nil, err
	}
	r.log.WithFields(logrus.Fields{"game": gameCode, "participant": p.Code}).Info("participant joined")
	return p, nil
}

func (r *Registry) newCode() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(codeCharset[r.rnd.Intn(len(codeCharset))])
	}
	return b.String()
}
