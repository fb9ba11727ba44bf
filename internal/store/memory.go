// internal/store/memory.go
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/guesswho-live/guesswho/internal/game"
	"github.com/guesswho-live/guesswho/internal/models"
)

// Memory is an in-process game.Gateway used by tests and by the server's
// dev mode (STORE=memory). It mimics the durable gateway's semantics: reads
// hand out copies so callers never share mutable state, MarkSelected is a
// compare-and-set, and RecordGuess is atomic with natural-key dedup.
type Memory struct {
	mu sync.Mutex

	games        map[string]*models.Game
	participants map[string]*models.Participant // by participant code
	joinOrder    map[string][]string            // game code -> participant codes
	guesses      map[string][]*models.GuessRecord
	guessKeys    map[string]struct{}
	cards        map[string]map[string]*models.ScoreCard
}

// NewMemory returns an empty in-memory gateway.
func NewMemory() *Memory {
	return &Memory{
		games:        make(map[string]*models.Game),
		participants: make(map[string]*models.Participant),
		joinOrder:    make(map[string][]string),
		guesses:      make(map[string][]*models.GuessRecord),
		guessKeys:    make(map[string]struct{}),
		cards:        make(map[string]map[string]*models.ScoreCard),
	}
}

var _ game.Gateway = (*Memory)(nil)

func dedupKey(rec *models.GuessRecord) string {
	return fmt.Sprintf("%s/%s/%d/%d", rec.GameCode, rec.GuesserCode, rec.Round, rec.Tries)
}

func (m *Memory) GetGame(ctx context.Context, code string) (*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[code]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", code, game.ErrNotFound)
	}
	cp := *g
	return &cp, nil
}

func (m *Memory) CreateGame(ctx context.Context, g *models.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.games[g.Code]; exists {
		return fmt.Errorf("game code %s: %w", g.Code, game.ErrConflict)
	}
	cp := *g
	m.games[g.Code] = &cp
	return nil
}

func (m *Memory) ListParticipants(ctx context.Context, gameCode string) ([]*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[gameCode]; !ok {
		return nil, fmt.Errorf("game %s: %w", gameCode, game.ErrNotFound)
	}
	codes := m.joinOrder[gameCode]
	out := make([]*models.Participant, 0, len(codes))
	for _, c := range codes {
		cp := *m.participants[c]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) CreateParticipant(ctx context.Context, p *models.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[p.GameCode]; !ok {
		return fmt.Errorf("game %s: %w", p.GameCode, game.ErrNotFound)
	}
	if _, exists := m.participants[p.Code]; exists {
		return fmt.Errorf("participant code %s: %w", p.Code, game.ErrConflict)
	}
	cp := *p
	m.participants[p.Code] = &cp
	m.joinOrder[p.GameCode] = append(m.joinOrder[p.GameCode], p.Code)
	return nil
}

func (m *Memory) MarkSelected(ctx context.Context, participantCode string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participants[participantCode]
	if !ok {
		return false, fmt.Errorf("participant %s: %w", participantCode, game.ErrNotFound)
	}
	if p.WasSelected {
		return false, nil
	}
	p.WasSelected = true
	return true, nil
}

func (m *Memory) SetGameTarget(ctx context.Context, gameCode, participantCode string, round int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameCode]
	if !ok {
		return fmt.Errorf("game %s: %w", gameCode, game.ErrNotFound)
	}
	g.CurrentTarget = participantCode
	g.CurrentRound = round
	return nil
}

func (m *Memory) SaveRoundState(ctx context.Context, g *models.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.games[g.Code]
	if !ok {
		return fmt.Errorf("game %s: %w", g.Code, game.ErrNotFound)
	}
	cp := *g
	*stored = cp
	return nil
}

func (m *Memory) RecordGuess(ctx context.Context, g *models.Game, rec *models.GuessRecord, card *models.ScoreCard) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.games[g.Code]
	if !ok {
		return false, fmt.Errorf("game %s: %w", g.Code, game.ErrNotFound)
	}
	key := dedupKey(rec)
	if _, dup := m.guessKeys[key]; dup {
		return false, nil
	}
	m.guessKeys[key] = struct{}{}
	recCp := *rec
	m.guesses[rec.GameCode] = append(m.guesses[rec.GameCode], &recCp)

	byCode := m.cards[rec.GameCode]
	if byCode == nil {
		byCode = make(map[string]*models.ScoreCard)
		m.cards[rec.GameCode] = byCode
	}
	cardCp := *card
	byCode[card.ParticipantCode] = &cardCp

	gameCp := *g
	*stored = gameCp
	return true, nil
}

func (m *Memory) GetLeaderboard(ctx context.Context, gameCode string) (map[string]*models.ScoreCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*models.ScoreCard, len(m.cards[gameCode]))
	for code, card := range m.cards[gameCode] {
		cp := *card
		out[code] = &cp
	}
	return out, nil
}

func (m *Memory) ListGuesses(ctx context.Context, gameCode string) ([]*models.GuessRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.GuessRecord, 0, len(m.guesses[gameCode]))
	for _, rec := range m.guesses[gameCode] {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}
