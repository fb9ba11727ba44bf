// internal/game/engine.go
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/guesswho-live/guesswho/internal/leaderboard"
	"github.com/guesswho-live/guesswho/internal/models"
	"github.com/guesswho-live/guesswho/internal/scoring"
)

// defaultSelectRetries bounds how often a lost MarkSelected race is retried
// against a refreshed roster before giving up with ErrConflict.
const defaultSelectRetries = 5

// Engine drives one game's round state machine: target selection, hint
// reveals, guess evaluation, and round/game completion. It keeps no session
// state of its own; every operation reads and writes through the Gateway so
// concurrent invocations coordinate via the store's conditional writes.
type Engine struct {
	store Gateway
	log   *logrus.Logger

	mu  sync.Mutex
	rnd *rand.Rand

	selectRetries int

	// OnOutcome, when set, is invoked after a guess has been durably applied.
	// Used to feed the audit queue; failures there must not affect the round.
	OnOutcome func(rec models.GuessRecord, o leaderboard.Outcome)
}

// NewEngine builds an engine over a persistence gateway.
func NewEngine(store Gateway, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{
		store:         store,
		log:           logger,
		rnd:           rand.New(rand.NewSource(time.Now().UnixNano())),
		selectRetries: defaultSelectRetries,
	}
}

func (e *Engine) intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rnd.Intn(n)
}

// GuessResult is the outcome of a single submitted guess.
type GuessResult struct {
	Correct bool `json:"correct"`

	// Duplicate is set when the guess matched an already-recorded natural key
	// (a retried delivery); nothing was counted or advanced.
	Duplicate bool `json:"duplicate,omitempty"`

	// AlreadyResolved is set when the guess arrived after the round ended;
	// the submission is a no-op.
	AlreadyResolved bool `json:"alreadyResolved,omitempty"`

	RoundOver bool `json:"roundOver,omitempty"`
	GameOver  bool `json:"gameOver,omitempty"`

	Tries     int `json:"tries"`
	HintsUsed int `json:"hintsUsed"`

	// Score is the points breakdown, present only on a correct guess.
	Score *scoring.Breakdown `json:"score,omitempty"`

	// RevealedHint is the category auto-revealed after an incorrect guess
	// outside final-guess mode.
	RevealedHint HintCategory `json:"revealedHint,omitempty"`

	// TargetCode and TargetName disclose the identity once the round
	// resolves, including an exhausted final guess.
	TargetCode string `json:"targetCode,omitempty"`
	TargetName string `json:"targetName,omitempty"`
}

// StartGame begins the first round: it requires at least two participants,
// picks a target uniformly at random among those never selected, marks it via
// a conditional write, and enters the active state with the first hint
// revealed. Nothing is mutated when the player count is too low.
func (e *Engine) StartGame(ctx context.Context, gameCode string) (*models.Participant, error) {
	g, err := e.store.GetGame(ctx, gameCode)
	if err != nil {
		return nil, err
	}
	switch g.State {
	case models.StateComplete:
		return nil, ErrGameComplete
	case models.StateRoundActive:
		return nil, fmt.Errorf("round %d already in progress: %w", g.CurrentRound, ErrConflict)
	case models.StateRoundResolved:
		return nil, fmt.Errorf("round %d already resolved, advance with next round: %w", g.CurrentRound, ErrConflict)
	}

	parts, err := e.store.ListParticipants(ctx, gameCode)
	if err != nil {
		return nil, err
	}
	if len(parts) < 2 {
		return nil, ErrInsufficientPlayers
	}

	target, err := e.selectTarget(ctx, gameCode, parts)
	if err != nil {
		return nil, err
	}

	g.Started = true
	if g.CurrentRound < 1 {
		g.CurrentRound = 1
	}
	if err := e.store.SetGameTarget(ctx, gameCode, target.Code, g.CurrentRound); err != nil {
		return nil, err
	}
	g.CurrentTarget = target.Code
	beginRound(g)
	if err := e.store.SaveRoundState(ctx, g); err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"game":   gameCode,
		"round":  g.CurrentRound,
		"target": target.Code,
	}).Info("round started")
	return target, nil
}

// NextRound selects the next never-selected target after a resolved round.
// When nobody is left the session is already complete and ErrGameComplete is
// returned.
func (e *Engine) NextRound(ctx context.Context, gameCode string) (*models.Participant, error) {
	g, err := e.store.GetGame(ctx, gameCode)
	if err != nil {
		return nil, err
	}
	if g.State == models.StateComplete {
		return nil, ErrGameComplete
	}
	if g.State != models.StateRoundResolved {
		return nil, fmt.Errorf("round %d is not resolved: %w", g.CurrentRound, ErrConflict)
	}

	parts, err := e.store.ListParticipants(ctx, gameCode)
	if err != nil {
		return nil, err
	}
	target, err := e.selectTarget(ctx, gameCode, parts)
	if errors.Is(err, ErrGameComplete) {
		g.State = models.StateComplete
		if saveErr := e.store.SaveRoundState(ctx, g); saveErr != nil {
			return nil, saveErr
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	g.CurrentRound++
	if err := e.store.SetGameTarget(ctx, gameCode, target.Code, g.CurrentRound); err != nil {
		return nil, err
	}
	g.CurrentTarget = target.Code
	beginRound(g)
	if err := e.store.SaveRoundState(ctx, g); err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"game":   gameCode,
		"round":  g.CurrentRound,
		"target": target.Code,
	}).Info("round started")
	return target, nil
}

// selectTarget picks uniformly at random among participants with
// WasSelected=false and claims the pick with a conditional write. A lost race
// refreshes the roster and re-picks, bounded by selectRetries.
func (e *Engine) selectTarget(ctx context.Context, gameCode string, parts []*models.Participant) (*models.Participant, error) {
	for attempt := 0; attempt < e.selectRetries; attempt++ {
		var pool []*models.Participant
		for _, p := range parts {
			if !p.WasSelected {
				pool = append(pool, p)
			}
		}
		if len(pool) == 0 {
			return nil, ErrGameComplete
		}

		pick := pool[e.intn(len(pool))]
		won, err := e.store.MarkSelected(ctx, pick.Code)
		if err != nil {
			return nil, err
		}
		if won {
			pick.WasSelected = true
			return pick, nil
		}

		e.log.WithFields(logrus.Fields{"game": gameCode, "pick": pick.Code}).
			Warn("lost selection race, refreshing roster")
		parts, err = e.store.ListParticipants(ctx, gameCode)
		if err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("target selection lost %d races: %w", e.selectRetries, ErrConflict)
}

// beginRound resets the per-round runtime fields and reveals the first hint.
func beginRound(g *models.Game) {
	g.State = models.StateRoundActive
	g.RevealedHints = 1
	g.Tries = 0
	g.Resolution = ""
}

// RevealNextHint reveals the next category in fixed order and returns the
// revealed set. Calling it while the round is inactive, or after all five
// categories are shown, is a no-op.
func (e *Engine) RevealNextHint(ctx context.Context, gameCode string) ([]HintCategory, error) {
	g, err := e.store.GetGame(ctx, gameCode)
	if err != nil {
		return nil, err
	}
	if g.State != models.StateRoundActive || g.RevealedHints >= len(HintOrder) {
		return RevealedCategories(g.RevealedHints), nil
	}
	g.RevealedHints++
	if err := e.store.SaveRoundState(ctx, g); err != nil {
		return nil, err
	}
	return RevealedCategories(g.RevealedHints), nil
}

// SubmitGuess evaluates one guess while the round is active. tries is the
// guesser's try counter for this round; passing a value below 1 lets the
// engine advance its own counter. The guess record append, the score card
// update, and the round-state transition commit as one atomic unit; a
// duplicate natural key leaves everything untouched and flags the result as
// Duplicate, reporting where the round stands after the original submission.
func (e *Engine) SubmitGuess(ctx context.Context, gameCode, guesserCode, guessedCode string, tries int) (*GuessResult, error) {
	g, err := e.store.GetGame(ctx, gameCode)
	if err != nil {
		return nil, err
	}
	if g.State == models.StateRoundResolved || g.State == models.StateComplete {
		return &GuessResult{
			AlreadyResolved: true,
			RoundOver:       true,
			GameOver:        g.State == models.StateComplete,
		}, nil
	}
	if g.State != models.StateRoundActive || g.CurrentTarget == "" {
		return nil, ErrNoTarget
	}

	parts, err := e.store.ListParticipants(ctx, gameCode)
	if err != nil {
		return nil, err
	}
	guesser := findParticipant(parts, guesserCode)
	if guesser == nil {
		return nil, fmt.Errorf("guesser %s: %w", guesserCode, ErrNotFound)
	}
	target := findParticipant(parts, g.CurrentTarget)
	if target == nil {
		return nil, fmt.Errorf("target %s: %w", g.CurrentTarget, ErrNotFound)
	}

	if tries < 1 {
		tries = g.Tries + 1
	}
	correct := guessedCode == g.CurrentTarget
	hintsUsed := g.RevealedHints

	rec := models.GuessRecord{
		ID:          uuid.New(),
		GameCode:    gameCode,
		GuesserCode: guesserCode,
		GuessedCode: guessedCode,
		Round:       g.CurrentRound,
		Tries:       tries,
		Correct:     correct,
	}
	outcome := leaderboard.Outcome{
		GuesserCode: guesserCode,
		GuesserName: guesser.Name,
		Correct:     correct,
		Tries:       tries,
	}
	res := &GuessResult{Correct: correct, Tries: tries, HintsUsed: hintsUsed}
	if correct {
		rec.HintsUsed = hintsUsed
		bd := scoring.Compute(tries, hintsUsed)
		res.Score = &bd
		outcome.HintsUsed = hintsUsed
		outcome.Points = bd.Points
	}

	cards, err := e.store.GetLeaderboard(ctx, gameCode)
	if err != nil {
		return nil, err
	}
	card := cards[guesserCode]
	if card == nil {
		card = leaderboard.NewCard(guesserCode, guesser.Name)
	}
	leaderboard.Fold(card, outcome)

	// Advance the round in memory first; RecordGuess commits the record, the
	// card, and this state transition together, so a failure anywhere leaves
	// the round exactly as it was.
	if tries > g.Tries {
		g.Tries = tries
	}
	switch {
	case correct:
		resolveRound(g, parts, models.ResolutionCorrect, res)
		res.TargetCode = target.Code
		res.TargetName = target.Name
	case hintsUsed >= len(HintOrder):
		// Final-guess mode: the portrait was already out, so a miss ends the
		// round and the identity is disclosed.
		resolveRound(g, parts, models.ResolutionExhausted, res)
		res.TargetCode = target.Code
		res.TargetName = target.Name
	default:
		g.RevealedHints++
		res.RevealedHint = HintOrder[g.RevealedHints-1]
	}

	applied, err := e.store.RecordGuess(ctx, g, &rec, card)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Retried delivery: the original submission already committed its
		// transition, so report the round as it stands now.
		cur, err := e.store.GetGame(ctx, gameCode)
		if err != nil {
			return nil, err
		}
		return &GuessResult{
			Correct:   correct,
			Duplicate: true,
			Tries:     tries,
			HintsUsed: hintsUsed,
			RoundOver: cur.State == models.StateRoundResolved || cur.State == models.StateComplete,
			GameOver:  cur.State == models.StateComplete,
		}, nil
	}

	e.log.WithFields(logrus.Fields{
		"game":    gameCode,
		"round":   rec.Round,
		"guesser": guesserCode,
		"tries":   tries,
		"correct": correct,
	}).Info("guess applied")

	if e.OnOutcome != nil {
		e.OnOutcome(rec, outcome)
	}
	return res, nil
}

// resolveRound ends the active round and completes the game when no
// unselected participants remain.
func resolveRound(g *models.Game, parts []*models.Participant, how models.Resolution, res *GuessResult) {
	g.State = models.StateRoundResolved
	g.Resolution = how
	res.RoundOver = true

	for _, p := range parts {
		if !p.WasSelected {
			return
		}
	}
	g.State = models.StateComplete
	res.GameOver = true
}

func findParticipant(parts []*models.Participant, code string) *models.Participant {
	for _, p := range parts {
		if p.Code == code {
			return p
		}
	}
	return nil
}

// Snapshot is a read-only view of the current round for pull-style callers.
type Snapshot struct {
	GameCode       string                  `json:"gameCode"`
	Name           string                  `json:"name"`
	State          models.GameState        `json:"state"`
	Round          int                     `json:"round"`
	Tries          int                     `json:"tries"`
	RevealedHints  []HintCategory          `json:"revealedHints"`
	Hints          map[HintCategory]string `json:"hints,omitempty"`
	FinalGuessMode bool                    `json:"finalGuessMode"`
	Resolution     models.Resolution       `json:"resolution,omitempty"`
}

// RoundState reports the current round without mutating anything. Revealed
// hint values are included while a target is selected; the target's identity
// is not.
func (e *Engine) RoundState(ctx context.Context, gameCode string) (*Snapshot, error) {
	g, err := e.store.GetGame(ctx, gameCode)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{
		GameCode:       g.Code,
		Name:           g.Name,
		State:          g.State,
		Round:          g.CurrentRound,
		Tries:          g.Tries,
		RevealedHints:  RevealedCategories(g.RevealedHints),
		FinalGuessMode: g.State == models.StateRoundActive && g.RevealedHints >= len(HintOrder),
		Resolution:     g.Resolution,
	}
	if g.CurrentTarget == "" || g.State != models.StateRoundActive {
		return snap, nil
	}

	parts, err := e.store.ListParticipants(ctx, gameCode)
	if err != nil {
		return nil, err
	}
	target := findParticipant(parts, g.CurrentTarget)
	if target == nil {
		return snap, nil
	}
	snap.Hints = make(map[HintCategory]string, g.RevealedHints)
	for _, c := range snap.RevealedHints {
		snap.Hints[c] = HintValue(target, c)
	}
	return snap, nil
}

// Leaderboard returns the game's ranked score cards.
func (e *Engine) Leaderboard(ctx context.Context, gameCode string) ([]leaderboard.Entry, error) {
	if _, err := e.store.GetGame(ctx, gameCode); err != nil {
		return nil, err
	}
	cards, err := e.store.GetLeaderboard(ctx, gameCode)
	if err != nil {
		return nil, err
	}
	list := make([]*models.ScoreCard, 0, len(cards))
	for _, c := range cards {
		list = append(list, c)
	}
	return leaderboard.Rank(list), nil
}
