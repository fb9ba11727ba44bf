// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/guesswho-live/guesswho/internal/game"
	"github.com/guesswho-live/guesswho/internal/session"
)

type createGameRequest struct {
	Name string `json:"name"`
}

type createGameResponse struct {
	GameCode string `json:"gameCode"`
	Message  string `json:"message"`
}

// CreateGameHandler creates a new game session and returns its short code.
func (s *Server) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	g, err := s.Registry.CreateGame(r.Context(), req.Name)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, createGameResponse{GameCode: g.Code, Message: "Game created!"})
}

type joinGameRequest struct {
	GameCode           string `json:"gameCode"`
	Name               string `json:"name"`
	PersonalityType    string `json:"personalityType,omitempty"`
	EyeColor           string `json:"eyeColor,omitempty"`
	CartoonCharacter   string `json:"cartoonCharacter,omitempty"`
	GuiltyPleasureSong string `json:"guiltyPleasureSong,omitempty"`
	ImageURL           string `json:"imageUrl,omitempty"`
}

type joinGameResponse struct {
	UserCode string `json:"userCode"`
	Message  string `json:"message"`
}

// JoinGameHandler registers a participant profile in an existing game.
func (s *Server) JoinGameHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req joinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	p, err := s.Registry.JoinGame(r.Context(), req.GameCode, session.Profile{
		Name:               req.Name,
		PersonalityType:    req.PersonalityType,
		EyeColor:           req.EyeColor,
		CartoonCharacter:   req.CartoonCharacter,
		GuiltyPleasureSong: req.GuiltyPleasureSong,
		ImageURL:           req.ImageURL,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, joinGameResponse{UserCode: p.Code, Message: "User joined the game!"})
}

type gameCodeRequest struct {
	GameCode string `json:"gameCode"`
}

// StartGameHandler begins the first round by selecting a random target.
func (s *Server) StartGameHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	req, ok := decodeGameCode(w, r)
	if !ok {
		return
	}

	target, err := s.Engine.StartGame(r.Context(), req.GameCode)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"selectedPersonId": target.Code})
}

type guessRequest struct {
	GameCode        string `json:"gameCode"`
	UserCode        string `json:"userCode"`
	GuessedUserCode string `json:"guessedUserCode"`
	NumberOfTries   int    `json:"numberOfTries"`
}

type guessResponse struct {
	Correct bool   `json:"correct"`
	Message string `json:"message"`
	*game.GuessResult
}

// GuessHandler evaluates one guess against the current target.
func (s *Server) GuessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req guessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if len(req.GameCode) != session.CodeLength || req.UserCode == "" || req.GuessedUserCode == "" {
		writeError(w, http.StatusBadRequest, "gameCode, userCode and guessedUserCode are required")
		return
	}
	if req.NumberOfTries < 1 {
		writeError(w, http.StatusBadRequest, "numberOfTries must be at least 1")
		return
	}

	res, err := s.Engine.SubmitGuess(r.Context(), req.GameCode, req.UserCode, req.GuessedUserCode, req.NumberOfTries)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	msg := "Wrong guess!"
	switch {
	case res.Correct:
		msg = "Correct guess!"
	case res.AlreadyResolved:
		msg = "Round already resolved."
	case res.Duplicate:
		msg = "Guess already recorded."
	}
	writeJSON(w, http.StatusOK, guessResponse{Correct: res.Correct, Message: msg, GuessResult: res})
}

// HintHandler reveals the next hint category in fixed order.
func (s *Server) HintHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	req, ok := decodeGameCode(w, r)
	if !ok {
		return
	}

	revealed, err := s.Engine.RevealNextHint(r.Context(), req.GameCode)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"revealedHints": revealed})
}

// NextRoundHandler advances to the next target after a resolved round.
func (s *Server) NextRoundHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	req, ok := decodeGameCode(w, r)
	if !ok {
		return
	}

	target, err := s.Engine.NextRound(r.Context(), req.GameCode)
	if errors.Is(err, game.ErrGameComplete) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"gameOver": true, "message": "Game over!"})
		return
	}
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"selectedPersonId": target.Code})
}

// StateHandler returns the current round snapshot for polling clients.
func (s *Server) StateHandler(w http.ResponseWriter, r *http.Request) {
	gameCode := r.URL.Query().Get("gameCode")
	if len(gameCode) != session.CodeLength {
		writeError(w, http.StatusBadRequest, "gameCode query parameter is required")
		return
	}

	snap, err := s.Engine.RoundState(r.Context(), gameCode)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// LeaderboardHandler returns the ranked score cards for a game.
func (s *Server) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	gameCode := r.URL.Query().Get("gameCode")
	if len(gameCode) != session.CodeLength {
		writeError(w, http.StatusBadRequest, "gameCode query parameter is required")
		return
	}

	entries, err := s.Engine.Leaderboard(r.Context(), gameCode)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}

func decodeGameCode(w http.ResponseWriter, r *http.Request) (gameCodeRequest, bool) {
	var req gameCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return req, false
	}
	if len(req.GameCode) != session.CodeLength {
		writeError(w, http.StatusBadRequest, "gameCode must be 5 characters")
		return req, false
	}
	return req, true
}
