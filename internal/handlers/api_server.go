// internal/handlers/api_server.go
package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/guesswho-live/guesswho/internal/game"
	"github.com/guesswho-live/guesswho/internal/session"
)

// Server is the high-level struct behind the HTTP API: it holds the session
// registry and the round engine, both running against the same persistence
// gateway.
type Server struct {
	Registry *session.Registry
	Engine   *game.Engine
	Log      *logrus.Logger
}

// NewServer wires a registry and engine over the given gateway.
func NewServer(store game.Gateway, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	return &Server{
		Registry: session.NewRegistry(store, logger),
		Engine:   game.NewEngine(store, logger),
		Log:      logger,
	}
}

// RegisterRoutes attaches the game endpoints to a mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/game/create", s.CreateGameHandler)
	mux.HandleFunc("/game/join", s.JoinGameHandler)
	mux.HandleFunc("/game/start", s.StartGameHandler)
	mux.HandleFunc("/game/guess", s.GuessHandler)
	mux.HandleFunc("/game/hint", s.HintHandler)
	mux.HandleFunc("/game/next-round", s.NextRoundHandler)
	mux.HandleFunc("/game/state", s.StateHandler)
	mux.HandleFunc("/game/leaderboard", s.LeaderboardHandler)
}
