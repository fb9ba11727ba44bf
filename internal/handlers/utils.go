// internal/handlers/utils.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/guesswho-live/guesswho/internal/game"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the core's sentinel errors onto the API's stable
// error payloads. Expected domain conditions come back as 400s with fixed
// messages; transient store trouble is a 503 so clients know to retry.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrInsufficientPlayers):
		writeError(w, http.StatusBadRequest, "Not enough players!")
	case errors.Is(err, game.ErrNoTarget):
		writeError(w, http.StatusBadRequest, "No unknown user selected!")
	case errors.Is(err, game.ErrNotFound):
		writeError(w, http.StatusBadRequest, "Game not found!")
	case errors.Is(err, game.ErrGameComplete):
		writeError(w, http.StatusBadRequest, "Game complete!")
	case errors.Is(err, game.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Service temporarily unavailable, try again.")
	default:
		s.Log.WithError(err).Error("unhandled error")
		writeError(w, http.StatusInternalServerError, "Internal error.")
	}
}
