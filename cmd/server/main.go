// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/guesswho-live/guesswho/internal/cache"
	"github.com/guesswho-live/guesswho/internal/database"
	"github.com/guesswho-live/guesswho/internal/game"
	"github.com/guesswho-live/guesswho/internal/handlers"
	"github.com/guesswho-live/guesswho/internal/leaderboard"
	"github.com/guesswho-live/guesswho/internal/middleware"
	"github.com/guesswho-live/guesswho/internal/models"
	"github.com/guesswho-live/guesswho/internal/store"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	ctx := context.Background()

	var gateway game.Gateway
	if os.Getenv("STORE") == "memory" {
		gateway = store.NewMemory()
		logger.Warn("running with in-memory store, state is lost on restart")
	} else {
		db, err := database.Connect(ctx)
		if err != nil {
			log.Fatalf("database connect: %v", err)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		gateway = db
	}

	srv := handlers.NewServer(gateway, logger)

	if err := cache.ConnectRedis(); err != nil {
		logger.WithError(err).Warn("redis unavailable, guess audit trail disabled")
	} else {
		srv.Engine.OnOutcome = func(rec models.GuessRecord, o leaderboard.Outcome) {
			pubCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			err := cache.PublishGuessOutcome(pubCtx, cache.GuessOutcomeRecord{
				RecordID:    rec.ID,
				GameCode:    rec.GameCode,
				GuesserCode: rec.GuesserCode,
				GuessedCode: rec.GuessedCode,
				Round:       rec.Round,
				Tries:       rec.Tries,
				Correct:     rec.Correct,
				HintsUsed:   rec.HintsUsed,
				Points:      o.Points,
				Timestamp:   time.Now().UnixMilli(),
			})
			if err != nil {
				logger.WithError(err).Warn("failed to publish guess outcome")
			}
		}
	}

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, middleware.LogMiddleware(logger)(mux)); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
