// cmd/auditor/main.go is an asynchronous audit service that pops guess
// outcome records from a Redis queue and periodically verifies each touched
// game's score cards by rebuilding them from the append-only guess history.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guesswho-live/guesswho/internal/cache"
	"github.com/guesswho-live/guesswho/internal/database"
	"github.com/guesswho-live/guesswho/internal/leaderboard"
)

// AuditorService reads the guess outcome queue and checks that the
// incrementally maintained score cards match a full rebuild from the guess
// record stream.
type AuditorService struct {
	redisClient *redis.Client
	db          *database.Store
	verifyDelay time.Duration

	mu    sync.Mutex
	dirty map[string]struct{} // game codes seen since the last verify pass

	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewAuditorService constructs an AuditorService from environment variables
// or defaults.
func NewAuditorService(db *database.Store) *AuditorService {
	verifyMs := cache.GetEnvInt("AUDIT_VERIFY_MS", 2000)

	rdb := redis.NewClient(&redis.Options{
		Addr: cache.GetEnv("REDIS_ADDR", "localhost:6379"),
		DB:   cache.GetEnvInt("REDIS_DB", 0),
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &AuditorService{
		redisClient: rdb,
		db:          db,
		verifyDelay: time.Duration(verifyMs) * time.Millisecond,
		dirty:       make(map[string]struct{}),
		ctx:         ctx,
		cancelFn:    cancel,
	}
}

// Run starts the queue reader and the periodic verify loop and blocks until
// the context is cancelled.
func (as *AuditorService) Run() {
	go as.readQueueLoop()
	go as.verifyLoop()

	log.Println("guesswho-auditor service started.")
	<-as.ctx.Done()
	log.Println("guesswho-auditor shutting down.")
}

// readQueueLoop uses BLPop with a short timeout so cancellation is honored.
func (as *AuditorService) readQueueLoop() {
	queueName := cache.GetEnv("AUDIT_QUEUE_NAME", cache.DefaultQueueName)

	for {
		select {
		case <-as.ctx.Done():
			return
		default:
			res, err := as.redisClient.BLPop(as.ctx, 3*time.Second, queueName).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				log.Printf("[ERROR] BLPop: %v\n", err)
				continue
			}
			if len(res) < 2 {
				continue
			}

			var record cache.GuessOutcomeRecord
			if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
				log.Printf("invalid guess outcome record: %v\n", err)
				continue
			}

			as.mu.Lock()
			as.dirty[record.GameCode] = struct{}{}
			as.mu.Unlock()
		}
	}
}

// verifyLoop periodically re-derives score cards for every dirty game and
// logs any divergence from the stored leaderboard.
func (as *AuditorService) verifyLoop() {
	ticker := time.NewTicker(as.verifyDelay)
	defer ticker.Stop()

	for {
		select {
		case <-as.ctx.Done():
			return
		case <-ticker.C:
			as.mu.Lock()
			games := make([]string, 0, len(as.dirty))
			for code := range as.dirty {
				games = append(games, code)
			}
			as.dirty = make(map[string]struct{})
			as.mu.Unlock()

			for _, code := range games {
				if err := as.verifyGame(code); err != nil {
					log.Printf("[ERROR] verify game %s: %v\n", code, err)
					// Re-queue so a transient failure is retried next tick.
					as.mu.Lock()
					as.dirty[code] = struct{}{}
					as.mu.Unlock()
				}
			}
		}
	}
}

// verifyGame rebuilds score cards from the guess record stream and compares
// them with the incrementally maintained leaderboard.
func (as *AuditorService) verifyGame(gameCode string) error {
	ctx, cancel := context.WithTimeout(as.ctx, 10*time.Second)
	defer cancel()

	records, err := as.db.ListGuesses(ctx, gameCode)
	if err != nil {
		return err
	}
	parts, err := as.db.ListParticipants(ctx, gameCode)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(parts))
	for _, p := range parts {
		names[p.Code] = p.Name
	}

	rebuilt := leaderboard.Rebuild(records, names)
	stored, err := as.db.GetLeaderboard(ctx, gameCode)
	if err != nil {
		return err
	}

	for code, want := range rebuilt {
		got, ok := stored[code]
		if !ok {
			log.Printf("[AUDIT] game %s: card for %s missing from leaderboard\n", gameCode, code)
			continue
		}
		if got.Points != want.Points ||
			got.CorrectGuesses != want.CorrectGuesses ||
			got.TotalGuesses != want.TotalGuesses ||
			got.HintsUsed != want.HintsUsed ||
			math.Abs(got.AverageTries-want.AverageTries) > 1e-9 {
			log.Printf("[AUDIT] game %s: card for %s diverges (stored points=%d rebuilt points=%d)\n",
				gameCode, code, got.Points, want.Points)
		}
	}
	log.Printf("verified %d score cards for game %s\n", len(rebuilt), gameCode)
	return nil
}

func main() {
	db, err := database.Connect(context.Background())
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer db.Close()

	svc := NewAuditorService(db)
	svc.Run()
}
