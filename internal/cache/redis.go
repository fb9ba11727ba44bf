// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// DefaultQueueName is the Redis list (queue) name for guess outcome records.
var DefaultQueueName = "guesswho_guesses"

// GuessOutcomeRecord is the audit-trail payload pushed for every applied
// guess, consumed by the auditor service to verify score cards against the
// append-only guess history.
type GuessOutcomeRecord struct {
	RecordID    uuid.UUID `json:"record_id"`
	GameCode    string    `json:"game_code"`
	GuesserCode string    `json:"guesser_code"`
	GuessedCode string    `json:"guessed_code"`
	Round       int       `json:"round"`
	Tries       int       `json:"tries"`
	Correct     bool      `json:"correct"`
	HintsUsed   int       `json:"hints_used"`
	Points      int       `json:"points"`
	Timestamp   int64     `json:"timestamp"`
}

// ConnectRedis initializes the global Redis client with environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := GetEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := GetEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// PublishGuessOutcome serializes the record to JSON and pushes it onto the
// audit queue. Callers treat failures as best effort; the guess itself is
// already durably applied by the time this runs.
func PublishGuessOutcome(ctx context.Context, record GuessOutcomeRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal GuessOutcomeRecord: %w", err)
	}

	queueName := GetEnv("AUDIT_QUEUE_NAME", DefaultQueueName)
	if err := Rdb.RPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queueName, err)
	}
	return nil
}

// GetEnv reads an environment variable or returns a default value.
func GetEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetEnvInt parses an environment variable as integer, else a default value.
func GetEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
