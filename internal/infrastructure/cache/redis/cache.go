// Package redis fronts the idempotency lookup of the transfer executor
// with a short-TTL cache. It is a latency optimization only: Postgres
// remains the single source of truth and entries are written only after a
// commit. A hit is served to the client as stored, without a database
// lookup; a miss or a down Redis always falls through to the database.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ledgerbank/transfer-engine/internal/pkg/config"
	"github.com/ledgerbank/transfer-engine/internal/pkg/logging"
)

// ReplayEntry is the cached shape of a terminal transfer response.
type ReplayEntry struct {
	TransactionID uuid.UUID `json:"transactionId"`
	Status        string    `json:"status"`
	Payload       []byte    `json:"payload"`
}

// Cache wraps a go-redis client scoped to idempotent-replay lookups.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New builds a Cache from the application's RedisConfig. Connectivity is
// not verified here; a down Redis degrades every Get to a cache miss.
func New(cfg config.RedisConfig) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Cache{client: client, ttl: cfg.TTL}
}

func replayKey(initiatorUserID, idempotencyKey uuid.UUID) string {
	return fmt.Sprintf("replay:%s:%s", initiatorUserID, idempotencyKey)
}

// Get returns the cached replay entry, or ok=false on miss or any Redis
// error — callers must always fall through to the database on a miss.
func (c *Cache) Get(ctx context.Context, initiatorUserID, idempotencyKey uuid.UUID) (ReplayEntry, bool) {
	raw, err := c.client.Get(ctx, replayKey(initiatorUserID, idempotencyKey)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logging.Warn("replay cache read failed", map[string]interface{}{"error": err.Error()})
		}
		return ReplayEntry{}, false
	}

	var entry ReplayEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		logging.Warn("replay cache entry corrupt", map[string]interface{}{"error": err.Error()})
		return ReplayEntry{}, false
	}
	return entry, true
}

// Set stores a terminal transfer response. Called only after the
// executor's transaction has committed — never for PENDING state.
func (c *Cache) Set(ctx context.Context, initiatorUserID, idempotencyKey uuid.UUID, entry ReplayEntry) {
	raw, err := json.Marshal(entry)
	if err != nil {
		logging.Warn("replay cache encode failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := c.client.Set(ctx, replayKey(initiatorUserID, idempotencyKey), raw, c.ttl).Err(); err != nil {
		logging.Warn("replay cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

// Close releases the underlying connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// IsHealthy reports whether Redis answers a PING within a short timeout.
func (c *Cache) IsHealthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.client.Ping(ctx).Err() == nil
}
