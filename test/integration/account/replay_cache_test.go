package account

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/redis"

	rediscache "github.com/ledgerbank/transfer-engine/internal/infrastructure/cache/redis"
	"github.com/ledgerbank/transfer-engine/internal/pkg/config"
	"github.com/ledgerbank/transfer-engine/test/integration/testenv"
)

func newTestRedisCache(t *testing.T) *rediscache.Cache {
	ctx := context.Background()
	container, err := redis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	return rediscache.New(config.RedisConfig{Addr: addr, TTL: time.Minute})
}

// TestTransferReplayIsServedFromCacheOnSecondAttempt covers the fast path
// of §4.2: once a transfer's terminal response has been cached, a repeat
// request with the same idempotency key never needs to reach Postgres.
func TestTransferReplayIsServedFromCacheOnSecondAttempt(t *testing.T) {
	cache := newTestRedisCache(t)
	container := testenv.NewTestContainerWithCache(t, cache)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	from := testenv.CreateAccount(t, router, token, 1000)
	to := testenv.CreateAccount(t, router, token, 0)

	first := testenv.Transfer(router, token, "cache-replay-1", from, to, 250)
	require.Equal(t, http.StatusOK, first.Code)

	second := testenv.Transfer(router, token, "cache-replay-1", from, to, 250)
	require.Equal(t, http.StatusOK, second.Code)
	require.JSONEq(t, first.Body.String(), second.Body.String())

	require.Equal(t, float64(750), testenv.GetAccount(t, router, token, from)["balance"])
}
