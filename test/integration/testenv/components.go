package testenv

import (
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ledgerbank/transfer-engine/internal/domain/transfer"
	rediscache "github.com/ledgerbank/transfer-engine/internal/infrastructure/cache/redis"
	"github.com/ledgerbank/transfer-engine/internal/infrastructure/database/postgres"
	"github.com/ledgerbank/transfer-engine/internal/infrastructure/messaging"
	"github.com/ledgerbank/transfer-engine/internal/pkg/authctx"
	"github.com/ledgerbank/transfer-engine/internal/pkg/config"
	"github.com/ledgerbank/transfer-engine/internal/pkg/logging"
)

// JWTSecret is the fixed HMAC secret every test token is signed with.
const JWTSecret = "test-secret-do-not-use-in-production"

// TestContainer is a minimal handlers.HandlerDependencies implementation
// wired against the shared testcontainer Postgres and an in-memory event
// capture publisher, mirroring components.Container without Kafka. It has
// no replay cache unless built with NewTestContainerWithCache.
type TestContainer struct {
	Config            *config.Config
	Store             *postgres.Store
	Executor          *transfer.Executor
	EventPublisher    *messaging.EventCapture
	IdentityExtractor authctx.Extractor
	ReplayCache       *rediscache.Cache
	Router            *gin.Engine
}

func (tc *TestContainer) GetConfig() *config.Config                         { return tc.Config }
func (tc *TestContainer) GetStore() *postgres.Store                         { return tc.Store }
func (tc *TestContainer) GetExecutor() *transfer.Executor                   { return tc.Executor }
func (tc *TestContainer) GetEventPublisher() messaging.EventPublisher       { return tc.EventPublisher }
func (tc *TestContainer) GetIdentityExtractor() authctx.Extractor           { return tc.IdentityExtractor }
func (tc *TestContainer) GetReplayCache() *rediscache.Cache                 { return tc.ReplayCache }
func (tc *TestContainer) GetRouter() *gin.Engine                            { return tc.Router }

// NewTestContainer spins up (or reuses) the shared Postgres testcontainer
// and returns a fully wired router. Each call gets a fresh EventCapture
// and a reset database.
func NewTestContainer(t *testing.T) *TestContainer {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:  config.ServerConfig{Port: "8080", Host: "localhost"},
		Logging: config.LoggingConfig{Level: "error", Format: "json"},
		CORS: config.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"*"},
		},
		RateLimit: config.RateLimitConfig{RequestsPerMinute: 100000},
		Auth:      config.AuthConfig{JWTSecret: JWTSecret},
	}
	logging.Init(cfg)

	store := sharedPostgres(t)

	tc := &TestContainer{
		Config:            cfg,
		Store:             store,
		Executor:          transfer.NewExecutor(store),
		EventPublisher:    messaging.NewEventCapture(),
		IdentityExtractor: authctx.NewJWTExtractor(JWTSecret),
	}
	tc.Router = SetupTestRouter(tc)
	return tc
}

// NewTestContainerWithCache is identical to NewTestContainer but also
// wires the given Redis-backed replay cache, for tests exercising the
// idempotent-replay fast path.
func NewTestContainerWithCache(t *testing.T, cache *rediscache.Cache) *TestContainer {
	tc := NewTestContainer(t)
	tc.ReplayCache = cache
	tc.Router = SetupTestRouter(tc)
	return tc
}
