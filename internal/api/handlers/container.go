package handlers

import (
	"github.com/ledgerbank/transfer-engine/internal/domain/transfer"
	"github.com/ledgerbank/transfer-engine/internal/infrastructure/cache/redis"
	"github.com/ledgerbank/transfer-engine/internal/infrastructure/database/postgres"
	"github.com/ledgerbank/transfer-engine/internal/infrastructure/messaging"
	"github.com/ledgerbank/transfer-engine/internal/pkg/authctx"
)

// HandlerDependencies is the interface handlers depend on, breaking the
// circular dependency between handlers and the composition root.
type HandlerDependencies interface {
	GetStore() *postgres.Store
	GetExecutor() *transfer.Executor
	GetEventPublisher() messaging.EventPublisher
	GetIdentityExtractor() authctx.Extractor
	// GetReplayCache returns the idempotent-replay cache, or nil when
	// Redis is disabled — callers must treat a nil cache as an
	// unconditional miss.
	GetReplayCache() *redis.Cache
}
