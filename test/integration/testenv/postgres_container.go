// Package testenv provides a shared PostgreSQL testcontainer and a
// fully wired HTTP router for integration tests.
package testenv

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	dbpostgres "github.com/ledgerbank/transfer-engine/internal/infrastructure/database/postgres"
)

const migrationsScript = "../../../internal/infrastructure/database/postgres/migrations/000001_init_schema.up.sql"

var (
	sharedContainer *postgres.PostgresContainer
	sharedStore     *dbpostgres.Store
	containerOnce   sync.Once
	containerErr    error
)

type postgresConfig struct {
	Database string
	Username string
	Password string
	Image    string
}

func defaultPostgresConfig() postgresConfig {
	return postgresConfig{
		Database: "ledger",
		Username: "ledger",
		Password: "ledger_test_pass",
		Image:    "postgres:16-alpine",
	}
}

// sharedPostgres starts (once) a PostgreSQL testcontainer pre-seeded with
// the schema migration, and returns a Store wired to it. The container
// and store are reused across every test in the process.
func sharedPostgres(t *testing.T) *dbpostgres.Store {
	containerOnce.Do(func() {
		ctx := context.Background()
		cfg := defaultPostgresConfig()

		container, err := postgres.Run(ctx,
			cfg.Image,
			postgres.WithDatabase(cfg.Database),
			postgres.WithUsername(cfg.Username),
			postgres.WithPassword(cfg.Password),
			postgres.WithInitScripts(migrationsScript),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			containerErr = fmt.Errorf("failed to start postgres testcontainer: %w", err)
			return
		}
		sharedContainer = container

		host, err := container.Host(ctx)
		if err != nil {
			containerErr = fmt.Errorf("failed to get container host: %w", err)
			return
		}
		port, err := container.MappedPort(ctx, "5432")
		if err != nil {
			containerErr = fmt.Errorf("failed to get container port: %w", err)
			return
		}

		store, err := dbpostgres.New(ctx, &dbpostgres.Config{
			Host:              host,
			Port:              port.Int(),
			Database:          cfg.Database,
			User:              cfg.Username,
			Password:          cfg.Password,
			SSLMode:           "disable",
			MaxOpenConns:      25,
			MaxIdleConns:      5,
			ConnMaxLifetime:   "30m",
			ConnMaxIdleTime:   "5m",
			HealthCheckPeriod: "1m",
		})
		if err != nil {
			containerErr = fmt.Errorf("failed to create store: %w", err)
			return
		}
		sharedStore = store
	})

	require.NoError(t, containerErr, "failed to initialize shared postgres testcontainer")

	require.NoError(t, sharedStore.Reset(context.Background()), "failed to reset database between tests")
	return sharedStore
}
