// Command reconciler runs the orphan-PENDING sweep on a cron schedule.
// It is a separate binary from cmd/api because the sweep is an
// out-of-request-path maintenance job, not something the API process
// should run inline.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ledgerbank/transfer-engine/internal/infrastructure/database/postgres"
	"github.com/ledgerbank/transfer-engine/internal/infrastructure/reconcile"
	"github.com/ledgerbank/transfer-engine/internal/pkg/config"
	"github.com/ledgerbank/transfer-engine/internal/pkg/logging"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg)

	store, err := postgres.New(context.Background(), postgres.FromAppConfig(cfg.Database))
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer store.Close()

	sweeper := reconcile.NewSweeper(store.Pool, cfg.Reconciler.OrphanAfter)
	scheduler, err := reconcile.NewScheduler(cfg.Reconciler.Schedule, sweeper)
	if err != nil {
		log.Fatalf("failed to schedule reconciler: %v", err)
	}

	scheduler.Start()
	logging.Info("reconciler started", map[string]interface{}{
		"schedule":     cfg.Reconciler.Schedule,
		"orphan_after": cfg.Reconciler.OrphanAfter.String(),
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info("reconciler shutting down", nil)
	scheduler.Stop()
}
