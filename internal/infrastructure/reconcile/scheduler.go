package reconcile

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/ledgerbank/transfer-engine/internal/pkg/logging"
)

// Scheduler runs a Sweeper on a cron schedule. It is only ever
// constructed by cmd/reconciler — never inline in the request path.
type Scheduler struct {
	cron    *cron.Cron
	sweeper *Sweeper
}

// NewScheduler parses schedule (standard 5-field cron syntax) and
// registers the sweep job against sweeper.
func NewScheduler(schedule string, sweeper *Sweeper) (*Scheduler, error) {
	c := cron.New()
	s := &Scheduler{cron: c, sweeper: sweeper}

	if _, err := c.AddFunc(schedule, s.runOnce); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) runOnce() {
	swept, err := s.sweeper.Run(context.Background())
	if err != nil {
		logging.Error("reconciler sweep failed", err, nil)
		return
	}
	if swept > 0 {
		logging.Info("reconciler swept orphan transactions", map[string]interface{}{"count": swept})
	}
}

// Start begins the cron scheduler in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for any running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
