// Package reconcile implements the optional orphan-PENDING sweep. The
// core transfer executor never leaves a committed row PENDING; this
// exists only to clean up rows abandoned mid-flight by a crashed process
// (one that failed between admit and the original transaction's commit or
// rollback, so §4.7's compensating write never ran).
package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerbank/transfer-engine/internal/domain/ledger"
	"github.com/ledgerbank/transfer-engine/internal/domain/models"
	"github.com/ledgerbank/transfer-engine/internal/pkg/logging"
)

// OrphanPendingReason is the fixed failure_reason the sweep writes.
const OrphanPendingReason = "ORPHAN_PENDING_SWEEP"

// orphan is a PENDING transfer old enough to sweep, with the two accounts
// it names — needed afterward to re-check the balance-vs-ledger invariant
// on both, since a crash mid-flight is exactly the scenario that invariant
// exists to catch.
type orphan struct {
	transactionID uuid.UUID
	fromAccountID uuid.UUID
	toAccountID   uuid.UUID
}

// Sweeper finds PENDING transactions older than OrphanAfter and fails them.
type Sweeper struct {
	pool        *pgxpool.Pool
	orphanAfter time.Duration
}

// NewSweeper builds a Sweeper over a pool and an age threshold.
func NewSweeper(pool *pgxpool.Pool, orphanAfter time.Duration) *Sweeper {
	return &Sweeper{pool: pool, orphanAfter: orphanAfter}
}

// Run executes one sweep pass and returns the number of transactions failed.
func (s *Sweeper) Run(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.orphanAfter)

	rows, err := s.pool.Query(ctx, `
		SELECT transaction_id, from_account_id, to_account_id FROM transactions
		 WHERE status = 'PENDING' AND type = 'TRANSFER' AND created_at < $1
		 FOR UPDATE SKIP LOCKED`, cutoff)
	if err != nil {
		return 0, err
	}
	var orphans []orphan
	for rows.Next() {
		var o orphan
		if err := rows.Scan(&o.transactionID, &o.fromAccountID, &o.toAccountID); err != nil {
			rows.Close()
			return 0, err
		}
		orphans = append(orphans, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	swept := 0
	for _, o := range orphans {
		if err := s.failOne(ctx, o.transactionID); err != nil {
			logging.Error("reconciler: failed to sweep orphan transaction", err, map[string]interface{}{
				"transaction_id": o.transactionID.String(),
			})
			continue
		}
		swept++
		s.auditInvariant(ctx, o.fromAccountID)
		s.auditInvariant(ctx, o.toAccountID)
	}
	return swept, nil
}

// auditInvariant re-checks the balance-vs-ledger invariant for an account
// named by a just-swept orphan, and logs any drift it finds. It never
// fails the sweep: this is observability, not a second correction pass.
func (s *Sweeper) auditInvariant(ctx context.Context, accountID uuid.UUID) {
	ok, mismatch, err := ledger.BalanceMatchesLedger(ctx, s.pool, accountID)
	if err != nil {
		logging.Error("reconciler: invariant check failed", err, map[string]interface{}{
			"account_id": accountID.String(),
		})
		return
	}
	if !ok {
		logging.Error("reconciler: balance-vs-ledger invariant violated", mismatch, map[string]interface{}{
			"account_id":       accountID.String(),
			"recorded_balance": mismatch.RecordedBalance,
			"ledger_balance":   mismatch.LedgerBalance,
		})
	}
}

func (s *Sweeper) failOne(ctx context.Context, txID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE transactions SET status = 'FAILED', failure_reason = $2
		 WHERE transaction_id = $1 AND status = 'PENDING'`,
		txID, OrphanPendingReason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Already resolved by the owning request between our SELECT and here.
		return nil
	}

	reason := OrphanPendingReason
	targetID := txID.String()
	if _, err := tx.Exec(ctx, `
		INSERT INTO audit_logs (audit_log_id, actor_type, actor_id, action, target_type, target_id, outcome, reason)
		VALUES ($1, $2, $3, 'TRANSFER', 'TRANSACTION', $4, $5, $6)`,
		uuid.New(), models.ActorSystem, models.TransferServiceActor, targetID, models.OutcomeFailed, reason); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
