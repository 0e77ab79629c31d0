// Package ledger provides read-side invariant checks over the append-only
// ledger_entries table. It never mutates state: it only compares an
// account's recorded balance against what its ledger postings say the
// balance should be, for callers (the reconciler, ad hoc auditing) that
// need to detect drift rather than prevent it.
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Mismatch describes an account whose current_balance has drifted from
// its opening_balance plus the sum of its ledger_entries postings.
type Mismatch struct {
	AccountID       uuid.UUID
	RecordedBalance int64
	LedgerBalance   int64
}

func (m Mismatch) Error() string {
	return fmt.Sprintf("account %s: recorded balance %d, ledger balance %d",
		m.AccountID, m.RecordedBalance, m.LedgerBalance)
}

// BalanceMatchesLedger reports whether accountID's current_balance equals
// its opening_balance plus the sum of its ledger_entries. A false result
// is always accompanied by a non-nil *Mismatch describing the divergence.
func BalanceMatchesLedger(ctx context.Context, pool *pgxpool.Pool, accountID uuid.UUID) (bool, *Mismatch, error) {
	var recorded, opening, postings int64
	err := pool.QueryRow(ctx, `
		SELECT a.current_balance, a.opening_balance, COALESCE(SUM(le.amount), 0)
		  FROM accounts a
		  LEFT JOIN ledger_entries le ON le.account_id = a.account_id
		 WHERE a.account_id = $1
		 GROUP BY a.current_balance, a.opening_balance`, accountID).
		Scan(&recorded, &opening, &postings)
	if err != nil {
		return false, nil, fmt.Errorf("ledger: load account totals: %w", err)
	}

	ledgerBalance := opening + postings
	if recorded == ledgerBalance {
		return true, nil, nil
	}
	return false, &Mismatch{AccountID: accountID, RecordedBalance: recorded, LedgerBalance: ledgerBalance}, nil
}
