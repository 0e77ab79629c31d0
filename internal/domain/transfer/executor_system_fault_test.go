package transfer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbank/transfer-engine/internal/domain/models"
	apierrors "github.com/ledgerbank/transfer-engine/internal/pkg/errors"
)

// fakeTx is a hand-rolled pgx.Tx standing in for a real transaction, so the
// §4.7 compensating-write path can be exercised without a database: it
// dispatches on the literal SQL the executor issues and records every Exec
// call for the test to inspect afterward.
type fakeTx struct {
	execLog []execCall
}

type execCall struct {
	sql  string
	args []any
}

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

func (f *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execLog = append(f.execLog, execCall{sql: sql, args: args})
	switch {
	case strings.Contains(sql, "current_balance - $1"):
		return pgconn.NewCommandTag("UPDATE 1"), nil
	case strings.Contains(sql, "current_balance + $1"):
		// The credit predicate matches zero rows: `to` stopped being
		// ACTIVE between admission and here.
		return pgconn.NewCommandTag("UPDATE 0"), nil
	default:
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
}

func (f *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "response_payload"):
		// resolveIdempotency: no prior attempt under this key.
		return fakeRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
	case strings.Contains(sql, "SELECT transaction_id, status FROM transactions"):
		// compensate's lookup: the admitting transaction already rolled
		// back, so nothing is visible here either.
		return fakeRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
	case strings.Contains(sql, "FROM accounts WHERE account_id"):
		return fakeRow{scan: func(dest ...any) error {
			if status, ok := dest[0].(*string); ok {
				*status = string(models.AccountActive)
			}
			return nil
		}}
	default:
		return fakeRow{scan: func(dest ...any) error {
			return fmt.Errorf("fakeTx: unexpected QueryRow sql: %s", sql)
		}}
	}
}

func (f *fakeTx) Commit(ctx context.Context) error   { return nil }
func (f *fakeTx) Rollback(ctx context.Context) error { return nil }

func (f *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) {
	panic("fakeTx: nested transactions not used by the executor")
}
func (f *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("fakeTx: CopyFrom not used by the executor")
}
func (f *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("fakeTx: SendBatch not used by the executor")
}
func (f *fakeTx) LargeObjects() pgx.LargeObjects {
	panic("fakeTx: LargeObjects not used by the executor")
}
func (f *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("fakeTx: Prepare not used by the executor")
}
func (f *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("fakeTx: Query not used by the executor")
}
func (f *fakeTx) Conn() *pgx.Conn {
	panic("fakeTx: Conn not used by the executor")
}

// fakeDB hands out a fresh fakeTx per Begin, mirroring how the real Store
// hands the admitting transaction and the compensating write their own
// independent connections.
type fakeDB struct {
	txs []*fakeTx
}

func (f *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	tx := &fakeTx{}
	f.txs = append(f.txs, tx)
	return tx, nil
}

// TestExecuteCompensatesOnCreditFailedRollback covers §8 scenario 6 and the
// bug class §9 flags explicitly: the debit succeeds, the credit's
// conditional UPDATE matches zero rows (the destination stopped being
// ACTIVE mid-flight), the admitting transaction rolls back undoing the
// debit, and the compensating writer persists a FAILED transaction plus a
// SYSTEM-authored audit row.
func TestExecuteCompensatesOnCreditFailedRollback(t *testing.T) {
	db := &fakeDB{}
	e := NewExecutor(db)

	req := Request{
		InitiatorUserID: uuid.New(),
		FromAccountID:   uuid.New(),
		ToAccountID:     uuid.New(),
		Amount:          500,
		IdempotencyKey:  uuid.New(),
	}

	result, err := e.Execute(context.Background(), req)
	require.Nil(t, result)
	require.Error(t, err)

	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok, "Execute must surface a SystemFault as *apierrors.APIError")
	assert.Equal(t, apierrors.CodeSystemFailure, apiErr.Code)
	assert.Contains(t, apiErr.Message, string(apierrors.CodeCreditFailedRollback))

	require.Len(t, db.txs, 2, "one transaction for the admitting attempt, one for the compensating write")
	compensating := db.txs[1]

	var failedRow, systemAudit bool
	for _, call := range compensating.execLog {
		if strings.Contains(call.sql, "VALUES ($1, 'FAILED'") {
			failedRow = true
			require.NotEmpty(t, call.args)
			assert.Equal(t, string(apierrors.CodeCreditFailedRollback), call.args[len(call.args)-1])
		}
		if strings.Contains(call.sql, "INSERT INTO audit_logs") {
			require.Len(t, call.args, 6)
			if call.args[1] == models.ActorSystem && call.args[4] == models.OutcomeFailed {
				systemAudit = true
			}
		}
	}
	assert.True(t, failedRow, "compensating write must insert a FAILED transaction row")
	assert.True(t, systemAudit, "compensating write must insert a SYSTEM-actor FAILED audit row")
}
