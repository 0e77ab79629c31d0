package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbank/transfer-engine/internal/domain/ledger"
	"github.com/ledgerbank/transfer-engine/test/integration/testenv"
)

func TestBalanceMatchesLedgerAfterSuccessfulTransfer(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	store := container.GetStore()
	_, token := testenv.NewUserToken(t)

	from := testenv.CreateAccount(t, router, token, 1000)
	to := testenv.CreateAccount(t, router, token, 0)

	resp := testenv.Transfer(router, token, "ledger-invariant-1", from, to, 400)
	require.Equal(t, 200, resp.Code)

	ok, mismatch, err := ledger.BalanceMatchesLedger(context.Background(), store.Pool, from)
	require.NoError(t, err)
	assert.True(t, ok, "expected no mismatch, got %v", mismatch)

	ok, mismatch, err = ledger.BalanceMatchesLedger(context.Background(), store.Pool, to)
	require.NoError(t, err)
	assert.True(t, ok, "expected no mismatch, got %v", mismatch)
}

func TestBalanceMatchesLedgerDetectsDrift(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	store := container.GetStore()
	_, token := testenv.NewUserToken(t)
	ctx := context.Background()

	accountID := testenv.CreateAccount(t, router, token, 1000)

	// Simulate a drift an invariant check exists to catch: something wrote
	// directly to current_balance without a matching ledger_entries row.
	_, err := store.Pool.Exec(ctx, `UPDATE accounts SET current_balance = current_balance + 50 WHERE account_id = $1`, accountID)
	require.NoError(t, err)

	ok, mismatch, err := ledger.BalanceMatchesLedger(ctx, store.Pool, accountID)
	require.NoError(t, err)
	require.False(t, ok)
	require.NotNil(t, mismatch)
	assert.Equal(t, accountID, mismatch.AccountID)
	assert.Equal(t, int64(1050), mismatch.RecordedBalance)
	assert.Equal(t, int64(1000), mismatch.LedgerBalance)
}
