package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbank/transfer-engine/internal/domain/models"
	"github.com/ledgerbank/transfer-engine/internal/infrastructure/database/postgres"
	"github.com/ledgerbank/transfer-engine/test/integration/testenv"
)

func TestCreateAndGetAccount(t *testing.T) {
	container := testenv.NewTestContainer(t)
	store := container.GetStore()
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	account, err := store.CreateAccount(ctx, user.UserID, 5000)
	require.NoError(t, err)
	assert.Equal(t, models.AccountActive, account.Status)
	assert.Equal(t, int64(5000), account.CurrentBalance)

	fetched, err := store.GetAccount(ctx, account.AccountID)
	require.NoError(t, err)
	assert.Equal(t, account.AccountID, fetched.AccountID)
	assert.Equal(t, user.UserID, fetched.UserID)
	assert.Equal(t, int64(5000), fetched.CurrentBalance)
	assert.False(t, fetched.CreatedAt.IsZero())
}

func TestGetAccountNotFound(t *testing.T) {
	container := testenv.NewTestContainer(t)
	store := container.GetStore()
	ctx := context.Background()

	_, err := store.GetAccount(ctx, uuid.New())
	assert.ErrorIs(t, err, postgres.ErrAccountNotFound)
}

func TestSetAccountStatusFreezeAndUnfreeze(t *testing.T) {
	container := testenv.NewTestContainer(t)
	store := container.GetStore()
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "bob", "hash")
	require.NoError(t, err)
	account, err := store.CreateAccount(ctx, user.UserID, 0)
	require.NoError(t, err)

	require.NoError(t, store.SetAccountStatus(ctx, account.AccountID, models.AccountFrozen))
	frozen, err := store.GetAccount(ctx, account.AccountID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountFrozen, frozen.Status)
	assert.NotNil(t, frozen.FrozenAt)

	require.NoError(t, store.SetAccountStatus(ctx, account.AccountID, models.AccountActive))
	active, err := store.GetAccount(ctx, account.AccountID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountActive, active.Status)
	assert.Nil(t, active.FrozenAt)
}

func TestResetTruncatesEveryTable(t *testing.T) {
	container := testenv.NewTestContainer(t)
	store := container.GetStore()
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "charlie", "hash")
	require.NoError(t, err)
	account, err := store.CreateAccount(ctx, user.UserID, 100)
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx))

	_, err = store.GetAccount(ctx, account.AccountID)
	assert.ErrorIs(t, err, postgres.ErrAccountNotFound)
}
