package transfer

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/ledgerbank/transfer-engine/internal/pkg/errors"
)

// These cover §4.1's pre-admission checks, which return before the
// executor ever opens a transaction: Execute(ctx, req) is safe to call
// against an Executor with a nil DB for these cases.

func TestExecuteRejectsNonPositiveAmount(t *testing.T) {
	e := NewExecutor(nil)
	result, err := e.Execute(context.Background(), Request{
		InitiatorUserID: uuid.New(),
		FromAccountID:   uuid.New(),
		ToAccountID:     uuid.New(),
		Amount:          0,
		IdempotencyKey:  uuid.New(),
	})

	require.NoError(t, err)
	require.Equal(t, OutcomeRejected, result.Kind)
	assert.Equal(t, string(apierrors.CodeInvalidAmount), result.Rejected.Reason)
	assert.Equal(t, uuid.Nil, result.Rejected.TransactionID)
}

func TestExecuteRejectsNegativeAmount(t *testing.T) {
	e := NewExecutor(nil)
	result, err := e.Execute(context.Background(), Request{
		InitiatorUserID: uuid.New(),
		FromAccountID:   uuid.New(),
		ToAccountID:     uuid.New(),
		Amount:          -500,
		IdempotencyKey:  uuid.New(),
	})

	require.NoError(t, err)
	require.Equal(t, OutcomeRejected, result.Kind)
	assert.Equal(t, string(apierrors.CodeInvalidAmount), result.Rejected.Reason)
}

func TestExecuteRejectsSameAccount(t *testing.T) {
	account := uuid.New()
	e := NewExecutor(nil)
	result, err := e.Execute(context.Background(), Request{
		InitiatorUserID: uuid.New(),
		FromAccountID:   account,
		ToAccountID:     account,
		Amount:          100,
		IdempotencyKey:  uuid.New(),
	})

	require.NoError(t, err)
	require.Equal(t, OutcomeRejected, result.Kind)
	assert.Equal(t, string(apierrors.CodeSameAccount), result.Rejected.Reason)
}

func TestExecuteRejectsMissingIdempotencyKey(t *testing.T) {
	e := NewExecutor(nil)
	result, err := e.Execute(context.Background(), Request{
		InitiatorUserID: uuid.New(),
		FromAccountID:   uuid.New(),
		ToAccountID:     uuid.New(),
		Amount:          100,
		IdempotencyKey:  uuid.Nil,
	})

	require.NoError(t, err)
	require.Equal(t, OutcomeRejected, result.Kind)
	assert.Equal(t, string(apierrors.CodeMissingIdempotencyKey), result.Rejected.Reason)
}

// validatePreconditions is checked in priority order: amount, then same
// account, then idempotency key. A request failing more than one check
// should surface the first.
func TestValidatePreconditionsPriorityOrder(t *testing.T) {
	account := uuid.New()
	req := Request{
		InitiatorUserID: uuid.New(),
		FromAccountID:   account,
		ToAccountID:     account,
		Amount:          0,
		IdempotencyKey:  uuid.Nil,
	}

	rejected := validatePreconditions(req)
	require.NotNil(t, rejected)
	assert.Equal(t, string(apierrors.CodeInvalidAmount), rejected.Reason)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(assert.AnError))
}
