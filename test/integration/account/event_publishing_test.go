package account

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbank/transfer-engine/test/integration/testenv"
)

func TestTransferCompletedEventPublished(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	from := testenv.CreateAccount(t, router, token, 3000)
	to := testenv.CreateAccount(t, router, token, 0)

	resp := testenv.Transfer(router, token, "event-completed-1", from, to, 1200)
	require.Equal(t, http.StatusOK, resp.Code)

	events := container.EventPublisher.GetTransferCompletedEvents()
	require.Len(t, events, 1)
	event := events[0]
	assert.Equal(t, from, event.FromAccountID)
	assert.Equal(t, to, event.ToAccountID)
	assert.Equal(t, int64(1200), event.Amount)
	assert.False(t, event.Timestamp.IsZero())
}

func TestTransferRejectedEventPublished(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	from := testenv.CreateAccount(t, router, token, 100)
	to := testenv.CreateAccount(t, router, token, 0)

	resp := testenv.Transfer(router, token, "event-rejected-1", from, to, 5000)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	events := container.EventPublisher.GetTransferRejectedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "INSUFFICIENT_FUNDS", events[0].Reason)
	assert.False(t, events[0].Timestamp.IsZero())

	assert.Len(t, container.EventPublisher.GetTransferCompletedEvents(), 0)
}

func TestAccountStatusChangedEventPublishedOnFreeze(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	accountID := testenv.CreateAccount(t, router, token, 0)
	container.EventPublisher.Reset()

	require.Equal(t, http.StatusOK, testenv.FreezeAccount(router, token, accountID).Code)

	events := container.EventPublisher.GetAccountStatusChangedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, accountID, events[0].AccountID)
	assert.Equal(t, "FROZEN", events[0].Status)
}

func TestEventCaptureResetClearsAllBuckets(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	from := testenv.CreateAccount(t, router, token, 1000)
	to := testenv.CreateAccount(t, router, token, 0)
	require.Equal(t, http.StatusOK, testenv.Transfer(router, token, "event-reset-1", from, to, 100).Code)
	require.Len(t, container.EventPublisher.GetTransferCompletedEvents(), 1)

	container.EventPublisher.Reset()

	assert.Len(t, container.EventPublisher.GetTransferCompletedEvents(), 0)
	assert.Len(t, container.EventPublisher.GetTransferRejectedEvents(), 0)
	assert.Len(t, container.EventPublisher.GetTransferFailedEvents(), 0)
	assert.Len(t, container.EventPublisher.GetAccountStatusChangedEvents(), 0)
}
