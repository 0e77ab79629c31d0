package account

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbank/transfer-engine/test/integration/testenv"
)

func TestTransferSucceeds(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	from := testenv.CreateAccount(t, router, token, 1000)
	to := testenv.CreateAccount(t, router, token, 0)

	resp := testenv.Transfer(router, token, "transfer-success-1", from, to, 300)
	require.Equal(t, http.StatusOK, resp.Code)

	var result map[string]interface{}
	testenv.DecodeBody(t, resp, &result)
	assert.Equal(t, "SUCCEEDED", result["status"])
	assert.Equal(t, float64(300), result["amount"])

	assert.Equal(t, float64(700), testenv.GetAccount(t, router, token, from)["balance"])
	assert.Equal(t, float64(300), testenv.GetAccount(t, router, token, to)["balance"])
}

func TestTransferRejectsInsufficientFunds(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	from := testenv.CreateAccount(t, router, token, 100)
	to := testenv.CreateAccount(t, router, token, 0)

	resp := testenv.Transfer(router, token, "transfer-insufficient-1", from, to, 500)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	var result map[string]interface{}
	testenv.DecodeBody(t, resp, &result)
	assert.Equal(t, "REJECTED", result["status"])
	assert.Equal(t, "INSUFFICIENT_FUNDS", result["reason"])

	assert.Equal(t, float64(100), testenv.GetAccount(t, router, token, from)["balance"])
}

func TestTransferRejectsNonexistentDestination(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	from := testenv.CreateAccount(t, router, token, 1000)

	resp := testenv.Transfer(router, token, "transfer-no-dest-1", from, uuid.New(), 100)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	var result map[string]interface{}
	testenv.DecodeBody(t, resp, &result)
	assert.Equal(t, "TO_ACCOUNT_NOT_FOUND", result["reason"])

	assert.Equal(t, float64(1000), testenv.GetAccount(t, router, token, from)["balance"])
}

func TestTransferRejectsNonexistentSource(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	to := testenv.CreateAccount(t, router, token, 0)

	resp := testenv.Transfer(router, token, "transfer-no-src-1", uuid.New(), to, 100)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	var result map[string]interface{}
	testenv.DecodeBody(t, resp, &result)
	assert.Equal(t, "FROM_ACCOUNT_NOT_FOUND", result["reason"])
}

func TestTransferRejectsFrozenSource(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	from := testenv.CreateAccount(t, router, token, 1000)
	to := testenv.CreateAccount(t, router, token, 0)
	require.Equal(t, http.StatusOK, testenv.FreezeAccount(router, token, from).Code)

	resp := testenv.Transfer(router, token, "transfer-frozen-src-1", from, to, 100)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	var result map[string]interface{}
	testenv.DecodeBody(t, resp, &result)
	assert.Equal(t, "FROM_ACCOUNT_NOT_ACTIVE", result["reason"])
}

func TestTransferRejectsFrozenDestination(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	from := testenv.CreateAccount(t, router, token, 1000)
	to := testenv.CreateAccount(t, router, token, 0)
	require.Equal(t, http.StatusOK, testenv.FreezeAccount(router, token, to).Code)

	resp := testenv.Transfer(router, token, "transfer-frozen-dst-1", from, to, 100)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	var result map[string]interface{}
	testenv.DecodeBody(t, resp, &result)
	assert.Equal(t, "TO_ACCOUNT_NOT_ACTIVE", result["reason"])

	assert.Equal(t, float64(1000), testenv.GetAccount(t, router, token, from)["balance"])
}

func TestTransferRejectsNonPositiveAmount(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	from := testenv.CreateAccount(t, router, token, 1000)
	to := testenv.CreateAccount(t, router, token, 0)

	resp := testenv.Transfer(router, token, "transfer-zero-amount-1", from, to, 0)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var result map[string]interface{}
	testenv.DecodeBody(t, resp, &result)
	assert.Equal(t, "INVALID_AMOUNT", result["reason"])
}

func TestTransferRequiresIdempotencyKey(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	from := testenv.CreateAccount(t, router, token, 1000)
	to := testenv.CreateAccount(t, router, token, 0)

	resp := testenv.Transfer(router, token, "", from, to, 100)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTransferReplaysSameResultForRepeatedKey(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	from := testenv.CreateAccount(t, router, token, 1000)
	to := testenv.CreateAccount(t, router, token, 0)

	first := testenv.Transfer(router, token, "transfer-replay-1", from, to, 200)
	require.Equal(t, http.StatusOK, first.Code)

	second := testenv.Transfer(router, token, "transfer-replay-1", from, to, 200)
	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	// The second attempt must not have moved funds a second time.
	assert.Equal(t, float64(800), testenv.GetAccount(t, router, token, from)["balance"])
	assert.Equal(t, float64(200), testenv.GetAccount(t, router, token, to)["balance"])
}
