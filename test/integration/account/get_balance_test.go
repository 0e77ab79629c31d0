package account

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbank/transfer-engine/test/integration/testenv"
)

func TestGetAccountReturnsCurrentBalance(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	accountID := testenv.CreateAccount(t, router, token, 2500)
	result := testenv.GetAccount(t, router, token, accountID)

	assert.Equal(t, float64(2500), result["balance"])
	assert.Equal(t, accountID.String(), result["accountId"])
}

func TestGetAccountReflectsBalanceAfterTransfer(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	from := testenv.CreateAccount(t, router, token, 1000)
	to := testenv.CreateAccount(t, router, token, 0)

	resp := testenv.Transfer(router, token, "balance-reflect-1", from, to, 400)
	require.Equal(t, http.StatusOK, resp.Code)

	fromResult := testenv.GetAccount(t, router, token, from)
	toResult := testenv.GetAccount(t, router, token, to)
	assert.Equal(t, float64(600), fromResult["balance"])
	assert.Equal(t, float64(400), toResult["balance"])
}

func TestGetAccountNonexistentReturnsNotFound(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	req := httptest.NewRequest("GET", "/accounts/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusNotFound, resp.Code)
}
