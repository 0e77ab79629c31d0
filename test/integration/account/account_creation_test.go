package account

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbank/transfer-engine/test/integration/testenv"
)

func TestCreateAccountWithOpeningBalance(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	accountID := testenv.CreateAccount(t, router, token, 5000)
	result := testenv.GetAccount(t, router, token, accountID)

	assert.Equal(t, "ACTIVE", result["status"])
	assert.Equal(t, float64(5000), result["balance"])
}

func TestCreateAccountRejectsNegativeOpeningBalance(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	body, _ := json.Marshal(map[string]interface{}{"openingBalance": -100})
	req := httptest.NewRequest("POST", "/accounts", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateAccountRequiresAuthentication(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()

	body, _ := json.Marshal(map[string]interface{}{"openingBalance": 0})
	req := httptest.NewRequest("POST", "/accounts", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
}
