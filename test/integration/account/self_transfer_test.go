package account

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbank/transfer-engine/test/integration/testenv"
)

func TestTransferToSameAccountIsRejected(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	accountID := testenv.CreateAccount(t, router, token, 1000)

	resp := testenv.Transfer(router, token, "self-transfer-1", accountID, accountID, 500)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var result map[string]interface{}
	testenv.DecodeBody(t, resp, &result)
	assert.Equal(t, "SAME_ACCOUNT", result["reason"])

	assert.Equal(t, float64(1000), testenv.GetAccount(t, router, token, accountID)["balance"])
}
