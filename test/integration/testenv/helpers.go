package testenv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// NewUserToken signs a JWT whose subject is a fresh random user id,
// matching what authctx.JWTExtractor expects, and returns both.
func NewUserToken(t *testing.T) (uuid.UUID, string) {
	userID := uuid.New()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(JWTSecret))
	require.NoError(t, err)
	return userID, signed
}

// CreateAccount opens an account for bearerToken's user with the given
// opening balance and returns its account id.
func CreateAccount(t *testing.T, r *gin.Engine, bearerToken string, openingBalance int64) uuid.UUID {
	body, _ := json.Marshal(map[string]interface{}{"openingBalance": openingBalance})

	req := httptest.NewRequest("POST", "/accounts", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code, "create account: %s", resp.Body.String())

	var result struct {
		AccountID uuid.UUID `json:"accountId"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	return result.AccountID
}

// GetAccount fetches an account and decodes its JSON response body.
func GetAccount(t *testing.T, r *gin.Engine, bearerToken string, accountID uuid.UUID) map[string]interface{} {
	req := httptest.NewRequest("GET", "/accounts/"+accountID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, "get account: %s", resp.Body.String())

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	return result
}

// Transfer posts a transfer request and returns the raw response.
// idempotencyKey is a readable label: a non-empty label is sent as a UUID
// derived from it (the same label always yields the same key), and an empty
// label sends no Idempotency-Key header.
func Transfer(r *gin.Engine, bearerToken, idempotencyKey string, fromID, toID uuid.UUID, amount int64) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]interface{}{
		"fromAccountId": fromID,
		"toAccountId":   toID,
		"amount":        amount,
	})

	req := httptest.NewRequest("POST", "/transfers", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", uuid.NewSHA1(uuid.NameSpaceOID, []byte(idempotencyKey)).String())
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

// FreezeAccount posts a freeze request for accountID.
func FreezeAccount(r *gin.Engine, bearerToken string, accountID uuid.UUID) *httptest.ResponseRecorder {
	return postNoBody(r, bearerToken, fmt.Sprintf("/accounts/%s/freeze", accountID))
}

// UnfreezeAccount posts an unfreeze request for accountID.
func UnfreezeAccount(r *gin.Engine, bearerToken string, accountID uuid.UUID) *httptest.ResponseRecorder {
	return postNoBody(r, bearerToken, fmt.Sprintf("/accounts/%s/unfreeze", accountID))
}

func postNoBody(r *gin.Engine, bearerToken, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

// DecodeBody unmarshals a recorded response body into v.
func DecodeBody(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), v))
}
