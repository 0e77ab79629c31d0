package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type Executor struct {
	client   *http.Client
	baseURL  string
	authToken string
}

func New(baseURL, authToken string) *Executor {
	return &Executor{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        1000,
				MaxIdleConnsPerHost: 100,
				MaxConnsPerHost:     100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:   baseURL,
		authToken: authToken,
	}
}

// CreateAccount opens an account with the given opening balance (minor
// units) and returns its UUID.
func (e *Executor) CreateAccount(ctx context.Context, openingBalance int64) (string, error) {
	payload := map[string]interface{}{
		"openingBalance": openingBalance,
	}

	respBody, err := e.post(ctx, "/accounts", "", payload)
	if err != nil {
		return "", err
	}

	var result struct {
		AccountID string `json:"accountId"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse create account response: %w", err)
	}
	return result.AccountID, nil
}

// Transfer posts a transfer, generating a fresh idempotency key per call
// so each simulated request is a distinct attempt.
func (e *Executor) Transfer(ctx context.Context, fromID, toID string, amount int64) error {
	payload := map[string]interface{}{
		"fromAccountId": fromID,
		"toAccountId":   toID,
		"amount":        amount,
	}
	_, err := e.post(ctx, "/transfers", uuid.NewString(), payload)
	return err
}

// GetBalance reads the current balance of an account (minor units).
func (e *Executor) GetBalance(ctx context.Context, accountID string) (int64, error) {
	resp, err := e.get(ctx, fmt.Sprintf("/accounts/%s", accountID))
	if err != nil {
		return 0, err
	}

	var result struct {
		Balance int64 `json:"balance"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return 0, fmt.Errorf("failed to parse account response: %w", err)
	}
	return result.Balance, nil
}

func (e *Executor) post(ctx context.Context, path, idempotencyKey string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Load-Test", "true")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	e.authenticate(req)

	return e.do(req)
}

func (e *Executor) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", e.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Load-Test", "true")
	e.authenticate(req)

	return e.do(req)
}

func (e *Executor) authenticate(req *http.Request) {
	if e.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+e.authToken)
	}
}

func (e *Executor) do(req *http.Request) ([]byte, error) {
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var respBody bytes.Buffer
	if _, err := respBody.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, respBody.String())
	}
	return respBody.Bytes(), nil
}
