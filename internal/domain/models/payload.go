package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ResponseVersion is embedded in every stored response payload so a future
// schema change can be detected on replay.
const ResponseVersion = 1

// SucceededPayload is the canonical response body for a committed transfer.
// Field order is fixed by struct declaration, not map iteration, so two
// marshals of the same transaction produce byte-identical JSON — required
// for idempotent replay to return the exact original response.
type SucceededPayload struct {
	Version       int       `json:"version"`
	Success       bool      `json:"success"`
	TransactionID uuid.UUID `json:"transactionId"`
	Status        string    `json:"status"`
	FromAccountID uuid.UUID `json:"fromAccountId"`
	ToAccountID   uuid.UUID `json:"toAccountId"`
	Amount        int64     `json:"amount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// RejectedPayload is the canonical response body for a domain rejection.
type RejectedPayload struct {
	Version       int       `json:"version"`
	Success       bool      `json:"success"`
	TransactionID uuid.UUID `json:"transactionId"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"createdAt"`
}

// MarshalSucceeded renders the stable-order succeeded payload.
func MarshalSucceeded(p SucceededPayload) ([]byte, error) {
	p.Version = ResponseVersion
	p.Success = true
	return json.Marshal(p)
}

// MarshalRejected renders the stable-order rejected payload.
func MarshalRejected(p RejectedPayload) ([]byte, error) {
	p.Version = ResponseVersion
	p.Success = false
	return json.Marshal(p)
}
