// Package errors defines the API-facing error taxonomy: a small set of
// typed codes, each carrying the HTTP status the caller maps it to.
package errors

import "fmt"

// Code is a stable, machine-readable error identifier.
type Code string

// Input faults (§7): pre-transaction, never admitted.
const (
	CodeInvalidAmount          Code = "INVALID_AMOUNT"
	CodeSameAccount            Code = "SAME_ACCOUNT"
	CodeMissingIdempotencyKey  Code = "MISSING_IDEMPOTENCY_KEY"
	CodeMalformedIdempotencyKey Code = "MALFORMED_IDEMPOTENCY_KEY"
)

// Domain rejections (§7): admitted, committed as REJECTED.
const (
	CodeFromAccountNotFound   Code = "FROM_ACCOUNT_NOT_FOUND"
	CodeFromAccountNotActive  Code = "FROM_ACCOUNT_NOT_ACTIVE"
	CodeToAccountNotFound     Code = "TO_ACCOUNT_NOT_FOUND"
	CodeToAccountNotActive    Code = "TO_ACCOUNT_NOT_ACTIVE"
	CodeInsufficientFunds     Code = "INSUFFICIENT_FUNDS"
)

// Idempotent-replay conditions (§7): domain responses, not faults.
const (
	CodeInFlight            Code = "IN_FLIGHT"
	CodePreviousAttemptFailed Code = "PREVIOUS_ATTEMPT_FAILED"
)

// System failures (§7): rolled back, then FAILED-committed.
const (
	CodeCreditFailedRollback Code = "CREDIT_FAILED_ROLLBACK"
	CodeSystemFailure        Code = "TRANSFER_SYSTEM_FAILURE"
)

// APIError is the shape returned to HTTP clients.
type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInputFault builds a 400 input-fault error.
func NewInputFault(code Code, message string) *APIError {
	return &APIError{Code: code, Message: message, Status: 400}
}

// NewDomainRejection builds a 422 domain-rejection error carrying the
// executor's recorded reason as its message.
func NewDomainRejection(code Code, message string) *APIError {
	return &APIError{Code: code, Message: message, Status: 422}
}

// NewSystemFailure builds a 500 system-failure error.
func NewSystemFailure(reason string) *APIError {
	return &APIError{
		Code:    CodeSystemFailure,
		Message: fmt.Sprintf("TRANSFER_SYSTEM_FAILURE: %s", reason),
		Status:  500,
	}
}

// IsDomainRejectionCode reports whether a reason string produced by the
// executor is one of the fixed domain rejection codes of §7.
func IsDomainRejectionCode(reason string) bool {
	switch Code(reason) {
	case CodeFromAccountNotFound, CodeFromAccountNotActive,
		CodeToAccountNotFound, CodeToAccountNotActive,
		CodeInsufficientFunds:
		return true
	default:
		return false
	}
}
