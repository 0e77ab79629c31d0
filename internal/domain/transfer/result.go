package transfer

import (
	"github.com/google/uuid"
)

// Outcome is the fixed enumeration of terminal shapes a transfer can
// produce. Exactly one of Succeeded, Rejected is populated for a given
// Result, selected by Kind. No Result carries OutcomeFault: a system fault
// is returned as Execute's error instead.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeRejected
	OutcomeFault
)

// Result is the executor's single enumerated return type (§9: "one
// enumerated Result type; faults reserved for true system errors").
// Domain rejections are values carried here, never Go errors — only a
// system fault is ever returned as a Go error from Execute, as the
// *apierrors.APIError that compensate builds from the SystemFault.
type Result struct {
	Kind Outcome

	// Populated when Kind == OutcomeSucceeded.
	Succeeded *SucceededResult
	// Populated when Kind == OutcomeRejected.
	Rejected *RejectedResult
}

// SucceededResult mirrors the committed success payload.
type SucceededResult struct {
	TransactionID uuid.UUID
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        int64
	Payload       []byte
}

// RejectedResult mirrors the committed rejection payload. TransactionID is
// the zero UUID for input faults, which are rejected before admission and
// never receive a transactions row.
type RejectedResult struct {
	TransactionID uuid.UUID
	Reason        string
	Payload       []byte
}

// SystemFault is the executor's internal fault value. Execute does not
// return it directly: compensate records Reason as the FAILED row's
// failure_reason and returns apierrors.NewSystemFailure(Reason).
type SystemFault struct {
	Reason string
	Err    error
}

func (f *SystemFault) Error() string {
	if f.Err != nil {
		return f.Reason + ": " + f.Err.Error()
	}
	return f.Reason
}

func (f *SystemFault) Unwrap() error {
	return f.Err
}
