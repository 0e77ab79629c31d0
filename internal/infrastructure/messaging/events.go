package messaging

import (
	"time"

	"github.com/google/uuid"
)

// TransferCompletedEvent represents a settled transfer, published after the
// executor's commit.
type TransferCompletedEvent struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	FromAccountID uuid.UUID `json:"from_account_id"`
	ToAccountID   uuid.UUID `json:"to_account_id"`
	Amount        int64     `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
}

// TransferRejectedEvent represents a rejected transfer. It is published
// after the executor's commit of the REJECTED state, and also for
// rejections that were never persisted (input faults carry the zero
// TransactionID).
type TransferRejectedEvent struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Reason        string    `json:"reason"`
	Timestamp     time.Time `json:"timestamp"`
}

// TransferFailedEvent represents a system-failure outcome. It is published
// whenever Execute returns an error, whether or not the compensating write
// of §4.7 committed; the handler leaves TransactionID unset.
type TransferFailedEvent struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Reason        string    `json:"reason"`
	Timestamp     time.Time `json:"timestamp"`
}

// AccountStatusChangedEvent represents a freeze/unfreeze transition, the
// only account mutation the HTTP surface exposes besides creation.
type AccountStatusChangedEvent struct {
	AccountID uuid.UUID `json:"account_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
