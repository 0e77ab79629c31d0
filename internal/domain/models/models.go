// Package models defines the five persisted entities of the ledger: users,
// accounts, transactions, ledger entries, and audit logs.
package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus is the lifecycle state of an Account.
type AccountStatus string

const (
	AccountActive     AccountStatus = "ACTIVE"
	AccountFrozen     AccountStatus = "FROZEN"
	AccountTerminated AccountStatus = "TERMINATED"
)

// TransactionStatus is the terminal or transient state of a Transaction.
// PENDING is transient and never visible to a reader outside the executor
// on the committed path.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "PENDING"
	TransactionSucceeded TransactionStatus = "SUCCEEDED"
	TransactionRejected  TransactionStatus = "REJECTED"
	TransactionFailed    TransactionStatus = "FAILED"
)

// TransactionType distinguishes the three reserved transaction shapes.
// Only TRANSFER is implemented by the transfer executor.
type TransactionType string

const (
	TransactionTransfer   TransactionType = "TRANSFER"
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
)

// AuditActorType identifies who performed an audited action.
type AuditActorType string

const (
	ActorUser    AuditActorType = "USER"
	ActorService AuditActorType = "SERVICE"
	ActorSystem  AuditActorType = "SYSTEM"
)

// AuditTargetType identifies what an audit row observes.
type AuditTargetType string

const (
	TargetAccount     AuditTargetType = "ACCOUNT"
	TargetTransaction AuditTargetType = "TRANSACTION"
	TargetSession     AuditTargetType = "SESSION"
	TargetUser        AuditTargetType = "USER"
)

// AuditOutcome is the observed result recorded by an audit row.
type AuditOutcome string

const (
	OutcomeAttempted AuditOutcome = "ATTEMPTED"
	OutcomeSucceeded AuditOutcome = "SUCCEEDED"
	OutcomeRejected  AuditOutcome = "REJECTED"
	OutcomeFailed    AuditOutcome = "FAILED"
)

// TransferServiceActor is the fixed actor_id used for SYSTEM-authored audit
// rows written by the failure translator (spec §4.7).
const TransferServiceActor = "TRANSFER_SERVICE"

// User is an identity. The transfer executor never mutates it.
type User struct {
	UserID       uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Account is a holder of value, owned by exactly one User. OpeningBalance
// is fixed at creation and never mutated again; together with the
// account's ledger_entries it lets internal/domain/ledger reconstruct
// CurrentBalance independently of what the accounts row itself claims.
type Account struct {
	AccountID      uuid.UUID
	UserID         uuid.UUID
	Status         AccountStatus
	OpeningBalance int64
	CurrentBalance int64
	CreatedAt      time.Time
	FrozenAt       *time.Time
	TerminatedAt   *time.Time
}

// Transaction is a recorded intent to move value and its outcome.
type Transaction struct {
	TransactionID    uuid.UUID
	Status           TransactionStatus
	Type             TransactionType
	InitiatorUserID  uuid.UUID
	FromAccountID    *uuid.UUID
	ToAccountID      *uuid.UUID
	Amount           int64
	IdempotencyKey   *uuid.UUID
	ResponsePayload  []byte
	FailureReason    *string
	CreatedAt        time.Time
}

// LedgerEntry is a signed posting against one account, atomic with its
// transaction. Negative amounts are debits, positive amounts are credits.
type LedgerEntry struct {
	LedgerEntryID uuid.UUID
	Amount        int64
	AccountID     uuid.UUID
	TransactionID uuid.UUID
	CreatedAt     time.Time
}

// AuditLog is an append-only observation. Never updated, never deleted.
type AuditLog struct {
	AuditLogID uuid.UUID
	ActorType  AuditActorType
	ActorID    string
	Action     string
	TargetType AuditTargetType
	TargetID   *string
	Outcome    AuditOutcome
	Reason     *string
	CreatedAt  time.Time
}
