// Package transfer implements the Transfer Executor: the single
// transactional procedure that admits, validates, and settles a transfer
// between two accounts, enforcing idempotent replay and the compensating
// write discipline on system fault.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ledgerbank/transfer-engine/internal/domain/models"
	apierrors "github.com/ledgerbank/transfer-engine/internal/pkg/errors"
	"github.com/ledgerbank/transfer-engine/internal/pkg/logging"
)

const uniqueViolation = "23505"

// Request is the validated input to Execute, matching §4.1.
type Request struct {
	InitiatorUserID uuid.UUID
	FromAccountID   uuid.UUID
	ToAccountID     uuid.UUID
	Amount          int64
	IdempotencyKey  uuid.UUID
}

// Executor is the Transfer Executor. It is stateless beyond its DB handle
// and is safe for concurrent use; all coordination happens in the
// database, per the concurrency model of spec §5.
type Executor struct {
	db DB
}

// NewExecutor builds an Executor over a DB (typically a *pgxpool.Pool).
func NewExecutor(db DB) *Executor {
	return &Executor{db: db}
}

// Execute runs the full transfer pipeline of §4.1-§4.7. It returns a
// non-nil error only for a SystemFault; Succeeded and Rejected are both
// carried inside Result.
func (e *Executor) Execute(ctx context.Context, req Request) (*Result, error) {
	if rejected := validatePreconditions(req); rejected != nil {
		return &Result{Kind: OutcomeRejected, Rejected: rejected}, nil
	}

	result, fault := e.executeAdmitted(ctx, req, 0)
	if fault != nil {
		return nil, e.compensate(ctx, req, fault)
	}
	return result, nil
}

// validatePreconditions enforces §4.1's pre-transaction checks. These are
// input faults: returned directly, no transactions row is ever created.
func validatePreconditions(req Request) *RejectedResult {
	switch {
	case req.Amount <= 0:
		return replayLikeResult(uuid.Nil, apierrors.CodeInvalidAmount)
	case req.FromAccountID == req.ToAccountID:
		return replayLikeResult(uuid.Nil, apierrors.CodeSameAccount)
	case req.IdempotencyKey == uuid.Nil:
		return replayLikeResult(uuid.Nil, apierrors.CodeMissingIdempotencyKey)
	default:
		return nil
	}
}

// replayLikeResult builds a RejectedResult whose payload is stamped with
// txID. Used both for pre-admission input faults (txID is Nil, no row was
// ever created) and for the IN_FLIGHT / PREVIOUS_ATTEMPT_FAILED replay
// conditions of §4.2 (txID is the already-admitted row's id).
func replayLikeResult(txID uuid.UUID, code apierrors.Code) *RejectedResult {
	payload, _ := models.MarshalRejected(models.RejectedPayload{
		TransactionID: txID,
		Status:        string(models.TransactionRejected),
		Reason:        string(code),
		CreatedAt:     time.Time{},
	})
	return &RejectedResult{TransactionID: txID, Reason: string(code), Payload: payload}
}

// executeAdmitted runs §4.2 through §4.6 inside one database transaction.
// attempt bounds the re-entry to §4.2 described in §4.3 to a single retry.
func (e *Executor) executeAdmitted(ctx context.Context, req Request, attempt int) (*Result, *SystemFault) {
	tx, err := e.db.Begin(ctx)
	if err != nil {
		return nil, &SystemFault{Reason: "BEGIN_FAILED", Err: err}
	}
	finished := false
	defer func() {
		if !finished {
			_ = tx.Rollback(ctx)
		}
	}()

	if replay, fault := resolveIdempotency(ctx, tx, req); replay != nil || fault != nil {
		if fault != nil {
			return nil, fault
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, &SystemFault{Reason: "COMMIT_FAILED", Err: err}
		}
		finished = true
		return replay, nil
	}

	txID, fault := admit(ctx, tx, req)
	if fault != nil {
		if isUniqueViolation(fault.Err) && attempt == 0 {
			_ = tx.Rollback(ctx)
			finished = true
			return e.executeAdmitted(ctx, req, attempt+1)
		}
		return nil, fault
	}

	reason, fault := checkEligibility(ctx, tx, req)
	if fault != nil {
		return nil, fault
	}
	if reason != "" {
		rejected, err := rejectAndCommit(ctx, tx, txID, req, reason)
		if err != nil {
			return nil, &SystemFault{Reason: "REJECT_COMMIT_FAILED", Err: err}
		}
		finished = true
		return &Result{Kind: OutcomeRejected, Rejected: rejected}, nil
	}

	debitRows, err := debit(ctx, tx, req)
	if err != nil {
		return nil, &SystemFault{Reason: "DEBIT_FAILED", Err: err}
	}
	if debitRows == 0 {
		rejected, err := rejectAndCommit(ctx, tx, txID, req, string(apierrors.CodeInsufficientFunds))
		if err != nil {
			return nil, &SystemFault{Reason: "REJECT_COMMIT_FAILED", Err: err}
		}
		finished = true
		return &Result{Kind: OutcomeRejected, Rejected: rejected}, nil
	}

	creditRows, err := credit(ctx, tx, req)
	if err != nil {
		return nil, &SystemFault{Reason: "CREDIT_FAILED", Err: err}
	}
	if creditRows == 0 {
		// The debit succeeded and moved funds out of `from`; the credit
		// predicate failed, meaning `to` stopped being ACTIVE between §4.4
		// and here. Rolling back here (via the deferred Rollback) undoes
		// the debit too, so no funds are ever lost mid-flight.
		return nil, &SystemFault{Reason: string(apierrors.CodeCreditFailedRollback)}
	}

	succeeded, err := settleAndCommit(ctx, tx, txID, req)
	if err != nil {
		return nil, &SystemFault{Reason: "SETTLE_COMMIT_FAILED", Err: err}
	}
	finished = true
	return &Result{Kind: OutcomeSucceeded, Succeeded: succeeded}, nil
}

// resolveIdempotency implements §4.2. A non-nil *Result means the caller
// should commit the (empty, read-only) transaction and return it as-is.
func resolveIdempotency(ctx context.Context, tx pgx.Tx, req Request) (*Result, *SystemFault) {
	var (
		id      uuid.UUID
		status  string
		payload []byte
	)
	row := tx.QueryRow(ctx, `
		SELECT transaction_id, status, response_payload
		  FROM transactions
		 WHERE initiator_user_id = $1 AND idempotency_key = $2 AND type = 'TRANSFER'`,
		req.InitiatorUserID, req.IdempotencyKey)
	err := row.Scan(&id, &status, &payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &SystemFault{Reason: "IDEMPOTENCY_LOOKUP_FAILED", Err: err}
	}

	switch models.TransactionStatus(status) {
	case models.TransactionSucceeded:
		var p models.SucceededPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, &SystemFault{Reason: "REPLAY_DECODE_FAILED", Err: err}
		}
		canonical, _ := models.MarshalSucceeded(p)
		return &Result{Kind: OutcomeSucceeded, Succeeded: &SucceededResult{
			TransactionID: id,
			FromAccountID: p.FromAccountID,
			ToAccountID:   p.ToAccountID,
			Amount:        p.Amount,
			Payload:       canonical,
		}}, nil
	case models.TransactionRejected:
		var p models.RejectedPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, &SystemFault{Reason: "REPLAY_DECODE_FAILED", Err: err}
		}
		canonical, _ := models.MarshalRejected(p)
		return &Result{Kind: OutcomeRejected, Rejected: &RejectedResult{
			TransactionID: id,
			Reason:        p.Reason,
			Payload:       canonical,
		}}, nil
	case models.TransactionPending:
		return &Result{Kind: OutcomeRejected, Rejected: replayLikeResult(id, apierrors.CodeInFlight)}, nil
	case models.TransactionFailed:
		return &Result{Kind: OutcomeRejected, Rejected: replayLikeResult(id, apierrors.CodePreviousAttemptFailed)}, nil
	default:
		return nil, &SystemFault{Reason: "UNKNOWN_TRANSACTION_STATUS"}
	}
}

// admit implements §4.3: insert the PENDING row and its ATTEMPTED audit row.
func admit(ctx context.Context, tx pgx.Tx, req Request) (uuid.UUID, *SystemFault) {
	txID := uuid.New()
	_, err := tx.Exec(ctx, `
		INSERT INTO transactions
			(transaction_id, status, type, initiator_user_id, from_account_id, to_account_id, amount, idempotency_key)
		VALUES ($1, 'PENDING', 'TRANSFER', $2, $3, $4, $5, $6)`,
		txID, req.InitiatorUserID, req.FromAccountID, req.ToAccountID, req.Amount, req.IdempotencyKey)
	if err != nil {
		return uuid.Nil, &SystemFault{Reason: "ADMISSION_FAILED", Err: err}
	}

	if err := insertAudit(ctx, tx, models.ActorUser, req.InitiatorUserID.String(), txID, models.OutcomeAttempted, nil); err != nil {
		return uuid.Nil, &SystemFault{Reason: "AUDIT_WRITE_FAILED", Err: err}
	}
	return txID, nil
}

// checkEligibility implements §4.4's fixed priority order. An empty reason
// means both accounts are eligible to proceed to the balance mutator.
func checkEligibility(ctx context.Context, tx pgx.Tx, req Request) (string, *SystemFault) {
	fromStatus, err := lockAccountStatus(ctx, tx, req.FromAccountID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", &SystemFault{Reason: "ELIGIBILITY_LOOKUP_FAILED", Err: err}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return string(apierrors.CodeFromAccountNotFound), nil
	}
	if fromStatus != models.AccountActive {
		return string(apierrors.CodeFromAccountNotActive), nil
	}

	toStatus, err := lockAccountStatus(ctx, tx, req.ToAccountID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", &SystemFault{Reason: "ELIGIBILITY_LOOKUP_FAILED", Err: err}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return string(apierrors.CodeToAccountNotFound), nil
	}
	if toStatus != models.AccountActive {
		return string(apierrors.CodeToAccountNotActive), nil
	}
	return "", nil
}

// lockAccountStatus locks an account row for the remainder of the
// transaction. Each request locks its `from` account before its `to`
// account, so two transfers over the same pair in opposite directions take
// the two row locks in opposite orders; Postgres detects that deadlock and
// aborts one of them, which reaches the caller as a system fault.
func lockAccountStatus(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (models.AccountStatus, error) {
	var status string
	err := tx.QueryRow(ctx, `SELECT status FROM accounts WHERE account_id = $1 FOR UPDATE`, accountID).Scan(&status)
	if err != nil {
		return "", err
	}
	return models.AccountStatus(status), nil
}

// debit applies §4.5's conditional debit and returns the affected row count.
func debit(ctx context.Context, tx pgx.Tx, req Request) (int64, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE accounts
		   SET current_balance = current_balance - $1
		 WHERE account_id = $2
		   AND status = 'ACTIVE'
		   AND current_balance >= $1`,
		req.Amount, req.FromAccountID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// credit applies §4.5's conditional credit and returns the affected row count.
func credit(ctx context.Context, tx pgx.Tx, req Request) (int64, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE accounts
		   SET current_balance = current_balance + $1
		 WHERE account_id = $2
		   AND status = 'ACTIVE'`,
		req.Amount, req.ToAccountID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// rejectAndCommit implements the rejection path shared by §4.4 and §4.5:
// update the transaction to REJECTED, append the REJECTED audit row, and
// commit. The caller is responsible for marking the transaction committed.
func rejectAndCommit(ctx context.Context, tx pgx.Tx, txID uuid.UUID, req Request, reason string) (*RejectedResult, error) {
	payload, err := models.MarshalRejected(models.RejectedPayload{
		TransactionID: txID,
		Status:        string(models.TransactionRejected),
		Reason:        reason,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE transactions
		   SET status = 'REJECTED', failure_reason = $2, response_payload = $3
		 WHERE transaction_id = $1`,
		txID, reason, payload); err != nil {
		return nil, err
	}

	if err := insertAudit(ctx, tx, models.ActorUser, req.InitiatorUserID.String(), txID, models.OutcomeRejected, &reason); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &RejectedResult{TransactionID: txID, Reason: reason, Payload: payload}, nil
}

// settleAndCommit implements §4.6: ledger writes, terminal transaction
// state, SUCCEEDED audit row, commit.
func settleAndCommit(ctx context.Context, tx pgx.Tx, txID uuid.UUID, req Request) (*SucceededResult, error) {
	debitEntryID, creditEntryID := uuid.New(), uuid.New()
	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `
		INSERT INTO ledger_entries (ledger_entry_id, amount, account_id, transaction_id, created_at)
		VALUES ($1, $2, $3, $5, $6), ($4, $7, $8, $5, $6)`,
		debitEntryID, -req.Amount, req.FromAccountID,
		creditEntryID, txID, now,
		req.Amount, req.ToAccountID); err != nil {
		return nil, err
	}

	payload, err := models.MarshalSucceeded(models.SucceededPayload{
		TransactionID: txID,
		Status:        string(models.TransactionSucceeded),
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		CreatedAt:     now,
	})
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE transactions
		   SET status = 'SUCCEEDED', response_payload = $2
		 WHERE transaction_id = $1`,
		txID, payload); err != nil {
		return nil, err
	}

	if err := insertAudit(ctx, tx, models.ActorUser, req.InitiatorUserID.String(), txID, models.OutcomeSucceeded, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &SucceededResult{
		TransactionID: txID,
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Payload:       payload,
	}, nil
}

func insertAudit(ctx context.Context, tx pgx.Tx, actorType models.AuditActorType, actorID string, txID uuid.UUID, outcome models.AuditOutcome, reason *string) error {
	targetID := txID.String()
	_, err := tx.Exec(ctx, `
		INSERT INTO audit_logs (audit_log_id, actor_type, actor_id, action, target_type, target_id, outcome, reason)
		VALUES ($1, $2, $3, 'TRANSFER', 'TRANSACTION', $4, $5, $6)`,
		uuid.New(), actorType, actorID, targetID, outcome, reason)
	return err
}

// compensate implements §4.7. It is called only after the original
// transaction has already rolled back (via executeAdmitted's defer). It opens a
// fresh, independent transaction to persist the FAILED row and SYSTEM
// audit row, then surfaces the fault to the caller regardless of whether
// the compensating write itself succeeds or fails.
func (e *Executor) compensate(ctx context.Context, req Request, fault *SystemFault) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := e.db.Begin(ctx)
	if err != nil {
		logging.Error("compensating write: begin failed", err, map[string]interface{}{"reason": fault.Reason})
		return apierrors.NewSystemFailure(fault.Reason)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		txID   uuid.UUID
		status string
	)
	row := tx.QueryRow(ctx, `
		SELECT transaction_id, status FROM transactions
		 WHERE initiator_user_id = $1 AND idempotency_key = $2 AND type = 'TRANSFER'`,
		req.InitiatorUserID, req.IdempotencyKey)
	scanErr := row.Scan(&txID, &status)

	switch {
	case errors.Is(scanErr, pgx.ErrNoRows):
		// No row exists (the fault came before admission, or the admitting
		// transaction rolled back): insert one directly as FAILED.
		txID = uuid.New()
		_, err = tx.Exec(ctx, `
			INSERT INTO transactions
				(transaction_id, status, type, initiator_user_id, from_account_id, to_account_id, amount, idempotency_key, failure_reason)
			VALUES ($1, 'FAILED', 'TRANSFER', $2, $3, $4, $5, $6, $7)`,
			txID, req.InitiatorUserID, req.FromAccountID, req.ToAccountID, req.Amount, req.IdempotencyKey, fault.Reason)
	case scanErr != nil:
		logging.Error("compensating write: lookup failed", scanErr, map[string]interface{}{"reason": fault.Reason})
		return apierrors.NewSystemFailure(fault.Reason)
	case models.TransactionStatus(status) == models.TransactionPending:
		_, err = tx.Exec(ctx, `
			UPDATE transactions SET status = 'FAILED', failure_reason = $2 WHERE transaction_id = $1`,
			txID, fault.Reason)
	default:
		// Already terminal (shouldn't happen on this path); nothing to do.
		err = nil
	}
	if err != nil {
		logging.Error("compensating write: transaction upsert failed", err, map[string]interface{}{"reason": fault.Reason})
		return apierrors.NewSystemFailure(fault.Reason)
	}

	reason := fault.Reason
	if err := insertAudit(ctx, tx, models.ActorSystem, models.TransferServiceActor, txID, models.OutcomeFailed, &reason); err != nil {
		logging.Error("compensating write: audit insert failed", err, map[string]interface{}{"reason": fault.Reason})
		return apierrors.NewSystemFailure(fault.Reason)
	}

	if err := tx.Commit(ctx); err != nil {
		logging.Error("compensating write: commit failed", err, map[string]interface{}{"reason": fault.Reason})
		return apierrors.NewSystemFailure(fault.Reason)
	}

	return apierrors.NewSystemFailure(fault.Reason)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
