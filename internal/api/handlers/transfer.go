package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ledgerbank/transfer-engine/internal/domain/models"
	"github.com/ledgerbank/transfer-engine/internal/domain/transfer"
	rediscache "github.com/ledgerbank/transfer-engine/internal/infrastructure/cache/redis"
	"github.com/ledgerbank/transfer-engine/internal/infrastructure/messaging"
	apierrors "github.com/ledgerbank/transfer-engine/internal/pkg/errors"
	"github.com/ledgerbank/transfer-engine/internal/pkg/idempotency"
	"github.com/ledgerbank/transfer-engine/internal/pkg/logging"
	metrics "github.com/ledgerbank/transfer-engine/internal/pkg/telemetry"
)

// MakeTransferHandler builds the handler for POST /transfers, the core
// operation of the system: it parses the request, extracts the trusted
// identity and idempotency key at the edge, and hands everything to the
// executor untouched.
func MakeTransferHandler(container HandlerDependencies) gin.HandlerFunc {
	executor := container.GetExecutor()
	publisher := container.GetEventPublisher()
	extractor := container.GetIdentityExtractor()
	cache := container.GetReplayCache()

	return func(c *gin.Context) {
		var body struct {
			FromAccountID uuid.UUID `json:"fromAccountId"`
			ToAccountID   uuid.UUID `json:"toAccountId"`
			Amount        int64     `json:"amount"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			apiErr := apierrors.NewInputFault(apierrors.CodeInvalidAmount, "invalid request body")
			logging.Warn("invalid JSON in transfer request", map[string]interface{}{"error": err.Error(), "ip": c.ClientIP()})
			c.JSON(apiErr.Status, apiErr)
			return
		}

		initiatorUserID, err := extractor.InitiatorID(c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		idempotencyKey, err := idempotency.FromRequest(c.Request)
		if err != nil {
			code := apierrors.CodeMissingIdempotencyKey
			if err == idempotency.ErrMalformed {
				code = apierrors.CodeMalformedIdempotencyKey
			}
			apiErr := apierrors.NewInputFault(code, err.Error())
			c.JSON(apiErr.Status, apiErr)
			return
		}

		if cache != nil {
			if entry, hit := cache.Get(c.Request.Context(), initiatorUserID, idempotencyKey); hit {
				metrics.RecordIdempotentReplay("cache")
				status := http.StatusOK
				if entry.Status != string(models.TransactionSucceeded) {
					status = http.StatusUnprocessableEntity
				}
				c.Data(status, "application/json", entry.Payload)
				return
			}
		}

		result, err := executor.Execute(c.Request.Context(), transfer.Request{
			InitiatorUserID: initiatorUserID,
			FromAccountID:   body.FromAccountID,
			ToAccountID:     body.ToAccountID,
			Amount:          body.Amount,
			IdempotencyKey:  idempotencyKey,
		})
		if err != nil {
			apiErr, ok := err.(*apierrors.APIError)
			if !ok {
				apiErr = apierrors.NewSystemFailure(err.Error())
			}
			metrics.RecordTransferOutcome("system_failure")

			event := messaging.TransferFailedEvent{Reason: apiErr.Message, Timestamp: time.Now().UTC()}
			if pubErr := publisher.PublishTransferFailed(event); pubErr != nil {
				logging.Error("failed to publish transfer failed event", pubErr, nil)
			}

			c.JSON(apiErr.Status, apiErr)
			return
		}

		switch result.Kind {
		case transfer.OutcomeSucceeded:
			metrics.RecordTransferOutcome("succeeded")
			metrics.RecordTransferAmount(float64(result.Succeeded.Amount))

			event := messaging.TransferCompletedEvent{
				TransactionID: result.Succeeded.TransactionID,
				FromAccountID: result.Succeeded.FromAccountID,
				ToAccountID:   result.Succeeded.ToAccountID,
				Amount:        result.Succeeded.Amount,
				Timestamp:     time.Now().UTC(),
			}
			if pubErr := publisher.PublishTransferCompleted(event); pubErr != nil {
				logging.Error("failed to publish transfer completed event", pubErr, map[string]interface{}{
					"transaction_id": result.Succeeded.TransactionID.String(),
				})
			}

			if cache != nil {
				cache.Set(c.Request.Context(), initiatorUserID, idempotencyKey, rediscache.ReplayEntry{
					TransactionID: result.Succeeded.TransactionID,
					Status:        string(models.TransactionSucceeded),
					Payload:       result.Succeeded.Payload,
				})
			}
			c.Data(http.StatusOK, "application/json", result.Succeeded.Payload)

		case transfer.OutcomeRejected:
			metrics.RecordTransferOutcome("rejected")
			metrics.RecordTransferRejection(result.Rejected.Reason)

			// INVALID_AMOUNT/SAME_ACCOUNT (and a missing key) never reach
			// the executor's transaction, so they are input faults (400);
			// everything else here answers 422. Only the five domain
			// rejections were committed as REJECTED, so only they are cached;
			// the IN_FLIGHT / PREVIOUS_ATTEMPT_FAILED replay conditions are not.
			status := http.StatusBadRequest
			switch apierrors.Code(result.Rejected.Reason) {
			case apierrors.CodeInFlight, apierrors.CodePreviousAttemptFailed:
				status = http.StatusUnprocessableEntity
			}
			if apierrors.IsDomainRejectionCode(result.Rejected.Reason) {
				status = http.StatusUnprocessableEntity
				metrics.RecordIdempotentReplay("database")
				if cache != nil {
					cache.Set(c.Request.Context(), initiatorUserID, idempotencyKey, rediscache.ReplayEntry{
						TransactionID: result.Rejected.TransactionID,
						Status:        string(models.TransactionRejected),
						Payload:       result.Rejected.Payload,
					})
				}
			}

			event := messaging.TransferRejectedEvent{
				TransactionID: result.Rejected.TransactionID,
				Reason:        result.Rejected.Reason,
				Timestamp:     time.Now().UTC(),
			}
			if pubErr := publisher.PublishTransferRejected(event); pubErr != nil {
				logging.Error("failed to publish transfer rejected event", pubErr, map[string]interface{}{
					"transaction_id": result.Rejected.TransactionID.String(),
				})
			}

			c.Data(status, "application/json", result.Rejected.Payload)
		}
	}
}
