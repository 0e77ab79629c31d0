package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ledgerbank/transfer-engine/internal/domain/models"
	"github.com/ledgerbank/transfer-engine/internal/infrastructure/database/postgres"
	"github.com/ledgerbank/transfer-engine/internal/infrastructure/messaging"
	apierrors "github.com/ledgerbank/transfer-engine/internal/pkg/errors"
	"github.com/ledgerbank/transfer-engine/internal/pkg/logging"
	metrics "github.com/ledgerbank/transfer-engine/internal/pkg/telemetry"
)

// MakeCreateAccountHandler builds the handler for POST /accounts. Only
// thin CRUD: accounts exist so the transfer engine has something to
// operate on.
func MakeCreateAccountHandler(container HandlerDependencies) gin.HandlerFunc {
	store := container.GetStore()
	extractor := container.GetIdentityExtractor()

	return func(c *gin.Context) {
		var req struct {
			OpeningBalance int64 `json:"openingBalance"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			apiErr := apierrors.NewInputFault(apierrors.CodeInvalidAmount, "invalid request body")
			c.JSON(apiErr.Status, apiErr)
			return
		}
		if req.OpeningBalance < 0 {
			apiErr := apierrors.NewInputFault(apierrors.CodeInvalidAmount, "openingBalance must be >= 0")
			c.JSON(apiErr.Status, apiErr)
			return
		}

		userID, err := extractor.InitiatorID(c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		account, err := store.CreateAccount(c.Request.Context(), userID, req.OpeningBalance)
		if err != nil {
			logging.Error("failed to create account", err, map[string]interface{}{"user_id": userID.String()})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
			return
		}

		metrics.RecordAccountCreation()
		metrics.RecordAccountBalance(float64(account.CurrentBalance))

		c.JSON(http.StatusCreated, accountResponse(account))
	}
}

// MakeGetAccountHandler builds the handler for GET /accounts/:id.
func MakeGetAccountHandler(container HandlerDependencies) gin.HandlerFunc {
	store := container.GetStore()

	return func(c *gin.Context) {
		accountID, ok := parseAccountID(c)
		if !ok {
			return
		}

		account, err := store.GetAccount(c.Request.Context(), accountID)
		if errors.Is(err, postgres.ErrAccountNotFound) {
			apiErr := apierrors.NewDomainRejection(apierrors.CodeFromAccountNotFound, "account not found")
			c.JSON(http.StatusNotFound, apiErr)
			return
		}
		if err != nil {
			logging.Error("failed to get account", err, map[string]interface{}{"account_id": accountID.String()})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get account"})
			return
		}

		c.JSON(http.StatusOK, accountResponse(account))
	}
}

// MakeFreezeAccountHandler builds the handler for POST /accounts/:id/freeze.
func MakeFreezeAccountHandler(container HandlerDependencies) gin.HandlerFunc {
	return makeStatusTransitionHandler(container, models.AccountFrozen)
}

// MakeUnfreezeAccountHandler builds the handler for POST /accounts/:id/unfreeze.
func MakeUnfreezeAccountHandler(container HandlerDependencies) gin.HandlerFunc {
	return makeStatusTransitionHandler(container, models.AccountActive)
}

func makeStatusTransitionHandler(container HandlerDependencies, target models.AccountStatus) gin.HandlerFunc {
	store := container.GetStore()
	publisher := container.GetEventPublisher()

	return func(c *gin.Context) {
		accountID, ok := parseAccountID(c)
		if !ok {
			return
		}

		if err := store.SetAccountStatus(c.Request.Context(), accountID, target); err != nil {
			logging.Error("failed to transition account status", err, map[string]interface{}{
				"account_id": accountID.String(),
				"target":     string(target),
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update account status"})
			return
		}

		event := messaging.AccountStatusChangedEvent{
			AccountID: accountID,
			Status:    string(target),
			Timestamp: time.Now().UTC(),
		}
		if err := publisher.PublishAccountStatusChanged(event); err != nil {
			logging.Error("failed to publish account status changed event", err, map[string]interface{}{
				"account_id": accountID.String(),
			})
		}

		account, err := store.GetAccount(c.Request.Context(), accountID)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"accountId": accountID, "status": target})
			return
		}
		c.JSON(http.StatusOK, accountResponse(account))
	}
}

func parseAccountID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apiErr := apierrors.NewInputFault(apierrors.CodeMalformedIdempotencyKey, "invalid account id")
		c.JSON(apiErr.Status, apiErr)
		return uuid.Nil, false
	}
	return id, true
}

func accountResponse(a models.Account) gin.H {
	return gin.H{
		"accountId": a.AccountID,
		"userId":    a.UserID,
		"status":    a.Status,
		"balance":   a.CurrentBalance,
		"createdAt": a.CreatedAt,
	}
}
