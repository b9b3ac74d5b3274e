package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vaultbank/vault-backend/internal/application"
	"github.com/vaultbank/vault-backend/internal/interface/middleware"
	"github.com/vaultbank/vault-backend/pkg/response"
	"github.com/vaultbank/vault-backend/pkg/validation"
)

// TransactionHandler serves deposits, withdrawals, balance and the ledger views.
type TransactionHandler struct {
	Svc    *application.LedgerService
	Logger *logrus.Logger
}

func NewTransactionHandler(svc *application.LedgerService, logger *logrus.Logger) *TransactionHandler {
	return &TransactionHandler{Svc: svc, Logger: logger}
}

type depositRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Source string          `json:"source"`
}

type withdrawRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Reason string          `json:"reason"`
}

// Deposit POST /api/deposit
func (h *TransactionHandler) Deposit(c *gin.Context) {
	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	acct, txn, err := h.Svc.Deposit(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req.Amount, req.Source)
	if err != nil {
		h.writeMutationError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"balance":     acct.Balance,
		"inflow":      acct.Inflow,
		"transaction": txn,
	}, "deposit successful", nil)
}

// Withdraw POST /api/withdraw
func (h *TransactionHandler) Withdraw(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	acct, txn, err := h.Svc.Withdraw(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req.Amount, req.Reason)
	if err != nil {
		h.writeMutationError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"balance":     acct.Balance,
		"outflow":     acct.Outflow,
		"transaction": txn,
	}, "withdrawal successful", nil)
}

func (h *TransactionHandler) writeMutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidAmount):
		response.Error[any](c, http.StatusBadRequest, "amount must be greater than zero", nil)
	case errors.Is(err, application.ErrInsufficientFunds):
		response.Error[any](c, http.StatusBadRequest, "insufficient funds", nil)
	case errors.Is(err, application.ErrAccountNotFound):
		response.Error[any](c, http.StatusNotFound, "account not found", nil)
	default:
		h.Logger.WithError(err).Error("balance mutation failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
	}
}

// Balance GET /api/balance
func (h *TransactionHandler) Balance(c *gin.Context) {
	summary, err := h.Svc.Balance(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		if errors.Is(err, application.ErrAccountNotFound) {
			response.Error[any](c, http.StatusNotFound, "account not found", nil)
			return
		}
		h.Logger.WithError(err).Error("balance lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}
	response.Success(c, http.StatusOK, summary, "balance retrieved", nil)
}

// Transactions GET /api/transactions
func (h *TransactionHandler) Transactions(c *gin.Context) {
	list, err := h.Svc.ListTransactions(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		if errors.Is(err, application.ErrNoTransactions) {
			response.Error[any](c, http.StatusNotFound, "no transactions found", nil)
			return
		}
		h.Logger.WithError(err).Error("transaction listing failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}
	response.Success(c, http.StatusOK, list, "transactions retrieved", gin.H{"count": len(list)})
}

// Search GET /api/transactions/search?q=
func (h *TransactionHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "query parameter q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))

	hits, err := h.Svc.SearchTransactions(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), q, size)
	if err != nil {
		h.Logger.WithError(err).Error("transaction search failed")
		response.Error[any](c, http.StatusInternalServerError, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits), "query": q})
}
