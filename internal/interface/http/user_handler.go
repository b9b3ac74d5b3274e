package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vaultbank/vault-backend/internal/application"
	"github.com/vaultbank/vault-backend/internal/interface/middleware"
	"github.com/vaultbank/vault-backend/pkg/response"
	"github.com/vaultbank/vault-backend/pkg/validation"
)

// UserHandler serves the profile view and the admin account surface.
type UserHandler struct {
	Accounts *application.AccountService
	Ledger   *application.LedgerService
	Logger   *logrus.Logger
}

func NewUserHandler(accounts *application.AccountService, ledger *application.LedgerService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Accounts: accounts, Ledger: ledger, Logger: logger}
}

// Profile GET /api/profile
func (h *UserHandler) Profile(c *gin.Context) {
	a, err := h.Accounts.Profile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		if errors.Is(err, application.ErrAccountNotFound) {
			response.Error[any](c, http.StatusNotFound, "account not found", nil)
			return
		}
		h.Logger.WithError(err).Error("profile lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}
	response.Success(c, http.StatusOK, accountPayload(a), "profile retrieved", nil)
}

// ListUsers GET /api/users (admin)
func (h *UserHandler) ListUsers(c *gin.Context) {
	accounts, err := h.Accounts.ListCustomers(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("customer listing failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}

	out := make([]gin.H, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountPayload(a))
	}
	response.Success(c, http.StatusOK, out, "users retrieved", gin.H{"count": len(out)})
}

type increaseBalanceRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// IncreaseBalance PUT /api/users/:id/increase-balance (admin). The credit
// goes through the ledger like any deposit so the entry and the running
// aggregates stay consistent.
func (h *UserHandler) IncreaseBalance(c *gin.Context) {
	var req increaseBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	acct, txn, err := h.Ledger.Deposit(c.Request.Context(), c.Param("id"), req.Amount, "Admin credit")
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidAmount):
			response.Error[any](c, http.StatusBadRequest, "amount must be greater than zero", nil)
		case errors.Is(err, application.ErrAccountNotFound):
			response.Error[any](c, http.StatusNotFound, "account not found", nil)
		default:
			h.Logger.WithError(err).Error("admin credit failed")
			response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"accountId":   acct.ID,
		"balance":     acct.Balance,
		"transaction": txn,
	}, "balance increased", nil)
}
