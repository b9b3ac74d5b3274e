package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vaultbank/vault-backend/internal/domain/entity"
	"github.com/vaultbank/vault-backend/internal/interface/middleware"
	"github.com/vaultbank/vault-backend/pkg/response"
	"github.com/vaultbank/vault-backend/pkg/validation"
)

// LoanHandler accepts loan requests for manual review. Requests are
// acknowledged but not persisted yet.
// TODO: persist loan requests once the review workflow lands.
type LoanHandler struct {
	Logger *logrus.Logger
}

func NewLoanHandler(logger *logrus.Logger) *LoanHandler {
	return &LoanHandler{Logger: logger}
}

type loanRequestBody struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Reason string          `json:"reason" binding:"required"`
}

// RequestLoan POST /api/loans/loan-request
func (h *LoanHandler) RequestLoan(c *gin.Context) {
	var req loanRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if !req.Amount.IsPositive() {
		response.Error[any](c, http.StatusBadRequest, "amount must be greater than zero", nil)
		return
	}

	lr := entity.LoanRequest{
		AccountID: c.GetString(middleware.CtxUserIDKey),
		Amount:    req.Amount,
		Reason:    req.Reason,
		Status:    "Pending",
		CreatedAt: time.Now().UTC(),
	}
	h.Logger.WithFields(logrus.Fields{
		"account_id": lr.AccountID,
		"amount":     lr.Amount.String(),
	}).Info("loan request received")

	response.Success(c, http.StatusCreated, lr, "loan request submitted for review", nil)
}

// ListLoans GET /api/loans (admin)
func (h *LoanHandler) ListLoans(c *gin.Context) {
	response.Success(c, http.StatusOK, []entity.LoanRequest{}, "loan requests retrieved", gin.H{"count": 0})
}
