package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanRequest is deliberately not persisted; the loan surface is a stub
// and designing its storage is a non-goal.
type LoanRequest struct {
	AccountID string          `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}
