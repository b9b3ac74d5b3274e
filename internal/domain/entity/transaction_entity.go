package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the operation a ledger entry records.
type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
	KindTransfer   TransactionKind = "transfer"
)

// TransactionStatus is the lifecycle state of a ledger entry. The mutation
// path only ever writes StatusSuccessful synchronously; the remaining
// states exist for schema compatibility with asynchronous settlement.
type TransactionStatus string

const (
	StatusPending    TransactionStatus = "Pending"
	StatusProcessing TransactionStatus = "Processing"
	StatusSuccessful TransactionStatus = "Successful"
	StatusFailed     TransactionStatus = "Failed"
)

// Transaction is one immutable ledger entry for a balance-affecting
// operation. BalanceAfter snapshots the account balance the moment the
// entry was committed; entries are never edited after creation.
type Transaction struct {
	ID           string            `json:"id"`
	Reference    string            `json:"reference"`
	AccountID    string            `json:"account_id"`
	Kind         TransactionKind   `json:"type"`
	Amount       decimal.Decimal   `json:"amount"`
	Description  string            `json:"description"`
	BalanceAfter decimal.Decimal   `json:"balance_after"`
	Status       TransactionStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
}
