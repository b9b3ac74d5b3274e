package repository

import (
	"context"

	"github.com/vaultbank/vault-backend/internal/domain/entity"
)

// ApplyFunc validates and mutates the loaded account in place and returns
// the ledger entry to append. Returning an error aborts the operation with
// no mutation persisted.
type ApplyFunc func(a *entity.Account) (*entity.Transaction, error)

// LedgerStore is the single-writer boundary for balance mutations. An
// implementation must guarantee that, per account, only one apply is in
// flight at a time, and that the account update and the ledger entry
// insert become visible together or not at all.
//
// The postgres implementation holds a row lock (SELECT ... FOR UPDATE)
// inside one transaction; the in-memory implementation serializes with a
// per-account mutex.
type LedgerStore interface {
	ApplyTransaction(ctx context.Context, accountID string, apply ApplyFunc) (*entity.Account, *entity.Transaction, error)
}

// TransactionRepository reads the append-only ledger.
type TransactionRepository interface {
	// ListByAccount returns the account's ledger entries, newest first.
	ListByAccount(ctx context.Context, accountID string) ([]*entity.Transaction, error)
}
