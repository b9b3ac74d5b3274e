package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vaultbank/vault-backend/internal/domain/entity"
)

// Storage-level sentinel errors. The application layer maps these onto its
// own error vocabulary before they reach a handler.
var (
	ErrNotFound               = errors.New("not found")
	ErrDuplicateEmail         = errors.New("email already registered")
	ErrDuplicateAccountNumber = errors.New("account number already taken")
)

// AccountRepository defines the persistence operations for accounts.
// Balance, inflow and outflow are intentionally absent here: those fields
// change only through LedgerStore.ApplyTransaction.
type AccountRepository interface {
	Create(ctx context.Context, a *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	// ListCustomers returns all non-admin accounts, for the admin listing.
	ListCustomers(ctx context.Context) ([]*entity.Account, error)
	// SaveActivities replaces the bounded activity log for an account.
	SaveActivities(ctx context.Context, id string, activities []entity.Activity) error
	// SetResetToken stores a pending reset (token, expiry) pair,
	// overwriting any prior pending reset.
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
	// ResolveReset atomically replaces the credential digest and clears the
	// reset state for the account whose stored token matches and whose
	// expiry is strictly after now. Returns ErrNotFound when no such
	// account exists (unknown, consumed, or expired token), which makes
	// tokens single-use even under concurrent replay.
	ResolveReset(ctx context.Context, token, passwordHash string, now time.Time) (*entity.Account, error)
}
