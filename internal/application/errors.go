package application

import "errors"

// Domain errors surfaced to handlers; the request boundary translates
// these into stable 4xx responses.
var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrAccountNotFound       = errors.New("account not found")
	ErrInsufficientFunds     = errors.New("insufficient balance")
	ErrNoTransactions        = errors.New("no transactions found")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrDuplicateEmail        = errors.New("email already registered")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
)
