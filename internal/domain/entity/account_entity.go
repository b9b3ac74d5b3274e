package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Roles an account can hold. Everything except admin tooling runs as
// RoleCustomer.
const (
	RoleCustomer = "user"
	RoleAdmin    = "admin"
)

// MaxActivities bounds the per-account activity log; only the most recent
// entries are kept, newest first.
const MaxActivities = 10

// Activity is one entry in the account's bounded activity log.
type Activity struct {
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// Account is the aggregate root for the banking domain: identity,
// credential digest, balance, running inflow/outflow totals derived from
// the ledger, the bounded activity log, and pending password-reset state.
//
// Balance, Inflow and Outflow are only ever mutated through the ledger
// store's transaction boundary.
type Account struct {
	ID            string
	FirstName     string
	LastName      string
	Phone         string
	Email         string
	Role          string
	PasswordHash  string
	AccountNumber string
	Balance       decimal.Decimal
	Inflow        decimal.Decimal
	Outflow       decimal.Decimal
	Activities    []Activity

	// Reset state; both nil unless a reset is pending. Validity is judged
	// against ResetExpires at resolution time, not at insertion time.
	ResetToken   *string
	ResetExpires *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns the display name used in responses and emails.
func (a *Account) FullName() string {
	return a.FirstName + " " + a.LastName
}

// RecordActivity prepends an activity entry and truncates the log to
// MaxActivities.
func (a *Account) RecordActivity(action string, at time.Time) {
	a.Activities = append([]Activity{{Action: action, Timestamp: at}}, a.Activities...)
	if len(a.Activities) > MaxActivities {
		a.Activities = a.Activities[:MaxActivities]
	}
}

// IsAdmin reports whether the account may use admin-only endpoints.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
