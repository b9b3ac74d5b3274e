package application_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vaultbank/vault-backend/internal/application"
	"github.com/vaultbank/vault-backend/internal/domain/entity"
	"github.com/vaultbank/vault-backend/internal/infrastructure/memory"
)

func newLedger(t *testing.T) (*application.LedgerService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := application.NewLedgerService(store, store, store, nil, nil, "")
	return svc, store
}

func seedAccount(t *testing.T, store *memory.Store, email string) *entity.Account {
	t.Helper()
	a := &entity.Account{
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         email,
		Role:          entity.RoleCustomer,
		PasswordHash:  "x",
		AccountNumber: "1234567890",
	}
	if err := store.Create(context.Background(), a); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return a
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDepositCreditsBalanceAndAppendsEntry(t *testing.T) {
	svc, store := newLedger(t)
	a := seedAccount(t, store, "ada@example.com")
	ctx := context.Background()

	acct, txn, err := svc.Deposit(ctx, a.ID, dec("150.25"), "")
	if err != nil {
		t.Fatal(err)
	}
	if !acct.Balance.Equal(dec("150.25")) {
		t.Fatalf("balance=%s want=150.25", acct.Balance)
	}
	if !acct.Inflow.Equal(dec("150.25")) {
		t.Fatalf("inflow=%s want=150.25", acct.Inflow)
	}
	if txn.Kind != entity.KindDeposit {
		t.Fatalf("kind=%s want=%s", txn.Kind, entity.KindDeposit)
	}
	if txn.Description != "Deposit" {
		t.Fatalf("description=%q want=Deposit", txn.Description)
	}
	if !txn.BalanceAfter.Equal(dec("150.25")) {
		t.Fatalf("balanceAfter=%s want=150.25", txn.BalanceAfter)
	}
	if txn.Status != entity.StatusSuccessful {
		t.Fatalf("status=%s want=%s", txn.Status, entity.StatusSuccessful)
	}
	if txn.Reference == "" || txn.ID == "" {
		t.Fatalf("entry should have id and reference: %+v", txn)
	}
}

func TestWithdrawDebitsBalance(t *testing.T) {
	svc, store := newLedger(t)
	a := seedAccount(t, store, "ada@example.com")
	ctx := context.Background()

	if _, _, err := svc.Deposit(ctx, a.ID, dec("100"), ""); err != nil {
		t.Fatal(err)
	}
	acct, txn, err := svc.Withdraw(ctx, a.ID, dec("30"), "Groceries")
	if err != nil {
		t.Fatal(err)
	}
	if !acct.Balance.Equal(dec("70")) {
		t.Fatalf("balance=%s want=70", acct.Balance)
	}
	if !acct.Outflow.Equal(dec("30")) {
		t.Fatalf("outflow=%s want=30", acct.Outflow)
	}
	if txn.Description != "Groceries" {
		t.Fatalf("description=%q want=Groceries", txn.Description)
	}
	if txn.Kind != entity.KindWithdrawal {
		t.Fatalf("kind=%s want=%s", txn.Kind, entity.KindWithdrawal)
	}
}

func TestMutationRejectsNonPositiveAmounts(t *testing.T) {
	svc, store := newLedger(t)
	a := seedAccount(t, store, "ada@example.com")
	ctx := context.Background()

	for _, amount := range []decimal.Decimal{decimal.Zero, dec("-5")} {
		if _, _, err := svc.Deposit(ctx, a.ID, amount, ""); !errors.Is(err, application.ErrInvalidAmount) {
			t.Fatalf("deposit %s: want ErrInvalidAmount, got %v", amount, err)
		}
		if _, _, err := svc.Withdraw(ctx, a.ID, amount, ""); !errors.Is(err, application.ErrInvalidAmount) {
			t.Fatalf("withdraw %s: want ErrInvalidAmount, got %v", amount, err)
		}
	}
	if _, err := svc.ListTransactions(ctx, a.ID); !errors.Is(err, application.ErrNoTransactions) {
		t.Fatalf("rejected amounts must not produce entries, got %v", err)
	}
}

func TestOverdraftLeavesStateUntouched(t *testing.T) {
	svc, store := newLedger(t)
	a := seedAccount(t, store, "ada@example.com")
	ctx := context.Background()

	if _, _, err := svc.Deposit(ctx, a.ID, dec("50"), ""); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Withdraw(ctx, a.ID, dec("50.01"), ""); !errors.Is(err, application.ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}

	summary, err := svc.Balance(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !summary.Balance.Equal(dec("50")) || !summary.Outflow.Equal(decimal.Zero) {
		t.Fatalf("failed withdrawal mutated state: %+v", summary)
	}
	entries, err := svc.ListTransactions(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries=%d want=1", len(entries))
	}
}

func TestMutationUnknownAccount(t *testing.T) {
	svc, _ := newLedger(t)
	if _, _, err := svc.Deposit(context.Background(), "missing", dec("1"), ""); !errors.Is(err, application.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}

func TestConcurrentDepositsLinearize(t *testing.T) {
	svc, store := newLedger(t)
	a := seedAccount(t, store, "ada@example.com")
	ctx := context.Background()

	const n = 50
	amount := dec("3.50")

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, _, err := svc.Deposit(ctx, a.ID, amount, ""); err != nil {
				t.Errorf("deposit: %v", err)
			}
		}()
	}
	wg.Wait()

	summary, err := svc.Balance(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := amount.Mul(decimal.NewFromInt(n))
	if !summary.Balance.Equal(want) {
		t.Fatalf("balance=%s want=%s", summary.Balance, want)
	}

	entries, err := svc.ListTransactions(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != n {
		t.Fatalf("entries=%d want=%d", len(entries), n)
	}
	// balance_after snapshots must be pairwise distinct under a serial
	// execution order
	seen := make(map[string]bool, n)
	for _, e := range entries {
		key := e.BalanceAfter.String()
		if seen[key] {
			t.Fatalf("duplicate balance_after snapshot %s", key)
		}
		seen[key] = true
	}
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	svc, store := newLedger(t)
	a := seedAccount(t, store, "ada@example.com")
	ctx := context.Background()

	if _, _, err := svc.Deposit(ctx, a.ID, dec("100"), ""); err != nil {
		t.Fatal(err)
	}

	const n = 30 // 30 x 10 attempted, only 10 can succeed
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _, err := svc.Withdraw(ctx, a.ID, dec("10"), "")
			if err != nil && !errors.Is(err, application.ErrInsufficientFunds) {
				t.Errorf("withdraw: %v", err)
			}
		}()
	}
	wg.Wait()

	summary, err := svc.Balance(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Balance.IsNegative() {
		t.Fatalf("balance went negative: %s", summary.Balance)
	}
	if !summary.Balance.Equal(decimal.Zero) {
		t.Fatalf("balance=%s want=0", summary.Balance)
	}
}

func TestListTransactionsNewestFirst(t *testing.T) {
	svc, store := newLedger(t)
	a := seedAccount(t, store, "ada@example.com")
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if _, _, err := svc.Deposit(ctx, a.ID, decimal.NewFromInt(int64(i)), fmt.Sprintf("deposit %d", i)); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := svc.ListTransactions(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries=%d want=3", len(entries))
	}
	if entries[0].Description != "deposit 3" || entries[2].Description != "deposit 1" {
		t.Fatalf("not newest first: %q, %q, %q", entries[0].Description, entries[1].Description, entries[2].Description)
	}
}

func TestEmptyLedgerReportsNoTransactions(t *testing.T) {
	svc, store := newLedger(t)
	a := seedAccount(t, store, "ada@example.com")
	if _, err := svc.ListTransactions(context.Background(), a.ID); !errors.Is(err, application.ErrNoTransactions) {
		t.Fatalf("want ErrNoTransactions, got %v", err)
	}
}

func TestActivityLogIsBounded(t *testing.T) {
	svc, store := newLedger(t)
	a := seedAccount(t, store, "ada@example.com")
	ctx := context.Background()

	total := entity.MaxActivities + 5
	for i := 1; i <= total; i++ {
		if _, _, err := svc.Deposit(ctx, a.ID, decimal.NewFromInt(int64(i)), ""); err != nil {
			t.Fatal(err)
		}
	}
	got, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Activities) != entity.MaxActivities {
		t.Fatalf("activities=%d want=%d", len(got.Activities), entity.MaxActivities)
	}
	// most recent first: the newest deposit leads, the oldest surviving
	// entry closes the window
	if got.Activities[0].Action != fmt.Sprintf("Deposited $%d", total) {
		t.Fatalf("activities[0]=%q want=%q", got.Activities[0].Action, fmt.Sprintf("Deposited $%d", total))
	}
	last := entity.MaxActivities - 1
	if got.Activities[last].Action != fmt.Sprintf("Deposited $%d", total-last) {
		t.Fatalf("activities[%d]=%q want=%q", last, got.Activities[last].Action, fmt.Sprintf("Deposited $%d", total-last))
	}
}

func TestBalanceSummaryAggregates(t *testing.T) {
	svc, store := newLedger(t)
	a := seedAccount(t, store, "ada@example.com")
	ctx := context.Background()

	if _, _, err := svc.Deposit(ctx, a.ID, dec("200"), ""); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Withdraw(ctx, a.ID, dec("75.50"), ""); err != nil {
		t.Fatal(err)
	}

	summary, err := svc.Balance(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Name != "Ada Lovelace" {
		t.Fatalf("name=%q", summary.Name)
	}
	if !summary.Balance.Equal(dec("124.50")) || !summary.Inflow.Equal(dec("200")) || !summary.Outflow.Equal(dec("75.50")) {
		t.Fatalf("summary=%+v", summary)
	}
}
