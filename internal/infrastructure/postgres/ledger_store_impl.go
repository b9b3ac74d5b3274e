package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vaultbank/vault-backend/internal/domain/entity"
	"github.com/vaultbank/vault-backend/internal/domain/repository"
)

// LedgerStore applies balance mutations inside a single database
// transaction. The SELECT ... FOR UPDATE row lock linearizes all mutations
// against the same account, and the account update plus the ledger entry
// insert commit together or not at all.
type LedgerStore struct {
	pool *pgxpool.Pool
}

func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

func (s *LedgerStore) ApplyTransaction(ctx context.Context, accountID string, apply repository.ApplyFunc) (*entity.Account, *entity.Transaction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin ledger transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	acct, err := scanAccount(tx.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, accountID))
	if err != nil {
		return nil, nil, err
	}

	entry, err := apply(acct)
	if err != nil {
		return nil, nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE accounts
		SET balance = $1, inflow = $2, outflow = $3, activities = $4, updated_at = now()
		WHERE id = $5
	`, acct.Balance, acct.Inflow, acct.Outflow, acct.Activities, acct.ID); err != nil {
		return nil, nil, fmt.Errorf("update account %s: %w", acct.ID, err)
	}

	if err := tx.QueryRow(ctx, `
		INSERT INTO transactions (reference, account_id, type, amount, description, balance_after, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, entry.Reference, entry.AccountID, entry.Kind, entry.Amount, entry.Description,
		entry.BalanceAfter, entry.Status, entry.CreatedAt).Scan(&entry.ID); err != nil {
		return nil, nil, fmt.Errorf("insert ledger entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit ledger transaction: %w", err)
	}
	return acct, entry, nil
}

type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string) ([]*entity.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, reference, account_id, type, amount, description, balance_after, status, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*entity.Transaction
	for rows.Next() {
		t := &entity.Transaction{}
		if err := rows.Scan(&t.ID, &t.Reference, &t.AccountID, &t.Kind, &t.Amount,
			&t.Description, &t.BalanceAfter, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, t)
	}
	return entries, rows.Err()
}

var (
	_ repository.LedgerStore           = (*LedgerStore)(nil)
	_ repository.TransactionRepository = (*TransactionRepository)(nil)
)
