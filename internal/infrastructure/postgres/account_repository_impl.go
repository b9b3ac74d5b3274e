package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vaultbank/vault-backend/internal/domain/entity"
	"github.com/vaultbank/vault-backend/internal/domain/repository"
)

const uniqueViolation = "23505"

const accountColumns = `id, first_name, last_name, phone, email, role, password_hash,
	account_number, balance, inflow, outflow, activities, reset_token, reset_expires,
	created_at, updated_at`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func scanAccount(row pgx.Row) (*entity.Account, error) {
	a := &entity.Account{}
	err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Phone, &a.Email, &a.Role,
		&a.PasswordHash, &a.AccountNumber, &a.Balance, &a.Inflow, &a.Outflow,
		&a.Activities, &a.ResetToken, &a.ResetExpires, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (first_name, last_name, phone, email, role, password_hash, account_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, balance, inflow, outflow, created_at, updated_at
	`, a.FirstName, a.LastName, a.Phone, a.Email, a.Role, a.PasswordHash, a.AccountNumber)

	err := row.Scan(&a.ID, &a.Balance, &a.Inflow, &a.Outflow, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "account_number") {
				return repository.ErrDuplicateAccountNumber
			}
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE email = $1
	`, email))
}

func (r *AccountRepository) ListCustomers(ctx context.Context) ([]*entity.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE role = $1
		ORDER BY created_at DESC
	`, entity.RoleCustomer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*entity.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) SaveActivities(ctx context.Context, id string, activities []entity.Activity) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET activities = $1, updated_at = now()
		WHERE id = $2
	`, activities, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET reset_token = $1, reset_expires = $2, updated_at = now()
		WHERE id = $3
	`, token, expires, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ResolveReset is a single compare-and-swap statement: the token match,
// the expiry check and the token clear happen atomically, so a concurrent
// replay of the same token sees zero rows.
func (r *AccountRepository) ResolveReset(ctx context.Context, token, passwordHash string, now time.Time) (*entity.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET password_hash = $2, reset_token = NULL, reset_expires = NULL, updated_at = now()
		WHERE reset_token = $1 AND reset_expires > $3
		RETURNING `+accountColumns+`
	`, token, passwordHash, now))
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
