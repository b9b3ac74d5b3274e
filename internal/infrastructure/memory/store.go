// Package memory holds an in-process implementation of the account,
// transaction and ledger interfaces. It backs the unit tests and is handy
// for running the API without Postgres.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/vaultbank/vault-backend/internal/domain/entity"
	"github.com/vaultbank/vault-backend/internal/domain/repository"
)

type Store struct {
	mu           sync.Mutex
	accounts     map[string]*entity.Account
	transactions []*entity.Transaction
	nextID       int

	// per-account locks; accountLocks itself is guarded by lockMu
	lockMu       sync.Mutex
	accountLocks map[string]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]*entity.Account),
		accountLocks: make(map[string]*sync.Mutex),
	}
}

func (s *Store) accountLock(id string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	if _, ok := s.accountLocks[id]; !ok {
		s.accountLocks[id] = &sync.Mutex{}
	}
	return s.accountLocks[id]
}

func cloneAccount(a *entity.Account) *entity.Account {
	cp := *a
	cp.Activities = append([]entity.Activity(nil), a.Activities...)
	if a.ResetToken != nil {
		t := *a.ResetToken
		cp.ResetToken = &t
	}
	if a.ResetExpires != nil {
		e := *a.ResetExpires
		cp.ResetExpires = &e
	}
	return &cp
}

func (s *Store) Create(_ context.Context, a *entity.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.Email == a.Email {
			return repository.ErrDuplicateEmail
		}
		if existing.AccountNumber == a.AccountNumber {
			return repository.ErrDuplicateAccountNumber
		}
	}
	s.nextID++
	a.ID = "acct-" + strconv.Itoa(s.nextID)
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	s.accounts[a.ID] = cloneAccount(a)
	return nil
}

func (s *Store) GetByID(_ context.Context, id string) (*entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (s *Store) GetByEmail(_ context.Context, email string) (*entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) ListCustomers(_ context.Context) ([]*entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Account
	for _, a := range s.accounts {
		if a.Role == entity.RoleCustomer {
			out = append(out, cloneAccount(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SaveActivities(_ context.Context, id string, activities []entity.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Activities = append([]entity.Activity(nil), activities...)
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) SetResetToken(_ context.Context, id, token string, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.ResetToken = &token
	a.ResetExpires = &expires
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) ResolveReset(_ context.Context, token, passwordHash string, now time.Time) (*entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.ResetToken != nil && *a.ResetToken == token &&
			a.ResetExpires != nil && a.ResetExpires.After(now) {
			a.PasswordHash = passwordHash
			a.ResetToken = nil
			a.ResetExpires = nil
			a.UpdatedAt = time.Now().UTC()
			return cloneAccount(a), nil
		}
	}
	return nil, repository.ErrNotFound
}

// ApplyTransaction serializes per account with a dedicated mutex, applies
// the mutation to a working copy, and publishes the copy plus the ledger
// entry in one step, mirroring the transactional postgres implementation.
func (s *Store) ApplyTransaction(_ context.Context, accountID string, apply repository.ApplyFunc) (*entity.Account, *entity.Transaction, error) {
	lock := s.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	current, ok := s.accounts[accountID]
	if !ok {
		s.mu.Unlock()
		return nil, nil, repository.ErrNotFound
	}
	working := cloneAccount(current)
	s.mu.Unlock()

	entry, err := apply(working)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	entry.ID = "txn-" + strconv.Itoa(s.nextID)
	working.UpdatedAt = time.Now().UTC()
	s.accounts[accountID] = cloneAccount(working)
	s.transactions = append(s.transactions, entry)
	return working, entry, nil
}

func (s *Store) ListByAccount(_ context.Context, accountID string) ([]*entity.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Transaction
	for _, t := range s.transactions {
		if t.AccountID == accountID {
			cp := *t
			out = append(out, &cp)
		}
	}
	// newest first; entries share timestamps in tests, so fall back to
	// insertion order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

var (
	_ repository.AccountRepository     = (*Store)(nil)
	_ repository.TransactionRepository = (*Store)(nil)
	_ repository.LedgerStore           = (*Store)(nil)
)
