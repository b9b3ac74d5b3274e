package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vaultbank/vault-backend/internal/domain/entity"
	repo "github.com/vaultbank/vault-backend/internal/domain/repository"
)

// LedgerService is the balance mutation engine. Every balance-affecting
// operation goes through apply, which validates, mutates the account and
// appends the ledger entry inside the store's per-account transaction
// boundary.
type LedgerService struct {
	Store         repo.LedgerStore
	Accounts      repo.AccountRepository
	Transactions  repo.TransactionRepository
	Logger        *logrus.Logger
	ES            *elasticsearch.Client
	ESLedgerIndex string
}

func NewLedgerService(store repo.LedgerStore, accounts repo.AccountRepository, transactions repo.TransactionRepository, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *LedgerService {
	return &LedgerService{
		Store:         store,
		Accounts:      accounts,
		Transactions:  transactions,
		Logger:        logger,
		ES:            es,
		ESLedgerIndex: esIndex,
	}
}

// BalanceSummary is the read model for the balance endpoint.
type BalanceSummary struct {
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
}

// Deposit credits amount to the account and appends a ledger entry.
func (s *LedgerService) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, source string) (*entity.Account, *entity.Transaction, error) {
	if source == "" {
		source = "Deposit"
	}
	return s.apply(ctx, accountID, entity.KindDeposit, amount, source)
}

// Withdraw debits amount from the account, failing with
// ErrInsufficientFunds when amount exceeds the current balance.
func (s *LedgerService) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, reason string) (*entity.Account, *entity.Transaction, error) {
	if reason == "" {
		reason = "Withdrawal"
	}
	return s.apply(ctx, accountID, entity.KindWithdrawal, amount, reason)
}

func (s *LedgerService) apply(ctx context.Context, accountID string, kind entity.TransactionKind, amount decimal.Decimal, label string) (*entity.Account, *entity.Transaction, error) {
	if !amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}

	now := time.Now().UTC()
	acct, entry, err := s.Store.ApplyTransaction(ctx, accountID, func(a *entity.Account) (*entity.Transaction, error) {
		switch kind {
		case entity.KindDeposit:
			a.Balance = a.Balance.Add(amount)
			a.Inflow = a.Inflow.Add(amount)
			a.RecordActivity(fmt.Sprintf("Deposited $%s", amount), now)
		case entity.KindWithdrawal:
			if amount.GreaterThan(a.Balance) {
				return nil, ErrInsufficientFunds
			}
			a.Balance = a.Balance.Sub(amount)
			a.Outflow = a.Outflow.Add(amount)
			a.RecordActivity(fmt.Sprintf("Withdrew $%s", amount), now)
		default:
			return nil, fmt.Errorf("unsupported transaction kind %q", kind)
		}
		return &entity.Transaction{
			Reference:    uuid.NewString(),
			AccountID:    a.ID,
			Kind:         kind,
			Amount:       amount,
			Description:  label,
			BalanceAfter: a.Balance,
			Status:       entity.StatusSuccessful,
			CreatedAt:    now,
		}, nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrAccountNotFound
		}
		return nil, nil, err
	}

	s.indexEntry(ctx, entry)
	return acct, entry, nil
}

// Balance returns the current balance with the running inflow/outflow
// aggregates. The read runs outside the mutation boundary and is never
// used to feed a write.
func (s *LedgerService) Balance(ctx context.Context, accountID string) (*BalanceSummary, error) {
	a, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &BalanceSummary{
		Name:    a.FullName(),
		Balance: a.Balance,
		Inflow:  a.Inflow,
		Outflow: a.Outflow,
	}, nil
}

// ListTransactions returns the account's ledger, newest first. An empty
// ledger is reported as ErrNoTransactions, matching the original API's
// behavior.
func (s *LedgerService) ListTransactions(ctx context.Context, accountID string) ([]*entity.Transaction, error) {
	entries, err := s.Transactions.ListByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoTransactions
	}
	return entries, nil
}

// indexEntry mirrors a committed ledger entry into Elasticsearch,
// best-effort: failures are logged and never affect the transaction.
func (s *LedgerService) indexEntry(ctx context.Context, t *entity.Transaction) {
	if s.ES == nil || s.ESLedgerIndex == "" {
		return
	}
	b, _ := json.Marshal(t)
	req := esapi.IndexRequest{Index: s.ESLedgerIndex, DocumentID: t.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("entry_id", t.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("entry_id", t.ID).Warn("es index response error")
	}
}

// SearchTransactions runs a full-text query over the caller's ledger
// entries in Elasticsearch.
func (s *LedgerService) SearchTransactions(ctx context.Context, accountID, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESLedgerIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"description^2", "type", "reference"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"account_id": accountID},
				},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESLedgerIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
