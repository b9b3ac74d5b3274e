package router

import (
	"github.com/vaultbank/vault-backend/internal/application"
	"github.com/vaultbank/vault-backend/internal/container"
	pginfra "github.com/vaultbank/vault-backend/internal/infrastructure/postgres"
	handlers "github.com/vaultbank/vault-backend/internal/interface/http"
	"github.com/vaultbank/vault-backend/internal/router/modules"
)

type moduleDeps struct {
	Accounts *application.AccountService
	Ledger   *application.LedgerService

	Auth        *handlers.AuthHandler
	Transaction *handlers.TransactionHandler
	User        *handlers.UserHandler
	Loan        *handlers.LoanHandler
}

func buildDeps() moduleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	accountRepo := pginfra.NewAccountRepository(pool)
	ledgerStore := pginfra.NewLedgerStore(pool)
	txnRepo := pginfra.NewTransactionRepository(pool)

	accountSvc := &application.AccountService{
		Accounts:   accountRepo,
		JWT:        container.GetJWT(),
		Redis:      container.GetRedis(),
		Logger:     logger,
		SessionTTL: cfg.SessionTTL,
		ResetTTL:   cfg.ResetTokenTTL,
		ResetURL:   cfg.ResetPasswordURL,
		BankName:   cfg.BankName,
	}
	if pub := container.GetRabbitPub(); pub != nil {
		accountSvc.Pub = pub
	}

	ledgerSvc := application.NewLedgerService(
		ledgerStore,
		accountRepo,
		txnRepo,
		logger,
		container.GetES(),
		cfg.ESLedgerIndex,
	)

	return moduleDeps{
		Accounts:    accountSvc,
		Ledger:      ledgerSvc,
		Auth:        handlers.NewAuthHandler(accountSvc, logger),
		Transaction: handlers.NewTransactionHandler(ledgerSvc, logger),
		User:        handlers.NewUserHandler(accountSvc, ledgerSvc, logger),
		Loan:        handlers.NewLoanHandler(logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildDeps()
	jwt := container.GetJWT()

	r.Add(modules.NewAuthModule(deps.Auth))
	r.Add(modules.NewTransactionModule(deps.Transaction, jwt))
	r.Add(modules.NewUserModule(deps.User, jwt))
	r.Add(modules.NewLoanModule(deps.Loan, jwt))
	r.Add(modules.NewDebugModule())
}
