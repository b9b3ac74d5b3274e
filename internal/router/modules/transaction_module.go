package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vaultbank/vault-backend/internal/container"
	handlers "github.com/vaultbank/vault-backend/internal/interface/http"
	"github.com/vaultbank/vault-backend/internal/interface/middleware"
	"github.com/vaultbank/vault-backend/pkg/helpers"
)

// TransactionModule registers the authenticated money-movement and ledger
// endpoints. Every route requires a live session.
type TransactionModule struct {
	Handler *handlers.TransactionHandler
	JWT     *helpers.JWTManager
}

func NewTransactionModule(h *handlers.TransactionHandler, jwt *helpers.JWTManager) *TransactionModule {
	return &TransactionModule{Handler: h, JWT: jwt}
}

func (m *TransactionModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/deposit", m.Handler.Deposit)
		auth.POST("/withdraw", m.Handler.Withdraw)
		auth.GET("/balance", m.Handler.Balance)
		auth.GET("/transactions", m.Handler.Transactions)
		// Search ledger entries via Elasticsearch
		auth.GET("/transactions/search", m.Handler.Search)
	}
}
