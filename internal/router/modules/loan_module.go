package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vaultbank/vault-backend/internal/container"
	handlers "github.com/vaultbank/vault-backend/internal/interface/http"
	"github.com/vaultbank/vault-backend/internal/interface/middleware"
	"github.com/vaultbank/vault-backend/pkg/helpers"
)

type LoanModule struct {
	Handler *handlers.LoanHandler
	JWT     *helpers.JWTManager
}

func NewLoanModule(h *handlers.LoanHandler, jwt *helpers.JWTManager) *LoanModule {
	return &LoanModule{Handler: h, JWT: jwt}
}

func (m *LoanModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/loans/loan-request", m.Handler.RequestLoan)
	}

	admin := rg.Group("/")
	admin.Use(middleware.Auth(container.GetRedis(), m.JWT), middleware.RequireAdmin())
	{
		admin.GET("/loans", m.Handler.ListLoans)
	}
}
