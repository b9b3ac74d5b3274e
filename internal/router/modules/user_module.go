package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vaultbank/vault-backend/internal/container"
	handlers "github.com/vaultbank/vault-backend/internal/interface/http"
	"github.com/vaultbank/vault-backend/internal/interface/middleware"
	"github.com/vaultbank/vault-backend/pkg/helpers"
)

// UserModule wires the profile endpoint and the admin account surface.
// Protected: GET /api/profile
// Admin: GET /api/users, PUT /api/users/:id/increase-balance
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/profile", m.Handler.Profile)
	}

	admin := rg.Group("/")
	admin.Use(middleware.Auth(container.GetRedis(), m.JWT), middleware.RequireAdmin())
	{
		admin.GET("/users", m.Handler.ListUsers)
		admin.PUT("/users/:id/increase-balance", m.Handler.IncreaseBalance)
	}
}
