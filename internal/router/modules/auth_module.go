package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vaultbank/vault-backend/internal/container"
	handlers "github.com/vaultbank/vault-backend/internal/interface/http"
	"github.com/vaultbank/vault-backend/internal/interface/middleware"
)

// AuthModule registers the public account lifecycle endpoints:
// registration, login and the password reset pair.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil) // 10 req/min per IP
	forgotLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/forgot-password", forgotLimiter, m.Handler.ForgotPassword)
	rg.POST("/reset-password/:token", resetLimiter, m.Handler.ResetPassword)
}
