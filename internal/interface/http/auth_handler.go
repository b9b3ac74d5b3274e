package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vaultbank/vault-backend/internal/application"
	"github.com/vaultbank/vault-backend/internal/domain/entity"
	"github.com/vaultbank/vault-backend/pkg/response"
	"github.com/vaultbank/vault-backend/pkg/validation"
)

// AuthHandler serves registration, login and the password reset flow.
type AuthHandler struct {
	Svc    *application.AccountService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AccountService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,pwd"`
}

func accountPayload(a *entity.Account) gin.H {
	return gin.H{
		"id":              a.ID,
		"firstName":       a.FirstName,
		"lastName":        a.LastName,
		"fullName":        a.FullName(),
		"email":           a.Email,
		"phone":           a.Phone,
		"role":            a.Role,
		"accountNumber":   a.AccountNumber,
		"balance":         a.Balance,
		"loginActivities": a.Activities,
	}
}

// Register POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "all fields are required", validation.ToDetails(err))
		return
	}

	a, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		if errors.Is(err, application.ErrDuplicateEmail) {
			response.Error[any](c, http.StatusBadRequest, "user already exists", nil)
			return
		}
		h.Logger.WithError(err).Error("registration failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}

	token, exp, err := h.Svc.IssueToken(c.Request.Context(), a)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}

	data := accountPayload(a)
	data["token"] = token
	response.Success(c, http.StatusCreated, data, "account created", gin.H{"token_expires_at": exp.Format(time.RFC3339)})
}

// Login POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	a, token, exp, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error[any](c, http.StatusUnauthorized, "invalid email or password", nil)
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}

	data := accountPayload(a)
	data["token"] = token
	response.Success(c, http.StatusOK, data, "login successful", gin.H{"token_expires_at": exp.Format(time.RFC3339)})
}

// ForgotPassword POST /api/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.RequestReset(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, application.ErrAccountNotFound) {
			response.Error[any](c, http.StatusNotFound, "no account found with that email", nil)
			return
		}
		h.Logger.WithError(err).Error("reset request failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password reset link sent to your email", nil)
}

// ResetPassword POST /api/reset-password/:token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.ResolveReset(c.Request.Context(), c.Param("token"), req.NewPassword); err != nil {
		if errors.Is(err, application.ErrInvalidOrExpiredToken) {
			response.Error[any](c, http.StatusBadRequest, "invalid or expired reset link", nil)
			return
		}
		h.Logger.WithError(err).Error("reset failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password has been reset successfully", nil)
}
