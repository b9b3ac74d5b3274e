package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/vaultbank/vault-backend/internal/domain/entity"
	repo "github.com/vaultbank/vault-backend/internal/domain/repository"
	"github.com/vaultbank/vault-backend/pkg/helpers"
	"github.com/vaultbank/vault-backend/pkg/mailer"
)

const accountNumberAttempts = 5

// EmailPublisher enqueues outbound email jobs. Satisfied by
// helpers.RabbitPublisher; nil disables mail entirely.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AccountService covers registration, login, sessions and the password
// reset flow. All emails it sends are best-effort: a publish failure is
// logged and never fails the primary operation.
type AccountService struct {
	Accounts repo.AccountRepository
	JWT      *helpers.JWTManager
	Redis    *redis.Client
	Logger   *logrus.Logger
	Pub      EmailPublisher

	SessionTTL time.Duration
	ResetTTL   time.Duration
	ResetURL   string
	BankName   string
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Password  string
}

// NormalizeEmail is the single email canonicalization policy: lookups and
// the unique index always see the lowercased, trimmed form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account with a zero balance and a fresh account
// number, retrying number generation on collision, and sends the welcome
// email.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*entity.Account, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := &entity.Account{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		Email:        NormalizeEmail(in.Email),
		Role:         entity.RoleCustomer,
		PasswordHash: hash,
	}

	for attempt := 0; ; attempt++ {
		a.AccountNumber, err = helpers.GenerateAccountNumber()
		if err != nil {
			return nil, fmt.Errorf("generate account number: %w", err)
		}
		err = s.Accounts.Create(ctx, a)
		if err == nil {
			break
		}
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		if errors.Is(err, repo.ErrDuplicateAccountNumber) && attempt < accountNumberAttempts-1 {
			continue
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.publishEmail(ctx, mailer.EmailJob{
		To:       a.Email,
		Template: "welcome",
		Data: map[string]any{
			"Name":          a.FullName(),
			"AccountNumber": a.AccountNumber,
			"BankName":      s.BankName,
		},
	})
	return a, nil
}

// Authenticate validates email/password and records the login in the
// bounded activity log.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*entity.Account, error) {
	a, err := s.Accounts.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(a.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	a.RecordActivity("Login into dashboard", time.Now().UTC())
	if err := s.Accounts.SaveActivities(ctx, a.ID, a.Activities); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("account_id", a.ID).Warn("record login activity failed")
	}
	return a, nil
}

// IssueToken generates the bearer session token and records the session
// in Redis.
func (s *AccountService) IssueToken(ctx context.Context, a *entity.Account) (string, time.Time, error) {
	sid := uuid.NewString()
	token, exp, err := s.JWT.GenerateToken(a.ID, a.Role, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", a.ID).Error("generate session token failed")
		}
		return "", time.Time{}, err
	}

	if s.Redis != nil {
		key := helpers.SessionKey(a.ID)
		fields := map[string]any{
			"user_id":    a.ID,
			"email":      a.Email,
			"name":       a.FullName(),
			"role":       a.Role,
			"sid":        sid,
			"created_at": time.Now().UTC().Format(time.RFC3339Nano),
		}
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, s.SessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}
	return token, exp, nil
}

// Login is Authenticate plus token issuance.
func (s *AccountService) Login(ctx context.Context, email, password string) (*entity.Account, string, time.Time, error) {
	a, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	token, exp, err := s.IssueToken(ctx, a)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return a, token, exp, nil
}

// Profile returns the account for display.
func (s *AccountService) Profile(ctx context.Context, id string) (*entity.Account, error) {
	a, err := s.Accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return a, nil
}

// ListCustomers returns all non-admin accounts for the admin listing.
func (s *AccountService) ListCustomers(ctx context.Context) ([]*entity.Account, error) {
	return s.Accounts.ListCustomers(ctx)
}

// RequestReset starts the password-reset state machine: it stores a fresh
// single-use token with its expiry (overwriting any pending reset) and
// mails the reset link. Validity is judged at resolution time.
func (s *AccountService) RequestReset(ctx context.Context, email string) error {
	a, err := s.Accounts.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	token, err := helpers.GenerateResetToken(32)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	expires := time.Now().UTC().Add(s.ResetTTL)
	if err := s.Accounts.SetResetToken(ctx, a.ID, token, expires); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	s.publishEmail(ctx, mailer.EmailJob{
		To:       a.Email,
		Template: "reset_link",
		Data: map[string]any{
			"Name":      a.FirstName,
			"ResetURL":  strings.TrimRight(s.ResetURL, "/") + "/" + token,
			"ExpiresIn": s.ResetTTL.String(),
			"BankName":  s.BankName,
		},
	})
	return nil
}

// ResolveReset consumes a reset token: the credential swap and the token
// clear are one atomic step in the repository, so a second resolution of
// the same token fails with ErrInvalidOrExpiredToken.
func (s *AccountService) ResolveReset(ctx context.Context, token, newPassword string) error {
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	a, err := s.Accounts.ResolveReset(ctx, token, hash, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}

	s.publishEmail(ctx, mailer.EmailJob{
		To:       a.Email,
		Template: "reset_confirmation",
		Data: map[string]any{
			"Name":     a.FirstName,
			"BankName": s.BankName,
		},
	})
	return nil
}

func (s *AccountService) publishEmail(ctx context.Context, job mailer.EmailJob) {
	if s.Pub == nil {
		return
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"to":       job.To,
			"template": job.Template,
		}).Warn("failed to publish email job")
	}
}
