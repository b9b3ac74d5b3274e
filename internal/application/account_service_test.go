package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vaultbank/vault-backend/internal/application"
	"github.com/vaultbank/vault-backend/internal/domain/entity"
	"github.com/vaultbank/vault-backend/internal/domain/repository"
	"github.com/vaultbank/vault-backend/internal/infrastructure/memory"
	"github.com/vaultbank/vault-backend/pkg/helpers"
	"github.com/vaultbank/vault-backend/pkg/mailer"
)

// capturePub records published email jobs in-process.
type capturePub struct {
	jobs []mailer.EmailJob
}

func (p *capturePub) PublishJSON(_ context.Context, body any) error {
	if job, ok := body.(mailer.EmailJob); ok {
		p.jobs = append(p.jobs, job)
	}
	return nil
}

func newAccountService(t *testing.T) (*application.AccountService, *memory.Store, *capturePub) {
	t.Helper()
	store := memory.NewStore()
	pub := &capturePub{}
	svc := &application.AccountService{
		Accounts:   store,
		JWT:        helpers.NewJWTManager("test-secret", time.Hour),
		Pub:        pub,
		SessionTTL: time.Hour,
		ResetTTL:   15 * time.Minute,
		ResetURL:   "http://localhost/reset-password",
		BankName:   "Vault Bank",
	}
	return svc, store, pub
}

func registerInput(email string) application.RegisterInput {
	return application.RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phone:     "+15550001111",
		Email:     email,
		Password:  "password123",
	}
}

func TestRegisterCreatesCustomerAccount(t *testing.T) {
	svc, _, pub := newAccountService(t)
	ctx := context.Background()

	a, err := svc.Register(ctx, registerInput("Ada@Example.com "))
	if err != nil {
		t.Fatal(err)
	}
	if a.Role != entity.RoleCustomer {
		t.Fatalf("role=%q want=%q", a.Role, entity.RoleCustomer)
	}
	if a.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %q", a.Email)
	}
	if len(a.AccountNumber) != 10 || a.AccountNumber[0] == '0' {
		t.Fatalf("account number %q: want 10 digits with non-zero lead", a.AccountNumber)
	}
	if !a.Balance.IsZero() {
		t.Fatalf("balance=%s want=0", a.Balance)
	}
	if a.PasswordHash == "password123" {
		t.Fatal("password stored in clear")
	}

	if len(pub.jobs) != 1 || pub.jobs[0].Template != "welcome" {
		t.Fatalf("want one welcome email, got %+v", pub.jobs)
	}
	if pub.jobs[0].Data["AccountNumber"] != a.AccountNumber {
		t.Fatalf("welcome email missing account number: %+v", pub.jobs[0].Data)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAccountService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput("ada@example.com")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register(ctx, registerInput("ADA@example.com")); !errors.Is(err, application.ErrDuplicateEmail) {
		t.Fatalf("want ErrDuplicateEmail, got %v", err)
	}
}

// collideRepo forces account-number collisions on the first creates.
type collideRepo struct {
	repository.AccountRepository
	remaining int
	attempts  int
}

func (r *collideRepo) Create(ctx context.Context, a *entity.Account) error {
	r.attempts++
	if r.remaining > 0 {
		r.remaining--
		return repository.ErrDuplicateAccountNumber
	}
	return r.AccountRepository.Create(ctx, a)
}

func TestRegisterRetriesAccountNumberCollision(t *testing.T) {
	svc, store, _ := newAccountService(t)
	repo := &collideRepo{AccountRepository: store, remaining: 3}
	svc.Accounts = repo

	a, err := svc.Register(context.Background(), registerInput("ada@example.com"))
	if err != nil {
		t.Fatal(err)
	}
	if repo.attempts != 4 {
		t.Fatalf("attempts=%d want=4", repo.attempts)
	}
	if a.ID == "" {
		t.Fatal("account not created after retries")
	}
}

func TestRegisterGivesUpAfterRepeatedCollisions(t *testing.T) {
	svc, store, _ := newAccountService(t)
	svc.Accounts = &collideRepo{AccountRepository: store, remaining: 100}

	if _, err := svc.Register(context.Background(), registerInput("ada@example.com")); err == nil {
		t.Fatal("want error after exhausted retries")
	}
}

func TestLoginRecordsActivityAndIssuesToken(t *testing.T) {
	svc, store, _ := newAccountService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, registerInput("ada@example.com"))
	if err != nil {
		t.Fatal(err)
	}

	a, token, exp, err := svc.Login(ctx, "ada@example.com", "password123")
	if err != nil {
		t.Fatal(err)
	}
	if token == "" || !exp.After(time.Now()) {
		t.Fatalf("bad token issuance: token=%q exp=%v", token, exp)
	}
	if len(a.Activities) == 0 || a.Activities[0].Action != "Login into dashboard" {
		t.Fatalf("login activity missing: %+v", a.Activities)
	}

	claims, err := svc.JWT.ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != reg.ID || claims.Role != entity.RoleCustomer || claims.SessionID == "" {
		t.Fatalf("claims=%+v", claims)
	}

	stored, err := store.GetByID(ctx, reg.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Activities) == 0 {
		t.Fatal("activity not persisted")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newAccountService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput("ada@example.com")); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := svc.Login(ctx, "ada@example.com", "wrong"); !errors.Is(err, application.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, application.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestResetFlowIsSingleUse(t *testing.T) {
	svc, store, pub := newAccountService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, registerInput("ada@example.com"))
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.RequestReset(ctx, "ada@example.com"); err != nil {
		t.Fatal(err)
	}

	stored, err := store.GetByID(ctx, reg.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.ResetToken == nil || stored.ResetExpires == nil {
		t.Fatal("reset token not stored")
	}
	token := *stored.ResetToken

	if err := svc.ResolveReset(ctx, token, "newpassword1"); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := svc.Login(ctx, "ada@example.com", "newpassword1"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "ada@example.com", "password123"); !errors.Is(err, application.ErrInvalidCredentials) {
		t.Fatalf("old password still valid: %v", err)
	}

	// replaying the consumed token must fail
	if err := svc.ResolveReset(ctx, token, "another1"); !errors.Is(err, application.ErrInvalidOrExpiredToken) {
		t.Fatalf("want ErrInvalidOrExpiredToken, got %v", err)
	}

	var templates []string
	for _, j := range pub.jobs {
		templates = append(templates, j.Template)
	}
	want := []string{"welcome", "reset_link", "reset_confirmation"}
	if len(templates) != len(want) {
		t.Fatalf("emails=%v want=%v", templates, want)
	}
	for i := range want {
		if templates[i] != want[i] {
			t.Fatalf("emails=%v want=%v", templates, want)
		}
	}
}

func TestResetRejectsExpiredToken(t *testing.T) {
	svc, store, _ := newAccountService(t)
	svc.ResetTTL = -time.Minute // issued already expired
	ctx := context.Background()

	reg, err := svc.Register(ctx, registerInput("ada@example.com"))
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.RequestReset(ctx, "ada@example.com"); err != nil {
		t.Fatal(err)
	}
	stored, err := store.GetByID(ctx, reg.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.ResolveReset(ctx, *stored.ResetToken, "newpassword1"); !errors.Is(err, application.ErrInvalidOrExpiredToken) {
		t.Fatalf("want ErrInvalidOrExpiredToken, got %v", err)
	}
}

func TestResetRequestUnknownEmail(t *testing.T) {
	svc, _, _ := newAccountService(t)
	if err := svc.RequestReset(context.Background(), "nobody@example.com"); !errors.Is(err, application.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}

func TestRequestResetOverwritesPendingToken(t *testing.T) {
	svc, store, _ := newAccountService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, registerInput("ada@example.com"))
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.RequestReset(ctx, "ada@example.com"); err != nil {
		t.Fatal(err)
	}
	first, _ := store.GetByID(ctx, reg.ID)
	if err := svc.RequestReset(ctx, "ada@example.com"); err != nil {
		t.Fatal(err)
	}
	second, _ := store.GetByID(ctx, reg.ID)

	if *first.ResetToken == *second.ResetToken {
		t.Fatal("second request should mint a fresh token")
	}
	// the superseded token is dead
	if err := svc.ResolveReset(ctx, *first.ResetToken, "newpassword1"); !errors.Is(err, application.ErrInvalidOrExpiredToken) {
		t.Fatalf("want ErrInvalidOrExpiredToken, got %v", err)
	}
}
