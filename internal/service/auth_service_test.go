package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/reparolabs/repairshop-service/internal/auth"
	"github.com/reparolabs/repairshop-service/internal/config"
	"github.com/reparolabs/repairshop-service/internal/domain"
	"github.com/reparolabs/repairshop-service/internal/ratelimit"
)

type stubUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	nextID  int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:    map[string]*domain.User{},
		byEmail: map[string]*domain.User{},
	}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	copied := *user
	r.byID[user.ID] = &copied
	r.byEmail[user.Email] = &copied
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	existing, ok := r.byID[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(r.byEmail, existing.Email)
	copied := *user
	r.byID[user.ID] = &copied
	r.byEmail[user.Email] = &copied
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	existing, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(r.byEmail, existing.Email)
	delete(r.byID, id)
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *stubUserRepo) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	out := []domain.User{}
	for _, user := range r.byID {
		out = append(out, *user)
	}
	return out, nil
}

type stubAuditRepo struct {
	entries []domain.AuditEntry
}

func (r *stubAuditRepo) Create(_ context.Context, entry *domain.AuditEntry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubAuditRepo) List(_ context.Context, limit, offset int) ([]domain.AuditEntry, error) {
	return r.entries, nil
}

func (r *stubAuditRepo) has(action string) bool {
	for _, entry := range r.entries {
		if entry.Action == action {
			return true
		}
	}
	return false
}

type authFixture struct {
	service  *AuthService
	users    *stubUserRepo
	audit    *stubAuditRepo
	sessions auth.SessionStore
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
		},
		RateLimit: config.RateLimitConfig{
			MaxAttempts:        5,
			ResetWindowSeconds: 3600,
			LockoutSeconds:     900,
		},
	}

	users := newStubUserRepo()
	audit := &stubAuditRepo{}
	sessions := auth.NewMemorySessionStore()
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), cfg.RateLimit, zap.NewNop())

	svc := NewAuthService(cfg, AuthDependencies{
		UserRepo:  users,
		AuditRepo: audit,
		Sessions:  sessions,
		Limiter:   limiter,
		Logger:    zap.NewNop(),
	})
	return &authFixture{service: svc, users: users, audit: audit, sessions: sessions}
}

func (f *authFixture) seedUser(t *testing.T, email, password string, role domain.Role, active bool) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &domain.User{
		Name:         "Test Account",
		Email:        email,
		Role:         role,
		Active:       active,
		PasswordHash: hash,
	}
	if err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestLoginNormalizesIdentifier(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ana@test.com", "secret123", domain.RoleTechnician, true)

	result, err := f.service.Login(context.Background(), "  ANA@TEST.com  ", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" || result.TokenID == "" {
		t.Fatal("expected token and token id")
	}
	if result.User.Role != domain.RoleTechnician {
		t.Fatalf("role = %s, want tecnico", result.User.Role)
	}

	if _, err := f.sessions.Lookup(context.Background(), result.TokenID); err != nil {
		t.Fatalf("session not created: %v", err)
	}
	if !f.audit.has(domain.AuditLogin) {
		t.Fatal("login audit entry missing")
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "active@test.com", "secret123", domain.RoleAttendant, true)
	f.seedUser(t, "inactive@test.com", "secret123", domain.RoleAttendant, false)

	cases := map[string]struct {
		email    string
		password string
	}{
		"unknown email":       {"ghost@test.com", "secret123"},
		"wrong password":      {"active@test.com", "not-it"},
		"deactivated account": {"inactive@test.com", "secret123"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.service.Login(context.Background(), tc.email, tc.password)
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestLoginLockoutAfterRepeatedFailures(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ana@test.com", "secret123", domain.RoleTechnician, true)

	for i := 0; i < 5; i++ {
		if _, err := f.service.Login(context.Background(), "ana@test.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: err = %v, want ErrInvalidCredentials", i+1, err)
		}
	}

	// Even the correct password is refused while locked out.
	_, err := f.service.Login(context.Background(), "ana@test.com", "secret123")
	var tooMany *TooManyAttemptsError
	if !errors.As(err, &tooMany) {
		t.Fatalf("err = %v, want TooManyAttemptsError", err)
	}
	if tooMany.RetryAfter <= 0 {
		t.Fatalf("retry after = %v, want positive", tooMany.RetryAfter)
	}
	if !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatal("error should unwrap to ErrTooManyAttempts")
	}
}

func TestLoginSuccessResetsAttemptCounter(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ana@test.com", "secret123", domain.RoleTechnician, true)

	for i := 0; i < 4; i++ {
		_, _ = f.service.Login(context.Background(), "ana@test.com", "wrong")
	}
	if _, err := f.service.Login(context.Background(), "ana@test.com", "secret123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// Counter was cleared, so four more failures do not lock out.
	for i := 0; i < 4; i++ {
		if _, err := f.service.Login(context.Background(), "ana@test.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: err = %v, want ErrInvalidCredentials", i+1, err)
		}
	}
}

func TestRegisterNormalizesAndRejectsDuplicates(t *testing.T) {
	f := newAuthFixture(t)

	user, err := f.service.Register(context.Background(), "Ana Souza", "ANA@Test.com", "secret123", domain.RoleTechnician)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "ana@test.com" {
		t.Fatalf("email = %q, want lowercase", user.Email)
	}
	if !user.Active {
		t.Fatal("new accounts start active")
	}

	if _, err := f.service.Register(context.Background(), "Other", "ana@test.com", "secret123", domain.RoleAttendant); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture(t)

	cases := map[string]struct {
		name     string
		email    string
		password string
		role     domain.Role
	}{
		"short name":     {"Al", "al@test.com", "secret123", domain.RoleAttendant},
		"bad email":      {"Alice", "not-an-email", "secret123", domain.RoleAttendant},
		"short password": {"Alice", "alice@test.com", "12345", domain.RoleAttendant},
		"unknown role":   {"Alice", "alice@test.com", "secret123", domain.Role("manager")},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := f.service.Register(context.Background(), tc.name, tc.email, tc.password, tc.role); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ana@test.com", "secret123", domain.RoleTechnician, true)

	result, err := f.service.Login(context.Background(), "ana@test.com", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := f.service.Logout(context.Background(), result.User.ID, result.TokenID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := f.sessions.Lookup(context.Background(), result.TokenID); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("session lookup err = %v, want ErrSessionNotFound", err)
	}

	// Logging out again is a no-op, not an error.
	if err := f.service.Logout(context.Background(), result.User.ID, result.TokenID); err != nil {
		t.Fatalf("repeat logout failed: %v", err)
	}
}

func TestCurrentUserRejectsDeactivatedAccount(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "ana@test.com", "secret123", domain.RoleTechnician, true)

	if _, err := f.service.CurrentUser(context.Background(), user.ID); err != nil {
		t.Fatalf("current user failed: %v", err)
	}

	user.Active = false
	if err := f.users.Update(context.Background(), user); err != nil {
		t.Fatalf("update user: %v", err)
	}
	if _, err := f.service.CurrentUser(context.Background(), user.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
