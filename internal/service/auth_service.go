package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/reparolabs/repairshop-service/internal/auth"
	"github.com/reparolabs/repairshop-service/internal/config"
	"github.com/reparolabs/repairshop-service/internal/domain"
	"github.com/reparolabs/repairshop-service/internal/ratelimit"
	"github.com/reparolabs/repairshop-service/internal/repository"
	apperrors "github.com/reparolabs/repairshop-service/pkg/util/errorutil"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// TooManyAttemptsError carries the remaining lockout duration for a denied
// login attempt.
type TooManyAttemptsError struct {
	RetryAfter time.Duration
}

func (e *TooManyAttemptsError) Error() string {
	return fmt.Sprintf("too many attempts, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *TooManyAttemptsError) Unwrap() error {
	return domain.ErrTooManyAttempts
}

// LoginResult bundles the authenticated user with the issued session token.
type LoginResult struct {
	User      *domain.User
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// AuthService coordinates login, registration, and session lifecycle.
type AuthService struct {
	users      repository.UserRepository
	audit      repository.AuditRepository
	sessions   auth.SessionStore
	limiter    *ratelimit.Limiter
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo  repository.UserRepository
	AuditRepo repository.AuditRepository
	Sessions  auth.SessionStore
	Limiter   *ratelimit.Limiter
	Logger    *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		audit:      deps.AuditRepo,
		sessions:   deps.Sessions,
		limiter:    deps.Limiter,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     deps.Logger,
	}
}

// Login authenticates a shop account. Unknown email, deactivated account,
// and wrong password are indistinguishable to the caller; every failure is
// counted against the identifier's rate limit.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = ratelimit.Normalize(email)

	decision := s.limiter.Check(ctx, email)
	if !decision.Allowed {
		return nil, &TooManyAttemptsError{RetryAfter: decision.RetryAfter}
	}

	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.failLogin(ctx, email)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active {
		s.failLogin(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.failLogin(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	s.limiter.RecordAttempt(ctx, email, true)

	token, tokenID, expiresAt, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, tokenID, user.ID, s.tokenMgr.TTL()); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, &user.ID, domain.AuditLogin, "user logged in: "+user.Email)
	return &LoginResult{User: user, Token: token, TokenID: tokenID, ExpiresAt: expiresAt}, nil
}

// Register creates a new account. The new account is not logged in.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = ratelimit.Normalize(email)

	if err := validateRegistration(name, email, password, role); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		Role:         role,
		Active:       true,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, &user.ID, domain.AuditRegister, "account registered: "+user.Email)
	return user, nil
}

// Logout revokes the session behind the token ID. Idempotent.
func (s *AuthService) Logout(ctx context.Context, userID, tokenID string) error {
	if err := s.sessions.Delete(ctx, tokenID); err != nil {
		return err
	}
	s.recordAudit(ctx, &userID, domain.AuditLogout, "user logged out")
	return nil
}

// CurrentUser revalidates the session's account against the store. Missing
// or deactivated accounts surface as not found so stale sessions die.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) failLogin(ctx context.Context, email string) {
	s.limiter.RecordAttempt(ctx, email, false)
	s.recordAudit(ctx, nil, domain.AuditLoginFailed, "failed login attempt: "+email)
}

// recordAudit appends to the activity log best-effort; audit failures never
// fail the primary operation.
func (s *AuthService) recordAudit(ctx context.Context, actorID *string, action, description string) {
	entry := &domain.AuditEntry{ActorID: actorID, Action: action, Description: description}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("audit append failed", zap.String("action", action), zap.Error(err))
	}
}

func validateRegistration(name, email, password string, role domain.Role) error {
	details := map[string]any{}
	if len(name) < 3 || len(name) > 100 {
		details["name"] = "must be between 3 and 100 characters"
	}
	if !emailPattern.MatchString(email) {
		details["email"] = "must be a valid email"
	}
	if len(password) < 6 || len(password) > 72 {
		details["password"] = "must be between 6 and 72 characters"
	}
	if !role.Valid() {
		details["role"] = "must be one of: admin, tecnico, atendente"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid registration", details)
	}
	return nil
}
