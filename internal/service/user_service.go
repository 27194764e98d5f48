package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/reparolabs/repairshop-service/internal/auth"
	"github.com/reparolabs/repairshop-service/internal/domain"
	"github.com/reparolabs/repairshop-service/internal/repository"
	apperrors "github.com/reparolabs/repairshop-service/pkg/util/errorutil"
)

// UserService covers administrator-only account management.
type UserService struct {
	users      repository.UserRepository
	audit      repository.AuditRepository
	bcryptCost int
	logger     *zap.Logger
}

// UserUpdateInput describes admin update payload.
type UserUpdateInput struct {
	Name   string
	Role   domain.Role
	Active bool
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, audit repository.AuditRepository, bcryptCost int, logger *zap.Logger) *UserService {
	return &UserService{users: users, audit: audit, bcryptCost: bcryptCost, logger: logger}
}

// ListUsers returns paginated accounts.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return s.users.List(ctx, limit, offset)
}

// GetUser fetches one account.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getUser(ctx, id)
}

// UpdateUser changes name, role, or active flag. Deactivation is the
// soft-delete path; existing sessions die at the middleware on next use.
func (s *UserService) UpdateUser(ctx context.Context, actorID, id string, input UserUpdateInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	if len(name) < 3 || len(name) > 100 {
		return nil, apperrors.NewValidationError("invalid user update", map[string]any{"name": "must be between 3 and 100 characters"})
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid user update", map[string]any{"role": "must be one of: admin, tecnico, atendente"})
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = name
	user.Role = input.Role
	user.Active = input.Active
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, domain.AuditUserUpdated, "account updated: "+user.Email)
	return user, nil
}

// ResetPassword sets a new password for the account.
func (s *UserService) ResetPassword(ctx context.Context, actorID, id, newPassword string) error {
	if len(newPassword) < 6 || len(newPassword) > 72 {
		return apperrors.NewValidationError("invalid password", map[string]any{"password": "must be between 6 and 72 characters"})
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.recordAudit(ctx, actorID, domain.AuditUserUpdated, "password reset: "+user.Email)
	return nil
}

// DeleteUser hard-deletes an account. Admins cannot delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return domain.ErrSelfDelete
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.recordAudit(ctx, actorID, domain.AuditUserDeleted, "account deleted: "+user.Email)
	return nil
}

func (s *UserService) getUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) recordAudit(ctx context.Context, actorID, action, description string) {
	entry := &domain.AuditEntry{ActorID: &actorID, Action: action, Description: description}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("audit append failed", zap.String("action", action), zap.Error(err))
	}
}
