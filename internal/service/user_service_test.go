package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/reparolabs/repairshop-service/internal/auth"
	"github.com/reparolabs/repairshop-service/internal/domain"
)

func newUserFixture(t *testing.T) (*UserService, *stubUserRepo, *stubAuditRepo) {
	t.Helper()
	users := newStubUserRepo()
	audit := &stubAuditRepo{}
	return NewUserService(users, audit, 4, zap.NewNop()), users, audit
}

func seedAccount(t *testing.T, users *stubUserRepo, email string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{Name: "Conta Teste", Email: email, Role: role, Active: true, PasswordHash: "x"}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return user
}

func TestUpdateUserDeactivates(t *testing.T) {
	svc, users, audit := newUserFixture(t)
	account := seedAccount(t, users, "tec@test.com", domain.RoleTechnician)

	updated, err := svc.UpdateUser(context.Background(), "admin-1", account.ID, UserUpdateInput{
		Name:   "Conta Teste",
		Role:   domain.RoleAttendant,
		Active: false,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Active {
		t.Fatal("account still active")
	}
	if updated.Role != domain.RoleAttendant {
		t.Fatalf("role = %s, want atendente", updated.Role)
	}
	if !audit.has(domain.AuditUserUpdated) {
		t.Fatal("update audit entry missing")
	}
}

func TestUpdateUserRejectsUnknownRole(t *testing.T) {
	svc, users, _ := newUserFixture(t)
	account := seedAccount(t, users, "tec@test.com", domain.RoleTechnician)

	if _, err := svc.UpdateUser(context.Background(), "admin-1", account.ID, UserUpdateInput{
		Name: "Conta Teste",
		Role: domain.Role("manager"),
	}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestResetPasswordStoresNewHash(t *testing.T) {
	svc, users, _ := newUserFixture(t)
	account := seedAccount(t, users, "tec@test.com", domain.RoleTechnician)

	if err := svc.ResetPassword(context.Background(), "admin-1", account.ID, "novasenha"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	stored, err := users.GetByID(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if err := auth.ComparePassword(stored.PasswordHash, "novasenha"); err != nil {
		t.Fatalf("new password does not verify: %v", err)
	}
}

func TestDeleteUserRefusesSelf(t *testing.T) {
	svc, users, _ := newUserFixture(t)
	account := seedAccount(t, users, "admin@test.com", domain.RoleAdmin)

	if err := svc.DeleteUser(context.Background(), account.ID, account.ID); !errors.Is(err, domain.ErrSelfDelete) {
		t.Fatalf("err = %v, want ErrSelfDelete", err)
	}

	other := seedAccount(t, users, "outro@test.com", domain.RoleAttendant)
	if err := svc.DeleteUser(context.Background(), account.ID, other.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.GetUser(context.Background(), other.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after delete", err)
	}
}
