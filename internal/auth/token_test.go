package auth

import (
	"testing"

	"github.com/reparolabs/repairshop-service/internal/domain"
)

func TestTokenManager_GenerateAndParse(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	user := &domain.User{ID: "user-1", Role: domain.RoleTechnician}

	token, tokenID, expiresAt, err := tm.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if token == "" || tokenID == "" {
		t.Fatalf("expected token and token id")
	}
	if expiresAt.IsZero() {
		t.Fatalf("expected expiry")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("unexpected user id %q", claims.UserID)
	}
	if claims.Role != domain.RoleTechnician {
		t.Fatalf("unexpected role %q", claims.Role)
	}
	if claims.ID != tokenID {
		t.Fatalf("token id mismatch: %q vs %q", claims.ID, tokenID)
	}
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 60)
	verifier := NewTokenManager("secret-b", 60)

	token, _, _, err := issuer.GenerateToken(&domain.User{ID: "user-1", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatalf("expected parse failure with wrong secret")
	}
}

func TestRole_CanAccess(t *testing.T) {
	if !domain.RoleAdmin.CanAccess(domain.RoleAdmin, domain.RoleTechnician) {
		t.Fatalf("admin should access admin set")
	}
	if domain.RoleAttendant.CanAccess(domain.RoleAdmin) {
		t.Fatalf("attendant must not pass admin-only gate")
	}
	if !domain.RoleAttendant.CanAccess() {
		t.Fatalf("empty allowed set admits any authenticated role")
	}
}
