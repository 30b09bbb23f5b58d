package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
	}{
		{"SDE", RoleSDE},
		{"sde", RoleSDE},
		{"Data Analyst", RoleDataAnalyst},
		{"analyst", RoleDataAnalyst},
		{" data scientist ", RoleDataScientist},
		{"ml", RoleMLEngineer},
		{"ML Engineer", RoleMLEngineer},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.input)
		if err != nil {
			t.Errorf("ParseRole(%q): unexpected error %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q): got %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseRoleRejectsUnknown(t *testing.T) {
	_, err := ParseRole("Product Manager")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("ParseRole: got %v, want ErrValidation", err)
	}
	if Role("Product Manager").Valid() {
		t.Error("Valid: got true for unknown role")
	}
}

func TestRoleCatalogMatchesRoles(t *testing.T) {
	if len(RoleCatalog) != len(Roles) {
		t.Fatalf("RoleCatalog: got %d entries, want %d", len(RoleCatalog), len(Roles))
	}
	for i, info := range RoleCatalog {
		if info.Role != Roles[i] {
			t.Errorf("RoleCatalog[%d]: got %q, want %q", i, info.Role, Roles[i])
		}
	}
}

func TestIdentityHelpers(t *testing.T) {
	var nilID *Identity
	if nilID.HasRole() {
		t.Error("nil identity: HasRole got true")
	}

	id := &Identity{Name: "Ada Lovelace"}
	if id.HasRole() {
		t.Error("HasRole: got true before role selection")
	}
	if got := id.FirstName(); got != "Ada" {
		t.Errorf("FirstName: got %q, want %q", got, "Ada")
	}
	id.Role = RoleSDE
	if !id.HasRole() {
		t.Error("HasRole: got false after role set")
	}
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{0, 5, 0},
		{1, 3, 33},
		{2, 3, 67},
		{5, 5, 100},
	}
	for _, tt := range tests {
		if got := ProgressPercent(tt.completed, tt.total); got != tt.want {
			t.Errorf("ProgressPercent(%d, %d): got %d, want %d", tt.completed, tt.total, got, tt.want)
		}
	}
}

func TestErrorTaxonomyMatching(t *testing.T) {
	authErr := fmt.Errorf("logging in: %w", &AuthError{Message: "Invalid email or password"})
	if !errors.Is(authErr, ErrUnauthorized) {
		t.Error("AuthError: errors.Is(ErrUnauthorized) got false")
	}
	var ae *AuthError
	if !errors.As(authErr, &ae) || ae.Message != "Invalid email or password" {
		t.Errorf("AuthError: message not preserved, got %v", authErr)
	}

	cause := errors.New("connection refused")
	svcErr := &ServiceError{Op: "run code", Err: cause}
	if !errors.Is(svcErr, ErrService) {
		t.Error("ServiceError: errors.Is(ErrService) got false")
	}
	if !errors.Is(svcErr, cause) {
		t.Error("ServiceError: cause not unwrapped")
	}
	if errors.Is(svcErr, ErrUnauthorized) {
		t.Error("ServiceError: matched ErrUnauthorized")
	}
}
