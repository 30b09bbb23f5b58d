package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/skillforge-dev/skillforge/internal/api"
	"github.com/skillforge-dev/skillforge/internal/domain"
)

type memStore struct {
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (m *memStore) Get(key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) Set(key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memStore) Delete(key string) error {
	delete(m.values, key)
	return nil
}

type fakeBackend struct {
	calls      int
	loginErr   error
	profile    *domain.Identity
	profileErr error
	roleErr    error
	result     *api.AuthResult
	gotRole    domain.Role
}

func (f *fakeBackend) Login(_ context.Context, _, _ string) (*api.AuthResult, error) {
	f.calls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.result, nil
}

func (f *fakeBackend) Register(_ context.Context, name, email, _ string) (*api.AuthResult, error) {
	f.calls++
	return &api.AuthResult{Token: "new-token", User: domain.Identity{ID: "u2", Name: name, Email: email, Level: domain.LevelBeginner}}, nil
}

func (f *fakeBackend) Profile(_ context.Context, _ string) (*domain.Identity, error) {
	f.calls++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	id := *f.profile
	return &id, nil
}

func (f *fakeBackend) UpdateRole(_ context.Context, _ string, role domain.Role) error {
	f.calls++
	f.gotRole = role
	return f.roleErr
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func TestGuardStartsLoading(t *testing.T) {
	g := NewGuard(&fakeBackend{}, newMemStore(), nil)
	if g.Status() != StatusLoading {
		t.Errorf("Status: got %v, want loading", g.Status())
	}
	if d := g.Decide(ScreenCatalog); d.Verdict != Wait {
		t.Errorf("Decide while loading: got %+v, want Wait", d)
	}
}

func TestInitWithoutTokenIsUnauthenticated(t *testing.T) {
	backend := &fakeBackend{}
	g := NewGuard(backend, newMemStore(), nil)

	if got := g.Init(t.Context()); got != StatusUnauthenticated {
		t.Errorf("Init: got %v, want unauthenticated", got)
	}
	if backend.calls != 0 {
		t.Errorf("backend calls: got %d, want 0", backend.calls)
	}
}

func TestInitRestoresSession(t *testing.T) {
	store := newMemStore()
	store.values[tokenKey] = "opaque-token"
	backend := &fakeBackend{profile: &domain.Identity{ID: "u1", Name: "Ada", Role: domain.RoleSDE}}
	g := NewGuard(backend, store, nil)

	if got := g.Init(t.Context()); got != StatusComplete {
		t.Fatalf("Init: got %v, want complete", got)
	}
	if g.Token() != "opaque-token" {
		t.Errorf("Token: got %q", g.Token())
	}
	if g.Landing() != ScreenCatalog {
		t.Errorf("Landing: got %v, want catalog", g.Landing())
	}
}

func TestInitRejectedTokenIsCleared(t *testing.T) {
	store := newMemStore()
	store.values[tokenKey] = "opaque-token"
	backend := &fakeBackend{profileErr: &domain.AuthError{Message: "Invalid token"}}
	g := NewGuard(backend, store, nil)

	if got := g.Init(t.Context()); got != StatusUnauthenticated {
		t.Errorf("Init: got %v, want unauthenticated", got)
	}
	if _, ok := store.values[tokenKey]; ok {
		t.Error("persisted token not cleared")
	}
}

func TestInitExpiredJWTSkipsNetwork(t *testing.T) {
	store := newMemStore()
	store.values[tokenKey] = signedToken(t, time.Now().Add(-time.Hour))
	backend := &fakeBackend{profile: &domain.Identity{ID: "u1"}}
	g := NewGuard(backend, store, nil)

	if got := g.Init(t.Context()); got != StatusUnauthenticated {
		t.Errorf("Init: got %v, want unauthenticated", got)
	}
	if backend.calls != 0 {
		t.Errorf("backend calls: got %d, want 0", backend.calls)
	}
	if _, ok := store.values[tokenKey]; ok {
		t.Error("expired token not cleared")
	}
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	if tokenExpired("not-a-jwt", now) {
		t.Error("opaque token reported expired")
	}
	if !tokenExpired(signedToken(t, now.Add(-time.Minute)), now) {
		t.Error("past exp not reported expired")
	}
	if tokenExpired(signedToken(t, now.Add(time.Hour)), now) {
		t.Error("future exp reported expired")
	}
}

func TestLoginPersistsToken(t *testing.T) {
	store := newMemStore()
	backend := &fakeBackend{result: &api.AuthResult{Token: "tok-1", User: domain.Identity{ID: "u1", Name: "Ada"}}}
	g := NewGuard(backend, store, nil)
	g.Init(t.Context())

	id, err := g.Login(t.Context(), "ada@uni.edu", "secret1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if id.ID != "u1" {
		t.Errorf("Identity.ID: got %q", id.ID)
	}
	if store.values[tokenKey] != "tok-1" {
		t.Errorf("persisted token: got %q", store.values[tokenKey])
	}
	if g.Status() != StatusIncomplete {
		t.Errorf("Status: got %v, want incomplete", g.Status())
	}
	if d := g.Decide(ScreenCatalog); d.Verdict != Redirect || d.Screen != ScreenRoleSelect {
		t.Errorf("Decide(catalog): got %+v, want redirect to role select", d)
	}
}

func TestLoginFailureSurfacesMessage(t *testing.T) {
	backend := &fakeBackend{loginErr: &domain.AuthError{Message: "Invalid email or password"}}
	g := NewGuard(backend, newMemStore(), nil)
	g.Init(t.Context())

	_, err := g.Login(t.Context(), "ada@uni.edu", "nope")
	if err == nil || err.Error() != "Invalid email or password" {
		t.Errorf("Login: got %v, want server message", err)
	}
	if g.Status() != StatusUnauthenticated {
		t.Errorf("Status: got %v, want unauthenticated", g.Status())
	}
}

func TestRegisterShortPasswordNeverCallsBackend(t *testing.T) {
	backend := &fakeBackend{}
	g := NewGuard(backend, newMemStore(), nil)
	g.Init(t.Context())

	_, err := g.Register(t.Context(), Registration{Name: "Ada", Email: "ada@uni.edu", Password: "short", Confirm: "short"})
	if !IsValidation(err) {
		t.Fatalf("Register: got %v, want ValidationError", err)
	}
	if err.Error() != "Password must be at least 6 characters" {
		t.Errorf("message: got %q", err.Error())
	}
	if backend.calls != 0 {
		t.Errorf("backend calls: got %d, want 0", backend.calls)
	}
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name string
		reg  Registration
		want string
	}{
		{"ok", Registration{Name: "Ada", Email: "a@u.edu", Password: "secret1", Confirm: "secret1"}, ""},
		{"mismatch", Registration{Name: "Ada", Email: "a@u.edu", Password: "secret1", Confirm: "secret2"}, "Passwords do not match"},
		{"short", Registration{Name: "Ada", Email: "a@u.edu", Password: "abc", Confirm: "abc"}, "Password must be at least 6 characters"},
		{"no name", Registration{Email: "a@u.edu", Password: "secret1", Confirm: "secret1"}, "Name is required"},
	}
	for _, tt := range tests {
		err := ValidateRegistration(tt.reg)
		got := ""
		if err != nil {
			got = err.Error()
		}
		if got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestRegisterAuthenticatesImmediately(t *testing.T) {
	store := newMemStore()
	g := NewGuard(&fakeBackend{}, store, nil)
	g.Init(t.Context())

	id, err := g.Register(t.Context(), Registration{Name: "Ada", Email: "ada@uni.edu", Password: "secret1", Confirm: "secret1"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if id.Name != "Ada" || g.Token() != "new-token" || store.values[tokenKey] != "new-token" {
		t.Errorf("Register: identity %+v token %q", id, g.Token())
	}
	if g.Landing() != ScreenRoleSelect {
		t.Errorf("Landing: got %v, want role select", g.Landing())
	}
}

func TestUpdateRole(t *testing.T) {
	backend := &fakeBackend{result: &api.AuthResult{Token: "tok", User: domain.Identity{ID: "u1"}}}
	g := NewGuard(backend, newMemStore(), nil)
	g.Init(t.Context())
	if _, err := g.Login(t.Context(), "a@u.edu", "secret1"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := g.UpdateRole(t.Context(), domain.Role("Astronaut")); !IsValidation(err) {
		t.Errorf("UpdateRole invalid: got %v, want ValidationError", err)
	}
	if backend.gotRole != "" {
		t.Errorf("invalid role reached backend: %q", backend.gotRole)
	}

	if err := g.UpdateRole(t.Context(), domain.RoleMLEngineer); err != nil {
		t.Fatalf("UpdateRole failed: %v", err)
	}
	if g.Identity().Role != domain.RoleMLEngineer {
		t.Errorf("Role: got %q", g.Identity().Role)
	}
	if d := g.Decide(ScreenRoleSelect); d.Verdict != Redirect || d.Screen != ScreenCatalog {
		t.Errorf("Decide(role select) after role set: got %+v", d)
	}
}

func TestUpdateRoleFailureKeepsRole(t *testing.T) {
	backend := &fakeBackend{
		result:  &api.AuthResult{Token: "tok", User: domain.Identity{ID: "u1"}},
		roleErr: &domain.ServiceError{Op: "update role", Status: 500},
	}
	g := NewGuard(backend, newMemStore(), nil)
	g.Init(t.Context())
	_, _ = g.Login(t.Context(), "a@u.edu", "secret1")

	if err := g.UpdateRole(t.Context(), domain.RoleSDE); err == nil {
		t.Fatal("UpdateRole: expected error")
	}
	if g.Identity().HasRole() {
		t.Error("role set despite server failure")
	}
	if g.Status() != StatusIncomplete {
		t.Errorf("Status: got %v, want incomplete", g.Status())
	}
}

func TestLogoutThenRouteCheckIsUnauthenticated(t *testing.T) {
	store := newMemStore()
	store.values[tokenKey] = "tok"
	g := NewGuard(&fakeBackend{profile: &domain.Identity{ID: "u1", Role: domain.RoleSDE}}, store, nil)
	g.Init(t.Context())

	g.Logout()

	if g.Status() != StatusUnauthenticated {
		t.Errorf("Status: got %v, want unauthenticated", g.Status())
	}
	if d := g.Decide(ScreenExercise); d.Verdict != Redirect || d.Screen != ScreenSignIn {
		t.Errorf("Decide after logout: got %+v", d)
	}
	if len(store.values) != 0 {
		t.Errorf("store after logout: got %v", store.values)
	}
	g.Logout()
}

func TestRefreshProfileExpiredTokenSignsOut(t *testing.T) {
	store := newMemStore()
	store.values[tokenKey] = "tok"
	backend := &fakeBackend{profile: &domain.Identity{ID: "u1", Role: domain.RoleSDE, Points: 10}}
	g := NewGuard(backend, store, nil)
	g.Init(t.Context())

	backend.profileErr = &domain.AuthError{Message: "Token expired"}
	err := g.RefreshProfile(t.Context())
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("RefreshProfile: got %v, want ErrUnauthorized", err)
	}
	if g.Identity() != nil || g.Token() != "" {
		t.Error("identity or token survived an expired refresh")
	}
	if g.Status() != StatusUnauthenticated {
		t.Errorf("Status: got %v, want unauthenticated", g.Status())
	}
}

func TestRefreshProfileUpdatesPoints(t *testing.T) {
	store := newMemStore()
	store.values[tokenKey] = "tok"
	backend := &fakeBackend{profile: &domain.Identity{ID: "u1", Role: domain.RoleSDE, Points: 10}}
	g := NewGuard(backend, store, nil)
	g.Init(t.Context())

	backend.profile = &domain.Identity{ID: "u1", Role: domain.RoleSDE, Points: 30}
	if err := g.RefreshProfile(t.Context()); err != nil {
		t.Fatalf("RefreshProfile failed: %v", err)
	}
	if g.Identity().Points != 30 {
		t.Errorf("Points: got %d, want 30", g.Identity().Points)
	}
}

func TestRefreshProfileServiceErrorKeepsSession(t *testing.T) {
	store := newMemStore()
	store.values[tokenKey] = "tok"
	backend := &fakeBackend{profile: &domain.Identity{ID: "u1", Role: domain.RoleSDE}}
	g := NewGuard(backend, store, nil)
	g.Init(t.Context())

	backend.profileErr = &domain.ServiceError{Op: "fetch profile", Status: 502}
	if err := g.RefreshProfile(t.Context()); err == nil {
		t.Fatal("RefreshProfile: expected error")
	}
	if g.Status() != StatusComplete {
		t.Errorf("Status: got %v, want complete", g.Status())
	}
}

func TestRefreshProfileSignedOutIsNoop(t *testing.T) {
	backend := &fakeBackend{}
	g := NewGuard(backend, newMemStore(), nil)
	g.Init(t.Context())

	if err := g.RefreshProfile(t.Context()); err != nil {
		t.Errorf("RefreshProfile: got %v, want nil", err)
	}
	if backend.calls != 0 {
		t.Errorf("backend calls: got %d, want 0", backend.calls)
	}
}

func TestInvalidateClearsEverything(t *testing.T) {
	store := newMemStore()
	store.values[tokenKey] = "tok"
	g := NewGuard(&fakeBackend{profile: &domain.Identity{ID: "u1", Role: domain.RoleSDE}}, store, nil)
	g.Init(t.Context())

	g.Invalidate(&domain.AuthError{Message: "Invalid token"})

	if g.Token() != "" || g.Identity() != nil {
		t.Error("Invalidate left session state behind")
	}
	if _, ok := store.values[tokenKey]; ok {
		t.Error("Invalidate left persisted token")
	}
}
