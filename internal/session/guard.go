// Package session implements the identity guard: it owns the bearer token
// and the signed-in identity, and decides which screen the learner may see.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/skillforge-dev/skillforge/internal/api"
	"github.com/skillforge-dev/skillforge/internal/domain"
	"github.com/skillforge-dev/skillforge/internal/logger"
)

// tokenKey is the durable storage key for the bearer token.
const tokenKey = "token"

const minPasswordLength = 6

// Status is the guard's view of the learner.
type Status int

const (
	StatusLoading Status = iota
	StatusUnauthenticated
	StatusIncomplete // signed in, no role yet
	StatusComplete
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusIncomplete:
		return "authenticated-incomplete"
	case StatusComplete:
		return "authenticated-complete"
	default:
		return "unknown"
	}
}

// Backend is the credential and profile service.
type Backend interface {
	Login(ctx context.Context, email, password string) (*api.AuthResult, error)
	Register(ctx context.Context, name, email, password string) (*api.AuthResult, error)
	Profile(ctx context.Context, token string) (*domain.Identity, error)
	UpdateRole(ctx context.Context, token string, role domain.Role) error
}

// TokenStore is durable storage for the token across restarts.
type TokenStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Registration is the sign-up form.
type Registration struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

// Guard owns the session token and identity. It is safe for concurrent use;
// every other component reads the token through Token and never writes it.
type Guard struct {
	backend Backend
	store   TokenStore
	log     *logger.Logger
	now     func() time.Time

	mu          sync.RWMutex
	initialized bool
	token       string
	identity    *domain.Identity
}

// NewGuard creates a Guard in the loading state. Call Init to resolve it.
func NewGuard(backend Backend, store TokenStore, log *logger.Logger) *Guard {
	if log == nil {
		log = logger.Nop()
	}
	return &Guard{
		backend: backend,
		store:   store,
		log:     log,
		now:     time.Now,
	}
}

// Init resolves the loading state. A persisted token is checked against the
// profile endpoint; any failure clears it and leaves the learner signed out.
func (g *Guard) Init(ctx context.Context) Status {
	token, ok, err := g.store.Get(tokenKey)
	if err != nil {
		g.log.Warn("reading persisted token", "error", err)
	}

	if !ok || token == "" {
		g.resolve("", nil)
		return g.Status()
	}

	if tokenExpired(token, g.now()) {
		g.log.Info("persisted token expired")
		g.clear()
		return g.Status()
	}

	id, err := g.backend.Profile(ctx, token)
	if err != nil {
		g.log.Info("persisted token rejected", "error", err)
		g.clear()
		return g.Status()
	}

	g.resolve(token, id)
	g.log.Info("session restored", "user_id", id.ID, "role", string(id.Role))
	return g.Status()
}

// Login exchanges credentials for a session. An *domain.AuthError carries the
// server's message for display.
func (g *Guard) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, &domain.ValidationError{Field: "email", Message: "Email and password are required"}
	}

	res, err := g.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	g.establish(res)
	g.log.Info("login succeeded", "user_id", res.User.ID)
	return g.Identity(), nil
}

// ValidateRegistration applies the local sign-up rules.
func ValidateRegistration(r Registration) error {
	if strings.TrimSpace(r.Name) == "" {
		return &domain.ValidationError{Field: "name", Message: "Name is required"}
	}
	if strings.TrimSpace(r.Email) == "" {
		return &domain.ValidationError{Field: "email", Message: "Email is required"}
	}
	if r.Password != r.Confirm {
		return &domain.ValidationError{Field: "confirm", Message: "Passwords do not match"}
	}
	if len(r.Password) < minPasswordLength {
		return &domain.ValidationError{Field: "password", Message: "Password must be at least 6 characters"}
	}
	return nil
}

// Register validates the form locally, then creates and signs in the account.
func (g *Guard) Register(ctx context.Context, r Registration) (*domain.Identity, error) {
	if err := ValidateRegistration(r); err != nil {
		return nil, err
	}

	res, err := g.backend.Register(ctx, strings.TrimSpace(r.Name), strings.TrimSpace(r.Email), r.Password)
	if err != nil {
		return nil, err
	}
	g.establish(res)
	g.log.Info("registration succeeded", "user_id", res.User.ID)
	return g.Identity(), nil
}

// UpdateRole sets the learner's role on the server, then locally.
func (g *Guard) UpdateRole(ctx context.Context, role domain.Role) error {
	if !role.Valid() {
		return &domain.ValidationError{Field: "role", Message: "Please select a role to continue"}
	}

	token := g.Token()
	if token == "" {
		return &domain.AuthError{Message: "not signed in"}
	}

	if err := g.backend.UpdateRole(ctx, token, role); err != nil {
		if api.IsAuth(err) {
			g.Invalidate(err)
		}
		return err
	}

	g.mu.Lock()
	if g.identity != nil && g.token == token {
		g.identity.Role = role
	}
	g.mu.Unlock()
	g.log.Info("role updated", "role", string(role))
	return nil
}

// Logout clears the session. It never fails.
func (g *Guard) Logout() {
	g.clear()
	g.log.Info("logged out")
}

// RefreshProfile re-fetches the identity so points and level stay current.
// It is a no-op when signed out. A rejected token signs the learner out.
func (g *Guard) RefreshProfile(ctx context.Context) error {
	token := g.Token()
	if token == "" {
		return nil
	}

	id, err := g.backend.Profile(ctx, token)
	if err != nil {
		if api.IsAuth(err) {
			g.Invalidate(err)
		}
		return err
	}

	g.mu.Lock()
	if g.token == token {
		g.identity = id
	}
	g.mu.Unlock()
	return nil
}

// Token returns the current bearer token, or "" when signed out.
func (g *Guard) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

// Invalidate signs the learner out after the backend rejected the token.
func (g *Guard) Invalidate(cause error) {
	g.log.Warn("token rejected, signing out", "error", cause)
	g.clear()
}

// Identity returns a copy of the signed-in identity, or nil.
func (g *Guard) Identity() *domain.Identity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.identity == nil {
		return nil
	}
	id := *g.identity
	return &id
}

// Status reports the guard's current state.
func (g *Guard) Status() Status {
	g.mu.RLock()
	defer g.mu.RUnlock()
	switch {
	case !g.initialized:
		return StatusLoading
	case g.identity == nil:
		return StatusUnauthenticated
	case !g.identity.HasRole():
		return StatusIncomplete
	default:
		return StatusComplete
	}
}

func (g *Guard) establish(res *api.AuthResult) {
	if err := g.store.Set(tokenKey, res.Token); err != nil {
		g.log.Warn("persisting token", "error", err)
	}
	id := res.User
	g.resolve(res.Token, &id)
}

func (g *Guard) resolve(token string, id *domain.Identity) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initialized = true
	g.token = token
	g.identity = id
}

func (g *Guard) clear() {
	g.resolve("", nil)
	if err := g.store.Delete(tokenKey); err != nil {
		g.log.Warn("deleting persisted token", "error", err)
	}
}

// tokenExpired reports whether token is a JWT whose exp has passed. Tokens
// that do not parse are treated as opaque and left to the server to judge.
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.After(now)
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, domain.ErrValidation)
}
