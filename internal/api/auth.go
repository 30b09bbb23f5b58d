package api

import (
	"context"
	"net/http"

	"github.com/skillforge-dev/skillforge/internal/domain"
)

// AuthResult is the body returned by login and register.
type AuthResult struct {
	Token string          `json:"token"`
	User  domain.Identity `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type roleRequest struct {
	Role domain.Role `json:"role"`
}

// Login exchanges credentials for a token and identity.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	err := c.doJSON(ctx, request{
		op:           "login",
		method:       http.MethodPost,
		path:         "/auth/login",
		authEndpoint: true,
	}, loginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns a usable token for it.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var out AuthResult
	err := c.doJSON(ctx, request{
		op:           "register",
		method:       http.MethodPost,
		path:         "/auth/register",
		authEndpoint: true,
	}, registerRequest{Email: email, Password: password, Name: name}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches the identity the token belongs to.
func (c *Client) Profile(ctx context.Context, token string) (*domain.Identity, error) {
	var out domain.Identity
	err := c.doJSON(ctx, request{
		op:     "fetch profile",
		method: http.MethodGet,
		path:   "/users/profile",
		token:  token,
	}, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRole sets the learner's role.
func (c *Client) UpdateRole(ctx context.Context, token string, role domain.Role) error {
	return c.doJSON(ctx, request{
		op:     "update role",
		method: http.MethodPut,
		path:   "/users/role",
		token:  token,
	}, roleRequest{Role: role}, nil)
}
