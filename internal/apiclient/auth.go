package apiclient

import (
	"context"
	"net/http"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
)

// Credentials for either login endpoint.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the member sign-up payload.
type Registration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,phone"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	AccessToken string              `json:"access_token" validate:"required"`
	TokenType   string              `json:"token_type,omitempty"`
	User        *domain.UserProfile `json:"user,omitempty"`
}

func authBase(role domain.Role) string {
	if role == domain.RoleAdmin {
		return "/api/auth/admin"
	}
	return "/api/auth/user"
}

// Login authenticates against the admin or member login endpoint.
func (c *Client) Login(ctx context.Context, role domain.Role, creds Credentials) (*AuthResponse, error) {
	var out AuthResponse
	path := authBase(role) + "/login"
	err := c.do(ctx, call{method: http.MethodPost, route: path, path: path, body: creds}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a member account and returns its session token.
func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResponse, error) {
	var out AuthResponse
	const path = "/api/auth/user/register"
	if err := c.do(ctx, call{method: http.MethodPost, route: path, path: path, body: reg}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the profile behind the current token.
func (c *Client) Me(ctx context.Context, role domain.Role) (*domain.UserProfile, error) {
	var out domain.UserProfile
	path := authBase(role) + "/me"
	if err := c.do(ctx, call{method: http.MethodGet, route: path, path: path}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
