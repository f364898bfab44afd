// Package authapi is the typed client for the auth backend.
package authapi

import (
	"context"

	"clinicdesk/internal/model"
	"clinicdesk/pkg/httpapi"
)

// Client wraps the auth backend endpoints
type Client struct {
	api *httpapi.Client
}

// NewClient creates an auth backend client on top of a base HTTP client
func NewClient(api *httpapi.Client) *Client {
	return &Client{api: api}
}

// LoginResponse is the session grant returned by login and OAuth exchange.
// Register answers with the same shape, minus the token when the account
// still needs email verification.
type LoginResponse struct {
	Token                     string     `json:"token"`
	User                      model.User `json:"user"`
	RequiresEmailVerification bool       `json:"requiresEmailVerification,omitempty"`
	Message                   string     `json:"message,omitempty"`
}

// Login exchanges email/password credentials for a bearer token
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	req := map[string]string{"email": email, "password": password}
	var resp LoginResponse
	if err := c.api.Post(ctx, "login", "/api/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LoginWithGoogle exchanges a Google identity credential for a bearer token
func (c *Client) LoginWithGoogle(ctx context.Context, credential string) (*LoginResponse, error) {
	req := map[string]string{"credential": credential}
	var resp LoginResponse
	if err := c.api.Post(ctx, "oauth_google", "/api/auth/oauth/google", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register submits new-account data. It does not establish a session.
func (c *Client) Register(ctx context.Context, data model.RegisterData) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.api.Post(ctx, "register", "/api/auth/register", data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me resolves the user record behind the stored token
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.api.Get(ctx, "me", "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout invalidates the server-side session
func (c *Client) Logout(ctx context.Context) error {
	return c.api.Post(ctx, "logout", "/api/auth/logout", nil, nil)
}

// UpdateProfile merges the given fields into the stored user record
func (c *Client) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (*model.User, error) {
	var user model.User
	if err := c.api.Put(ctx, "update_profile", "/api/auth/profile", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
