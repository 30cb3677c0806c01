package api

import (
	"context"
	"errors"
	"net/http"
)

// Login exchanges credentials for a session. The client keeps using its
// current token; callers store and apply the returned one.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &s); err != nil {
		return nil, err
	}
	if s.AccessToken == "" {
		return nil, errors.New("login response has no access token")
	}
	return &s, nil
}

// Register creates an account and returns its session.
func (c *Client) Register(ctx context.Context, reg Registration) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, reg, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Logout ends the server session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
