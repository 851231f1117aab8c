// Package session resolves and ends the signed-in user's session. It works
// on any request-bound Supabase client and knows nothing about HTTP.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"community-gateway/internal/infra/supabase"
)

// ErrNoSession means the request carries no usable session.
var ErrNoSession = errors.New("no session")

// Client is the part of *supabase.Client the service needs.
type Client interface {
	Role() supabase.Role
	Claims() *supabase.Claims
	Session() *supabase.Session
	GetUser(ctx context.Context) (*supabase.User, error)
	SignOut(ctx context.Context, scope supabase.SignOutScope) error
}

// Service handles session business logic.
type Service struct {
	// Scope is the sign-out scope used by Logout.
	Scope supabase.SignOutScope
}

// NewService returns a service that signs out the local session only.
func NewService() *Service {
	return &Service{Scope: supabase.ScopeLocal}
}

// Logout signs the client out. Cookie clients lose their auth cookies even
// when the backend call fails; the failure is logged and returned.
func (s *Service) Logout(ctx context.Context, c Client) error {
	if err := c.SignOut(ctx, s.Scope); err != nil {
		slog.Warn("sign out failed, cookies cleared anyway", slog.String("error", err.Error()))
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// CurrentUser returns the session user. Verified token claims are used
// when present; otherwise the user is fetched from the auth API.
func (s *Service) CurrentUser(ctx context.Context, c Client) (*supabase.User, error) {
	if c.Role() != supabase.RoleAuthenticated {
		return nil, ErrNoSession
	}

	if claims := c.Claims(); claims != nil {
		if sess := c.Session(); sess != nil && sess.User != nil && sess.User.ID == claims.Subject {
			return sess.User, nil
		}
		return &supabase.User{
			ID:           claims.Subject,
			Email:        claims.Email,
			Role:         claims.Role,
			AppMetadata:  claims.AppMetadata,
			UserMetadata: claims.UserMetadata,
		}, nil
	}

	u, err := c.GetUser(ctx)
	if err != nil {
		switch supabase.StatusOf(err) {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u.ID == "" {
		return nil, ErrNoSession
	}
	return u, nil
}
