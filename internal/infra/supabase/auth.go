package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// SignOutScope selects which sessions GoTrue revokes.
type SignOutScope string

const (
	ScopeGlobal SignOutScope = "global"
	ScopeLocal  SignOutScope = "local"
	ScopeOthers SignOutScope = "others"
)

var ErrNotSignedIn = errors.New("not signed in")

// GetUser asks GoTrue for the user owning the client's token.
func (c *Client) GetUser(ctx context.Context) (*User, error) {
	if c.role != RoleAuthenticated {
		return nil, ErrNotSignedIn
	}
	resp, err := c.do(ctx, call{op: "auth get_user", method: http.MethodGet, path: "/auth/v1/user"})
	if err != nil {
		return nil, err
	}
	u := &User{}
	if err := json.Unmarshal(resp.body, u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}

// SignOut revokes the session. For ScopeLocal and ScopeGlobal the session
// cookie of a cookie-bound client is cleared whether or not the backend
// call succeeds.
func (c *Client) SignOut(ctx context.Context, scope SignOutScope) error {
	if scope != ScopeOthers {
		defer c.clearCookies()
	}
	if c.role != RoleAuthenticated {
		return nil
	}

	q := url.Values{"scope": {string(scope)}}
	_, err := c.do(ctx, call{op: "auth logout", method: http.MethodPost, path: "/auth/v1/logout", query: q})
	if err != nil {
		// an expired or already revoked session is signed out either way
		if s := StatusOf(err); s == http.StatusUnauthorized || s == http.StatusNotFound || s == http.StatusForbidden {
			slog.Debug("session already gone at sign out", slog.String("error", err.Error()))
			return nil
		}
		return err
	}
	return nil
}

func (c *Client) clearCookies() {
	if c.w == nil || c.r == nil {
		return
	}
	clearSessionCookies(c.w, c.r, c.cookieName)
	c.session, c.claims = nil, nil
}

// Admin exposes GoTrue admin endpoints. Only a service-role client may use
// them.
func (c *Client) Admin() *Admin {
	return &Admin{c: c}
}

// Admin wraps /auth/v1/admin.
type Admin struct {
	c *Client
}

// UserAttributes is the admin update payload.
type UserAttributes struct {
	Email        string         `json:"email,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
	BanDuration  string         `json:"ban_duration,omitempty"`
}

var ErrNotServiceRole = errors.New("admin API requires a service-role client")

// UpdateUserByID updates a user's attributes.
func (a *Admin) UpdateUserByID(ctx context.Context, id string, attrs UserAttributes) (*User, error) {
	if a.c.role != RoleServiceRole {
		return nil, ErrNotServiceRole
	}
	resp, err := a.c.do(ctx, call{
		op:     "auth admin_update_user",
		method: http.MethodPut,
		path:   "/auth/v1/admin/users/" + url.PathEscape(id),
		body:   attrs,
	})
	if err != nil {
		return nil, err
	}
	u := &User{}
	if err := json.Unmarshal(resp.body, u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}

// DeleteUser removes a user from GoTrue.
func (a *Admin) DeleteUser(ctx context.Context, id string) error {
	if a.c.role != RoleServiceRole {
		return ErrNotServiceRole
	}
	_, err := a.c.do(ctx, call{
		op:     "auth admin_delete_user",
		method: http.MethodDelete,
		path:   "/auth/v1/admin/users/" + url.PathEscape(id),
	})
	return err
}

// Health probes GoTrue's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, call{op: "auth health", method: http.MethodGet, path: "/auth/v1/health"})
	return err
}
