package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"community-gateway/internal/infra/supabase"
	"community-gateway/internal/service/session"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, secret, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": "authenticated",
		"exp":  exp.Unix(),
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

// newFactory returns a factory whose backend answers every call with
// status.
func newFactory(t *testing.T, secret string, status int) (*supabase.Factory, *[]string) {
	t.Helper()
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	return supabase.NewFactory(supabase.Config{
		URL:            srv.URL,
		AnonKey:        "anon-key",
		ServiceRoleKey: "service-key",
		JWTSecret:      secret,
	}, srv.Client()), &paths
}

// claimsResolver resolves the user from the client's verified claims.
type claimsResolver struct{ err error }

func (c claimsResolver) CurrentUser(_ context.Context, cl session.Client) (*supabase.User, error) {
	if c.err != nil {
		return nil, c.err
	}
	if cl.Claims() == nil {
		return nil, session.ErrNoSession
	}
	return &supabase.User{ID: cl.Claims().Subject}, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
