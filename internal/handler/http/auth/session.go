// Package auth holds the gateway's session handling at the HTTP edge: JWT
// checks on /api, the login guard for protected pages and logout.
package auth

import (
	"context"
	"log/slog"
	"net/http"

	"community-gateway/internal/handler/http/respond"
	"community-gateway/internal/infra/supabase"
	"community-gateway/internal/observability/logging"
)

type ctxKey string

const (
	ctxClaims ctxKey = "claims"
	ctxUser   ctxKey = "user"
)

// TokenSource returns the access token a request presents, or "".
type TokenSource func(r *http.Request) string

// Session verifies the access token presented on each request. A token
// that fails verification gets 401 {"message":"Invalid JWT"}; a valid one
// puts its claims in the context. Requests without a token, or any request
// when verifier has no secret, pass through untouched.
func Session(verifier *supabase.TokenVerifier, tokens TokenSource) func(http.Handler) http.Handler {
	if !verifier.Enabled() {
		slog.Warn("SUPABASE_JWT_SECRET is not set, access tokens are not verified at the gateway")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokens(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !verifier.Enabled() {
				recordTokenCheck("unverified")
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				recordTokenCheck("invalid")
				logging.FromContext(r.Context()).Debug("rejecting invalid access token",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()))
				respond.JSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid JWT"})
				return
			}
			recordTokenCheck("valid")
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims stores verified claims in ctx.
func WithClaims(ctx context.Context, c *supabase.Claims) context.Context {
	return context.WithValue(ctx, ctxClaims, c)
}

// ClaimsFromContext returns the verified claims, or nil.
func ClaimsFromContext(ctx context.Context) *supabase.Claims {
	c, _ := ctx.Value(ctxClaims).(*supabase.Claims)
	return c
}

// SubjectFromContext returns the verified token subject, or "".
func SubjectFromContext(ctx context.Context) string {
	if c := ClaimsFromContext(ctx); c != nil {
		return c.Subject
	}
	return ""
}

// WithUser stores the resolved session user in ctx.
func WithUser(ctx context.Context, u *supabase.User) context.Context {
	return context.WithValue(ctx, ctxUser, u)
}

// UserFromContext returns the user stored by RequireSession, or nil.
func UserFromContext(ctx context.Context) *supabase.User {
	u, _ := ctx.Value(ctxUser).(*supabase.User)
	return u
}
