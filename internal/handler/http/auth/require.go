package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"community-gateway/internal/handler/http/pathutil"
	"community-gateway/internal/infra/supabase"
	"community-gateway/internal/observability/logging"
	"community-gateway/internal/service/session"
)

// ClientFactory builds a Supabase client bound to the request's session.
type ClientFactory interface {
	Cookie(w http.ResponseWriter, r *http.Request) *supabase.Client
}

// SessionResolver looks up the session user.
type SessionResolver interface {
	CurrentUser(ctx context.Context, c session.Client) (*supabase.User, error)
}

// RequireSession guards a page. The session lookup drives a Guard from
// Pending to Resolved; without a session the visitor is sent to login with
// a 307 and the page path as returnTo. A leading locale segment is kept on
// the login URL and left out of returnTo. The user is stored in the
// context for next.
func RequireSession(f ClientFactory, sessions SessionResolver, locales []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale, path := pathutil.SplitLocale(r.URL.Path, locales)
		g := NewGuard(path)
		g.Observe(true, false)

		user, err := sessions.CurrentUser(r.Context(), f.Cookie(w, r))
		if err != nil && !errors.Is(err, session.ErrNoSession) {
			logging.FromContext(r.Context()).Warn("session lookup failed, treating as signed out",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()))
		}

		if to, ok := g.Observe(false, user != nil); ok {
			guardRedirectsTotal.Inc()
			if locale != "" {
				to = "/" + locale + to
			}
			http.Redirect(w, r, to, http.StatusTemporaryRedirect)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}
