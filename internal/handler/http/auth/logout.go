package auth

import (
	"context"
	"log/slog"
	"net/http"

	"community-gateway/internal/observability/logging"
	"community-gateway/internal/service/session"
)

// Logouter ends a session.
type Logouter interface {
	Logout(ctx context.Context, c session.Client) error
}

// LogoutHandler serves /api/auth/logout.
type LogoutHandler struct {
	Factory  ClientFactory
	Sessions Logouter
}

// ServeHTTP signs the local session out and redirects to /login. Only GET
// is allowed. The redirect happens even when the backend sign-out fails
// because the session cookies are cleared regardless.
//
// @Summary      Log out
// @Tags         auth
// @Success      307
// @Failure      405
// @Router       /api/auth/logout [get]
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	err := h.Sessions.Logout(r.Context(), h.Factory.Cookie(w, r))
	recordLogout(err == nil)
	if err != nil {
		logging.FromContext(r.Context()).Warn("logout failed", slog.String("error", err.Error()))
	}
	http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
}
