// Package page serves the site's pages as JSON props. Each page from the
// gateway configuration is reachable at its path and at the same path
// behind a locale prefix, e.g. /users and /de/users.
package page

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"community-gateway/internal/config"
	"community-gateway/internal/handler/http/auth"
	"community-gateway/internal/handler/http/pathutil"
	"community-gateway/internal/handler/http/respond"
	"community-gateway/internal/i18n"
	"community-gateway/internal/infra/supabase"
	"community-gateway/internal/observability/logging"
	"community-gateway/internal/service/session"
	"community-gateway/internal/view"
)

// Props is the body of a page response.
type Props struct {
	Page   string            `json:"page"`
	Params map[string]string `json:"params,omitempty"`
	i18n.Props
	User      *view.AvatarProps    `json:"user"`
	Logo      view.LogoProps       `json:"logo"`
	Providers []view.ProviderProps `json:"providers,omitempty"`
}

// ProfileSync keeps the signed-in user's profile in step with the page:
// it reactivates a deactivated profile, saves the route locale, and
// returns the stored locale.
type ProfileSync interface {
	SyncProfile(ctx context.Context, userID, routeLocale string) (string, error)
}

// Handler renders page props.
type Handler struct {
	Pages    []config.PageConfig
	SiteName string
	Catalog  *i18n.Catalog
	Factory  auth.ClientFactory
	Sessions auth.SessionResolver
	// Profiles is optional; without it the profile locale is not used.
	Profiles ProfileSync
}

// Register mounts every page at its path and under each locale prefix.
// Pages marked auth are wrapped with auth.RequireSession.
func Register(mux *http.ServeMux, h Handler) {
	locales := h.Catalog.Locales()
	for _, p := range h.Pages {
		var handler http.Handler = h.page(p)
		if p.Auth {
			handler = auth.RequireSession(h.Factory, h.Sessions, locales, handler)
		}
		for _, pattern := range patterns(p.Path, locales) {
			mux.Handle("GET "+pattern, handler)
		}
	}
}

// patterns lists the mux patterns for path: itself plus one per locale.
// The root page matches only "/" exactly.
func patterns(path string, locales []string) []string {
	if path == "/" {
		out := []string{"/{$}"}
		for _, l := range locales {
			out = append(out, "/"+l+"/{$}", "/"+l)
		}
		return out
	}
	out := []string{path}
	for _, l := range locales {
		out = append(out, "/"+l+path)
	}
	return out
}

func (h Handler) page(p config.PageConfig) http.Handler {
	names := paramNames(p.Path)
	providers := view.AuthProviders(p.Providers)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		u := auth.UserFromContext(ctx)
		if u == nil && !p.Auth {
			u = h.lookupUser(ctx, w, r)
		}

		cand := h.candidates(r)
		if u != nil {
			cand.Profile = h.syncProfile(ctx, u.ID, cand.Param)
		}

		props := Props{
			Page:      p.Name,
			Props:     h.Catalog.TranslationProps(cand),
			Logo:      view.Logo(h.SiteName),
			Providers: providers,
		}
		if len(names) > 0 {
			props.Params = make(map[string]string, len(names))
			for _, n := range names {
				props.Params[n] = r.PathValue(n)
			}
		}
		if u != nil {
			avatar := view.Avatar(u)
			props.User = &avatar
		}

		respond.JSON(w, http.StatusOK, props)
	})
}

// syncProfile returns the user's stored locale after syncing. Failures are
// logged and leave the page on the other candidates.
func (h Handler) syncProfile(ctx context.Context, userID, routeLocale string) string {
	if h.Profiles == nil {
		return ""
	}
	locale, err := h.Profiles.SyncProfile(ctx, userID, routeLocale)
	if err != nil {
		logging.FromContext(ctx).Warn("profile sync failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
	}
	return locale
}

func (h Handler) candidates(r *http.Request) i18n.Candidates {
	param, _ := pathutil.SplitLocale(r.URL.Path, h.Catalog.Locales())
	explicit := i18n.FromContext(r.Context())
	if explicit == "" {
		explicit = h.Catalog.Negotiate(r.Header.Get("Accept-Language"))
	}
	return i18n.Candidates{
		Param:    param,
		Query:    r.URL.Query().Get("locale"),
		Explicit: explicit,
	}
}

func (h Handler) lookupUser(ctx context.Context, w http.ResponseWriter, r *http.Request) *supabase.User {
	u, err := h.Sessions.CurrentUser(ctx, h.Factory.Cookie(w, r))
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			logging.FromContext(ctx).Warn("session lookup failed", slog.String("error", err.Error()))
		}
		return nil
	}
	return u
}

// paramNames returns the wildcard names in a mux path, in order.
func paramNames(path string) []string {
	var names []string
	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			name := strings.TrimSuffix(strings.TrimPrefix(seg, "{"), "}")
			name = strings.TrimSuffix(name, "...")
			if name != "$" {
				names = append(names, name)
			}
		}
	}
	return names
}
