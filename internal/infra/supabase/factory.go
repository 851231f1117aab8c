package supabase

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Factory builds clients that share one HTTP client and one outbound rate
// limiter.
type Factory struct {
	cfg      Config
	http     *http.Client
	limiter  *rate.Limiter
	verifier *TokenVerifier
	now      func() time.Time
}

// NewFactory returns a factory for cfg. Zero limits take their defaults. A
// nil httpClient gets one with cfg.HTTPTimeout.
func NewFactory(cfg Config, httpClient *http.Client) *Factory {
	cfg.fillDefaults()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	if cfg.ServiceRoleKey == "" {
		slog.Warn("SUPABASE_SERVICE_ROLE_KEY is not set, service-role calls will be rejected by the backend")
	}
	return &Factory{
		cfg:      cfg,
		http:     httpClient,
		limiter:  rate.NewLimiter(rate.Limit(cfg.MaxRequestsPerSecond), cfg.Burst),
		verifier: NewTokenVerifier(cfg.JWTSecret),
		now:      time.Now,
	}
}

func (f *Factory) Config() Config { return f.cfg }

// Verifier exposes the factory's token verifier.
func (f *Factory) Verifier() *TokenVerifier { return f.verifier }

// ServiceRole returns a client that bypasses row level security.
func (f *Factory) ServiceRole() *Client {
	return f.client(f.cfg.ServiceRoleKey, f.cfg.ServiceRoleKey, RoleServiceRole)
}

// Anon returns a client that uses the public anon key.
func (f *Factory) Anon() *Client {
	return f.client(f.cfg.AnonKey, f.cfg.AnonKey, RoleAnon)
}

// Cookie returns a client acting as the user of r.
//
// An Authorization bearer token wins over the session cookie. The token is
// verified locally when SUPABASE_JWT_SECRET is set; an invalid or expired
// token leaves the client anonymous. Without a secret the token is passed
// through unverified, the backend checks it, and UserID stays empty.
func (f *Factory) Cookie(w http.ResponseWriter, r *http.Request) *Client {
	c := f.Anon()
	c.w, c.r, c.cookieName = w, r, f.cfg.CookieName()

	token := BearerToken(r)
	if token == "" {
		s, err := readSessionCookie(r, c.cookieName)
		if err != nil {
			if err != ErrNoSessionCookie {
				slog.Debug("ignoring unreadable session cookie", slog.String("error", err.Error()))
			}
			return c
		}
		if s.Expired(f.now()) {
			return c
		}
		c.session = s
		token = s.AccessToken
	}

	if !f.verifier.Enabled() {
		c.token, c.role = token, RoleAuthenticated
		return c
	}

	claims, err := f.verifier.Verify(token)
	if err != nil {
		slog.Debug("ignoring invalid access token", slog.String("error", err.Error()))
		c.session = nil
		return c
	}
	c.token, c.role, c.claims = token, RoleAuthenticated, claims
	return c
}

// RequestToken returns the access token r presents: the bearer token, or
// the token of an unexpired session cookie. It does not verify it.
func (f *Factory) RequestToken(r *http.Request) string {
	if t := BearerToken(r); t != "" {
		return t
	}
	s, err := readSessionCookie(r, f.cfg.CookieName())
	if err != nil || s.Expired(f.now()) {
		return ""
	}
	return s.AccessToken
}

func (f *Factory) client(apiKey, token string, role Role) *Client {
	return &Client{
		baseURL: f.cfg.URL,
		apiKey:  apiKey,
		token:   token,
		role:    role,
		http:    f.http,
		limiter: f.limiter,
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
