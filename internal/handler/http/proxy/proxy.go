// Package proxy passes /api/rest/v1 through to PostgREST with a
// server-marked token.
package proxy

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"community-gateway/internal/handler/http/respond"
	"community-gateway/internal/infra/supabase"
	"community-gateway/internal/observability/logging"
	"community-gateway/internal/observability/metrics"
)

// Prefix is the gateway path forwarded upstream with "/api" removed.
const Prefix = "/api/rest/v1/"

// inherited are the only caller headers sent upstream.
var inherited = []string{"Content-Type", "Prefer", "X-Upsert", "Accept-Profile", "Content-Profile"}

// TokenSource returns the access token a request presents, or "".
type TokenSource func(*http.Request) string

// Config holds what the proxy needs to reach the backend.
type Config struct {
	Target   *url.URL
	AnonKey  string
	Verifier *supabase.TokenVerifier
	Tokens   TokenSource
}

// Handler forwards requests under Prefix.
type Handler struct {
	cfg Config
	rp  *httputil.ReverseProxy
}

// New returns a proxy to cfg.Target.
func New(cfg Config) *Handler {
	h := &Handler{cfg: cfg}
	h.rp = &httputil.ReverseProxy{
		Rewrite:        h.rewrite,
		ModifyResponse: h.modifyResponse,
		ErrorHandler:   h.errorHandler,
	}
	return h
}

// Register mounts the proxy on mux.
func Register(mux *http.ServeMux, h *Handler) {
	mux.Handle(Prefix+"{path...}", h)
}

// ServeHTTP re-signs the caller's token and forwards the request.
//
// @Summary      PostgREST passthrough
// @Tags         rest
// @Param        path path string true "PostgREST path"
// @Success      200 {object} object
// @Failure      401 {object} object "Invalid JWT"
// @Failure      502 {object} object "Upstream unreachable"
// @Router       /api/rest/v1/{path} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, err := h.cfg.Verifier.ServerToken(h.cfg.Tokens(r))
	switch {
	case errors.Is(err, supabase.ErrNoSigningKey):
		logging.FromContext(r.Context()).Error("rest proxy needs SUPABASE_JWT_SECRET")
		respond.Message(w, http.StatusServiceUnavailable, "Service Unavailable")
		return
	case err != nil:
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid JWT"})
		return
	}

	apiKey := r.Header.Get("apikey")
	if apiKey == "" {
		apiKey = h.cfg.AnonKey
	}

	out := r.Clone(r.Context())
	out.Header = http.Header{}
	for _, k := range inherited {
		if v := r.Header.Values(k); len(v) > 0 {
			out.Header[k] = v
		}
	}
	out.Header.Set("apikey", apiKey)
	out.Header.Set("Authorization", "Bearer "+token)
	otel.GetTextMapPropagator().Inject(r.Context(), propagation.HeaderCarrier(out.Header))

	h.rp.ServeHTTP(w, out)
}

func (h *Handler) rewrite(pr *httputil.ProxyRequest) {
	pr.SetURL(h.cfg.Target)
	rest := strings.TrimPrefix(pr.In.URL.Path, "/api")
	pr.Out.URL.Path = strings.TrimSuffix(h.cfg.Target.Path, "/") + rest
	pr.Out.URL.RawPath = ""
	pr.Out.URL.RawQuery = pr.In.URL.RawQuery
	pr.Out.Host = h.cfg.Target.Host
}

func (h *Handler) modifyResponse(resp *http.Response) error {
	metrics.ProxyRequestsTotal.WithLabelValues(resp.Request.Method, strconv.Itoa(resp.StatusCode)).Inc()
	return nil
}

func (h *Handler) errorHandler(w http.ResponseWriter, r *http.Request, err error) {
	metrics.ProxyRequestsTotal.WithLabelValues(r.Method, "error").Inc()
	logging.FromContext(r.Context()).Error("rest proxy upstream failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))
	respond.Message(w, http.StatusBadGateway, "Bad Gateway")
}
