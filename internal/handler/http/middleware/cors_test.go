package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLogger counts CORS events.
type recordingLogger struct {
	warns  int
	debugs int
}

func (l *recordingLogger) Warn(context.Context, string, ...any) { l.warns++ }
func (l *recordingLogger) Debug(context.Context, string, ...any) { l.debugs++ }

func testCORS(logger CORSLogger) CORSConfig {
	return CORSConfig{
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         600,
		Validator:      NewOriginValidator([]string{"http://localhost:3000", "https://*.example.com"}),
		Logger:         logger,
		EnforcePrefix:  "/api/",
	}
}

func serveCORS(t *testing.T, cfg CORSConfig, method, path, origin string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	called := false
	h := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(method, path, nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if method == http.MethodOptions {
		req.Header.Set("Access-Control-Request-Method", "POST")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, called
}

func TestCORS_AllowedOrigin(t *testing.T) {
	rec, called := serveCORS(t, testCORS(nil), http.MethodGet, "/api/articles", "http://localhost:3000")

	assert.True(t, called)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "X-Request-ID", rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestCORS_Preflight(t *testing.T) {
	logger := &recordingLogger{}
	rec, called := serveCORS(t, testCORS(logger), http.MethodOptions, "/api/articles", "https://app.example.com")

	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, 1, logger.debugs)
}

func TestCORS_DisallowedOriginOnAPI(t *testing.T) {
	logger := &recordingLogger{}
	rec, called := serveCORS(t, testCORS(logger), http.MethodGet, "/api/users", "https://evil.test")

	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"origin not allowed"}`, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, 1, logger.warns)
}

func TestCORS_DisallowedOriginOutsideAPI(t *testing.T) {
	rec, called := serveCORS(t, testCORS(nil), http.MethodGet, "/blog", "https://evil.test")

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_NoOrigin(t *testing.T) {
	rec, called := serveCORS(t, testCORS(nil), http.MethodGet, "/api/users", "")

	assert.True(t, called)
	assert.Empty(t, rec.Header().Get("Vary"))
}

func TestOriginValidator(t *testing.T) {
	v := NewOriginValidator([]string{"http://localhost:3000/", " HTTPS://*.Example.com ", ""})

	tests := map[string]bool{
		"http://localhost:3000":   true,
		"HTTP://LOCALHOST:3000":   true,
		"https://app.example.com": true,
		"https://a.b.example.com": true,
		"https://example.com":     false,
		"http://app.example.com":  false,
		"https://evilexample.com": false,
		"http://localhost:3001":   false,
		"null":                    false,
		"":                        false,
	}
	for origin, want := range tests {
		assert.Equal(t, want, v.IsAllowed(origin), origin)
	}
	assert.Equal(t, []string{"http://localhost:3000", "https://*.example.com"}, v.AllowedOrigins())
}

func TestLoadCORSConfig(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("CORS_ALLOWED_METHODS", "get, post")
	t.Setenv("CORS_MAX_AGE", "")

	cfg, err := LoadCORSConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Validator.AllowedOrigins())
	assert.Equal(t, []string{"GET", "POST"}, cfg.AllowedMethods)
	assert.Equal(t, 86400, cfg.MaxAge)
	assert.Equal(t, "/api/", cfg.EnforcePrefix)
}

func TestLoadCORSConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"ftp origin", map[string]string{"CORS_ALLOWED_ORIGINS": "ftp://files.example.com"}},
		{"origin with path", map[string]string{"CORS_ALLOWED_ORIGINS": "https://example.com/app"}},
		{"bad method", map[string]string{"CORS_ALLOWED_METHODS": "GET,FETCH"}},
		{"negative max age", map[string]string{"CORS_MAX_AGE": "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"CORS_ALLOWED_ORIGINS", "CORS_ALLOWED_METHODS", "CORS_MAX_AGE"} {
				t.Setenv(k, tt.env[k])
			}
			_, err := LoadCORSConfig(nil)
			assert.Error(t, err)
		})
	}
}
