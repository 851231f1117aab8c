package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-gateway/pkg/ratelimit"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type subjectKey struct{}

func subjectFrom(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}

func newLimiter(kind string, limit int) *ratelimit.Limiter {
	clock := fixedClock{t: time.Unix(1_700_000_000, 0)}
	return ratelimit.NewLimiter(kind, limit, 30*time.Second, ratelimit.NewMemoryStore(100), clock, nil)
}

func limitedHandler(cfg RateLimitConfig) http.Handler {
	return RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func apiRequest(remote, sub string, cookies ...*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	r.RemoteAddr = remote
	for _, c := range cookies {
		r.AddCookie(c)
	}
	if sub != "" {
		r = r.WithContext(context.WithValue(r.Context(), subjectKey{}, sub))
	}
	return r
}

func TestRateLimit_IdentityBySubject(t *testing.T) {
	h := limitedHandler(RateLimitConfig{Identity: newLimiter("session", 2), Subject: subjectFrom})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, apiRequest("192.0.2.1:1", "u1"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, strconv.Itoa(1-i), rec.Header().Get("X-RateLimit-Remaining"))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, apiRequest("192.0.2.99:1", "u1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.Equal(t, "session", rec.Header().Get("X-RateLimit-Type"))
	assert.JSONEq(t, `{"error":"Too Many Requests","retry_after_seconds":30}`, rec.Body.String())

	// another subject is unaffected
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, apiRequest("192.0.2.1:1", "u2"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_IssuesSessionCookie(t *testing.T) {
	h := limitedHandler(RateLimitConfig{Identity: newLimiter("session", 1)})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, apiRequest("192.0.2.1:1", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, SessionCookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, "/", c.Path)

	// the same cookie is the same identity
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, apiRequest("192.0.2.1:1", "", &http.Cookie{Name: SessionCookieName, Value: c.Value}))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestRateLimit_InvalidSessionCookieReplaced(t *testing.T) {
	h := limitedHandler(RateLimitConfig{Identity: newLimiter("session", 5)})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, apiRequest("192.0.2.1:1", "", &http.Cookie{Name: SessionCookieName, Value: "forged"}))

	require.Len(t, rec.Result().Cookies(), 1)
	assert.NotEqual(t, "forged", rec.Result().Cookies()[0].Value)
}

func TestRateLimit_IPIndependentOfIdentity(t *testing.T) {
	h := limitedHandler(RateLimitConfig{
		Identity: newLimiter("session", 100),
		IP:       newLimiter("ip", 3),
		Subject:  subjectFrom,
	})

	for i, sub := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, apiRequest("198.51.100.1:5", sub))
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, apiRequest("198.51.100.1:6", "d"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "ip", rec.Header().Get("X-RateLimit-Type"))
}

func TestRateLimit_SkipsNonAPI(t *testing.T) {
	h := limitedHandler(RateLimitConfig{Identity: newLimiter("session", 1)})

	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodGet, "/blog", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

type brokenStore struct{ ratelimit.Store }

func (brokenStore) CheckAndAdd(context.Context, string, time.Time, time.Time, int) (ratelimit.CheckResult, error) {
	return ratelimit.CheckResult{}, assert.AnError
}

func TestRateLimit_FailsOpenThroughGuard(t *testing.T) {
	guarded := ratelimit.NewGuardedStore(brokenStore{}, "session", 1, time.Minute, nil)
	l := ratelimit.NewLimiter("session", 1, time.Second, guarded, nil, nil)
	h := limitedHandler(RateLimitConfig{Identity: l, Subject: subjectFrom})

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, apiRequest("192.0.2.1:1", "u1"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
