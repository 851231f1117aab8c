package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"community-gateway/internal/service/session"
)

func TestLogoutHandler_MethodNotAllowed(t *testing.T) {
	f, calls := newFactory(t, testSecret, http.StatusNoContent)
	h := &LogoutHandler{Factory: f, Sessions: session.NewService()}

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(method, "/api/auth/logout", nil))

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Equal(t, "GET", rec.Header().Get("Allow"))
			assert.Empty(t, rec.Body.String())
		})
	}
	assert.Empty(t, *calls)
}

func TestLogoutHandler_SignsOutAndRedirects(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		token   bool
		wantHit bool
	}{
		{name: "signed in", status: http.StatusNoContent, token: true, wantHit: true},
		{name: "backend failure still redirects", status: http.StatusInternalServerError, token: true, wantHit: true},
		{name: "anonymous", status: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, calls := newFactory(t, testSecret, tt.status)
			h := &LogoutHandler{Factory: f, Sessions: session.NewService()}

			req := httptest.NewRequest(http.MethodGet, "/api/auth/logout", nil)
			if tt.token {
				req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "user-1", time.Now().Add(time.Hour)))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
			assert.Equal(t, "/login", rec.Header().Get("Location"))
			if tt.wantHit {
				assert.Equal(t, []string{"POST /auth/v1/logout"}, *calls)
			} else {
				assert.Empty(t, *calls)
			}
		})
	}
}
