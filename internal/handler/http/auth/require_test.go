package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireSession(t *testing.T) {
	f, _ := newFactory(t, testSecret, http.StatusOK)
	valid := signToken(t, testSecret, "user-1", time.Now().Add(time.Hour))
	locales := []string{"en", "de"}

	tests := []struct {
		name         string
		path         string
		token        string
		resolverErr  error
		wantStatus   int
		wantLocation string
	}{
		{name: "signed in", path: "/settings", token: valid, wantStatus: http.StatusOK},
		{name: "signed out", path: "/settings", wantStatus: http.StatusTemporaryRedirect, wantLocation: "/login?returnTo=/settings"},
		{name: "signed out with locale", path: "/de/edit-profile", wantStatus: http.StatusTemporaryRedirect, wantLocation: "/de/login?returnTo=/edit-profile"},
		{name: "lookup error", path: "/chat", token: valid, resolverErr: errors.New("backend down"), wantStatus: http.StatusTemporaryRedirect, wantLocation: "/login?returnTo=/chat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var userID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if u := UserFromContext(r.Context()); u != nil {
					userID = u.ID
				}
				w.WriteHeader(http.StatusOK)
			})
			h := RequireSession(f, claimsResolver{err: tt.resolverErr}, locales, next)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "user-1", userID)
			}
		})
	}
}
