package supabase

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const base64Prefix = "base64-"

// maxCookieChunks bounds how many name.N chunks are reassembled.
const maxCookieChunks = 16

var ErrNoSessionCookie = errors.New("no session cookie")

// Session is the auth state stored by the web client in the session cookie.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// Expired reports whether ExpiresAt has passed. A zero ExpiresAt never
// expires here; the token's own exp claim still applies.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt > 0 && now.Unix() >= s.ExpiresAt
}

// User is a GoTrue user.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email,omitempty"`
	Role         string         `json:"role,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	CreatedAt    string         `json:"created_at,omitempty"`
	UpdatedAt    string         `json:"updated_at,omitempty"`
}

// FullName returns user_metadata.full_name, or "".
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	s, _ := u.UserMetadata["full_name"].(string)
	return s
}

// AvatarURL returns user_metadata.avatar_url, or "".
func (u *User) AvatarURL() string {
	if u == nil {
		return ""
	}
	s, _ := u.UserMetadata["avatar_url"].(string)
	return s
}

// readSessionCookie reassembles and decodes the session cookie called name.
// The value may be split over name.0, name.1, ... and may be stored as raw
// JSON, URL-escaped JSON, "base64-" prefixed base64url JSON, or the legacy
// array form [access_token, refresh_token, ...].
func readSessionCookie(r *http.Request, name string) (*Session, error) {
	raw := cookieValue(r, name)
	if raw == "" {
		return nil, ErrNoSessionCookie
	}
	return decodeSession(raw)
}

func cookieValue(r *http.Request, name string) string {
	if c, err := r.Cookie(name); err == nil && c.Value != "" {
		return c.Value
	}

	var b strings.Builder
	for i := 0; i < maxCookieChunks; i++ {
		c, err := r.Cookie(name + "." + strconv.Itoa(i))
		if err != nil {
			break
		}
		b.WriteString(c.Value)
	}
	return b.String()
}

func decodeSession(raw string) (*Session, error) {
	data, err := decodeCookieValue(raw)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var parts []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &parts); err != nil {
			return nil, fmt.Errorf("decode session array: %w", err)
		}
		s := &Session{}
		if len(parts) > 0 {
			_ = json.Unmarshal(parts[0], &s.AccessToken)
		}
		if len(parts) > 1 {
			_ = json.Unmarshal(parts[1], &s.RefreshToken)
		}
		if s.AccessToken == "" {
			return nil, errors.New("session cookie has no access token")
		}
		return s, nil
	}

	s := &Session{}
	if err := json.Unmarshal([]byte(trimmed), s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.AccessToken == "" {
		return nil, errors.New("session cookie has no access token")
	}
	return s, nil
}

func decodeCookieValue(raw string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(raw, base64Prefix); ok {
		for _, enc := range []*base64.Encoding{
			base64.RawURLEncoding, base64.URLEncoding,
			base64.RawStdEncoding, base64.StdEncoding,
		} {
			if b, err := enc.DecodeString(rest); err == nil {
				return b, nil
			}
		}
		return nil, errors.New("session cookie is not valid base64")
	}

	if strings.HasPrefix(raw, "%") {
		unescaped, err := url.QueryUnescape(raw)
		if err != nil {
			return nil, fmt.Errorf("unescape session cookie: %w", err)
		}
		return []byte(unescaped), nil
	}
	return []byte(raw), nil
}

// sessionCookieNames lists the session cookie and its chunks present on r.
func sessionCookieNames(r *http.Request, name string) []string {
	var names []string
	for _, c := range r.Cookies() {
		if c.Name == name || strings.HasPrefix(c.Name, name+".") {
			names = append(names, c.Name)
		}
	}
	return names
}

// clearSessionCookies expires every session cookie chunk on w.
func clearSessionCookies(w http.ResponseWriter, r *http.Request, name string) {
	names := sessionCookieNames(r, name)
	if len(names) == 0 {
		names = []string{name}
	}
	for _, n := range names {
		http.SetCookie(w, &http.Cookie{
			Name:     n,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: false,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
