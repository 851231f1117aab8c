package supabase

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken   = errors.New("invalid JWT")
	ErrNoSigningKey   = errors.New("supabase: SUPABASE_JWT_SECRET is not configured")
	errMissingSubject = errors.New("token has no subject")
)

// Claims are the Supabase access token claims the gateway reads.
type Claims struct {
	jwt.RegisteredClaims
	Email        string         `json:"email,omitempty"`
	Role         string         `json:"role,omitempty"`
	SessionID    string         `json:"session_id,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// TokenVerifier checks and issues HS256 tokens with the project JWT secret.
type TokenVerifier struct {
	secret []byte
	leeway time.Duration
}

// NewTokenVerifier returns a verifier for secret. An empty secret yields a
// verifier that rejects every token.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), leeway: 30 * time.Second}
}

// Enabled reports whether a signing secret is configured.
func (v *TokenVerifier) Enabled() bool {
	return len(v.secret) > 0
}

// Verify parses an access token. Only HS256 is accepted, exp is required,
// and the token must carry a subject.
func (v *TokenVerifier) Verify(token string) (*Claims, error) {
	if !v.Enabled() {
		return nil, ErrNoSigningKey
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, v.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, errMissingSubject)
	}
	return claims, nil
}

// ServerToken re-signs the caller's token with an added is_server claim.
// An empty caller token yields a token whose only claim is is_server.
func (v *TokenVerifier) ServerToken(callerToken string) (string, error) {
	if !v.Enabled() {
		return "", ErrNoSigningKey
	}

	claims := jwt.MapClaims{}
	if callerToken != "" {
		_, err := jwt.ParseWithClaims(callerToken, claims, v.keyFunc,
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithLeeway(v.leeway),
		)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}
	claims["is_server"] = true

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign server token: %w", err)
	}
	return signed, nil
}

func (v *TokenVerifier) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return v.secret, nil
}
