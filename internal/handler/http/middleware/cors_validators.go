package middleware

import (
	"slices"
	"strings"
)

// AllowListValidator matches origins exactly or by "scheme://*.domain"
// pattern, case-insensitively.
type AllowListValidator struct {
	exact    map[string]bool
	suffixes []wildcard
	origins  []string
}

type wildcard struct {
	scheme string
	suffix string // ".example.com"
}

func NewOriginValidator(origins []string) *AllowListValidator {
	v := &AllowListValidator{exact: map[string]bool{}}
	for _, o := range origins {
		o = normalizeOrigin(o)
		if o == "" {
			continue
		}
		v.origins = append(v.origins, o)
		if scheme, rest, ok := strings.Cut(o, "://*."); ok {
			v.suffixes = append(v.suffixes, wildcard{scheme: scheme, suffix: "." + rest})
			continue
		}
		v.exact[o] = true
	}
	return v
}

func (v *AllowListValidator) IsAllowed(origin string) bool {
	origin = normalizeOrigin(origin)
	if origin == "" || origin == "null" {
		return false
	}
	if v.exact[origin] {
		return true
	}
	scheme, host, ok := strings.Cut(origin, "://")
	if !ok {
		return false
	}
	for _, w := range v.suffixes {
		if scheme == w.scheme && strings.HasSuffix(host, w.suffix) && len(host) > len(w.suffix) {
			return true
		}
	}
	return false
}

func (v *AllowListValidator) AllowedOrigins() []string {
	return slices.Clone(v.origins)
}

func normalizeOrigin(o string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(o)), "/")
}
