// Package pathutil maps request paths to low-cardinality templates for
// metrics and span names, and splits locale prefixes off page paths.
package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern maps a concrete path to its template. A Template containing
// "$1" is expanded with the first capture group.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/api/users/me$`), Template: "/api/users/me"},
	{Pattern: regexp.MustCompile(`^/api/users/[^/]+$`), Template: "/api/users/:id"},
	{Pattern: regexp.MustCompile(`^/api/rest/v1(/.*)?$`), Template: "/api/rest/v1/*"},
	{Pattern: regexp.MustCompile(`^/api/translations/[^/]+$`), Template: "/api/translations/:locale"},
	{Pattern: regexp.MustCompile(`^/api/auth/logout$`), Template: "/api/auth/logout"},
	{Pattern: regexp.MustCompile(`^/api/([a-z_]{1,48})/[^/]+$`), Template: "/api/$1/:id"},
	{Pattern: regexp.MustCompile(`^/api/([a-z_]{1,48})$`), Template: "/api/$1"},
	{Pattern: regexp.MustCompile(`^/swagger/.*$`), Template: "/swagger/*"},
}

var staticPaths = map[string]bool{
	"/":        true,
	"/health":  true,
	"/ready":   true,
	"/live":    true,
	"/metrics": true,
}

// NormalizePath strips the query and trailing slash and replaces ids with
// placeholders. Unmatched /api paths collapse to "/api/*" and every other
// path to "/:page".
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	if staticPaths[path] {
		return path
	}

	for _, p := range pathPatterns {
		if m := p.Pattern.FindStringSubmatchIndex(path); m != nil {
			return string(p.Pattern.ExpandString(nil, p.Template, path, m))
		}
	}

	if strings.HasPrefix(path, "/api/") {
		return "/api/*"
	}
	return "/:page"
}
