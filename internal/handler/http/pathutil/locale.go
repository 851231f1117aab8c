package pathutil

import "strings"

// SplitLocale returns the leading path segment when it is one of locales,
// together with the remaining path (always starting with "/").
//
//	SplitLocale("/de/users", []string{"en", "de"}) // "de", "/users"
//	SplitLocale("/users", []string{"en", "de"})    // "", "/users"
func SplitLocale(path string, locales []string) (locale, rest string) {
	trimmed := strings.TrimPrefix(path, "/")
	seg, after, _ := strings.Cut(trimmed, "/")
	for _, l := range locales {
		if seg == l {
			return l, "/" + after
		}
	}
	return "", path
}
