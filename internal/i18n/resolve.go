package i18n

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
)

// Candidates are the places a request can name its locale, in priority
// order.
type Candidates struct {
	// Param is the route locale, e.g. "de" in /de/blog.
	Param string
	// Query is the ?locale= value.
	Query string
	// Profile is the locale stored on the signed-in user's profile.
	Profile string
	// Explicit is the caller's preference, usually negotiated from
	// Accept-Language.
	Explicit string
}

// Props is what a page needs to render translated text.
type Props struct {
	Messages Bundle   `json:"messages"`
	Locale   string   `json:"locale"`
	Locales  []string `json:"locales"`
}

// Resolve returns the first supported non-empty candidate, else the
// default locale.
func (c *Catalog) Resolve(cand Candidates) string {
	for _, l := range []string{cand.Param, cand.Query, cand.Profile, cand.Explicit} {
		if l != "" && c.Supported(l) {
			return l
		}
	}
	return c.cfg.DefaultLocale
}

// Negotiate picks the best supported locale for an Accept-Language header.
// An empty or unmatched header gives the default.
func (c *Catalog) Negotiate(acceptLanguage string) string {
	if acceptLanguage == "" {
		return c.cfg.DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.cfg.DefaultLocale
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return c.cfg.DefaultLocale
	}
	return c.cfg.Locales[idx]
}

// TranslationProps resolves the locale and returns its bundle. A locale
// without a bundle gets an empty map, never nil.
func (c *Catalog) TranslationProps(cand Candidates) Props {
	locale := c.Resolve(cand)
	msgs, ok := c.Bundle(locale)
	if !ok || msgs == nil {
		msgs = Bundle{}
	}
	return Props{Messages: msgs, Locale: locale, Locales: c.Locales()}
}

type contextKey struct{}

// WithLocale stores a negotiated locale in ctx.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, contextKey{}, locale)
}

// FromContext returns the locale stored by Middleware, or "".
func FromContext(ctx context.Context) string {
	l, _ := ctx.Value(contextKey{}).(string)
	return l
}

// Middleware negotiates Accept-Language once per request and stores the
// result for handlers to use as the Explicit candidate.
func (c *Catalog) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := c.Negotiate(r.Header.Get("Accept-Language"))
		next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), locale)))
	})
}
