package i18n

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"community-gateway/internal/observability/metrics"
)

// Bundle is one locale's message tree.
type Bundle = map[string]any

// Catalog holds the loaded bundles. It is safe for concurrent use; Load
// swaps the whole table at once.
type Catalog struct {
	cfg     Config
	matcher language.Matcher

	mu      sync.RWMutex
	bundles map[string]Bundle
}

// NewCatalog returns an empty catalog for cfg. Call Load to read bundles.
func NewCatalog(cfg Config) *Catalog {
	if !slices.Contains(cfg.Locales, cfg.DefaultLocale) {
		cfg.Locales = append([]string{cfg.DefaultLocale}, cfg.Locales...)
	}
	// the default goes first so the matcher falls back to it
	ordered := []string{cfg.DefaultLocale}
	for _, l := range cfg.Locales {
		if l != cfg.DefaultLocale {
			ordered = append(ordered, l)
		}
	}
	cfg.Locales = ordered

	tags := make([]language.Tag, len(ordered))
	for i, l := range ordered {
		tags[i] = language.Make(l)
	}
	return &Catalog{
		cfg:     cfg,
		matcher: language.NewMatcher(tags),
		bundles: map[string]Bundle{},
	}
}

// Load reads every locale's bundle concurrently. A missing or invalid file
// is logged and leaves that locale without a bundle; only a cancelled ctx
// is an error.
func (c *Catalog) Load(ctx context.Context) error {
	loaded := make([]Bundle, len(c.cfg.Locales))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, locale := range c.cfg.Locales {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := readBundle(filepath.Join(c.cfg.MessagesDir, locale+".json"))
			if err != nil {
				level := slog.LevelWarn
				if errors.Is(err, fs.ErrNotExist) {
					level = slog.LevelInfo
				}
				slog.Log(ctx, level, "translation bundle not loaded",
					slog.String("locale", locale),
					slog.String("error", err.Error()))
				return nil
			}
			loaded[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	next := make(map[string]Bundle, len(loaded))
	for i, b := range loaded {
		if b != nil {
			next[c.cfg.Locales[i]] = b
		}
	}

	c.mu.Lock()
	c.bundles = next
	c.mu.Unlock()

	metrics.LocaleBundlesLoaded.Set(float64(len(next)))
	slog.Info("translation bundles loaded",
		slog.Int("loaded", len(next)),
		slog.Int("locales", len(c.cfg.Locales)))
	return nil
}

func readBundle(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	if b == nil {
		b = Bundle{}
	}
	return b, nil
}

// Bundle returns the locale's bundle. Callers must not modify it.
func (c *Catalog) Bundle(locale string) (Bundle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.bundles[locale]
	return b, ok
}

// Supported reports whether locale is configured, loaded or not.
func (c *Catalog) Supported(locale string) bool {
	return slices.Contains(c.cfg.Locales, locale)
}

// Locales returns the configured locales, default first.
func (c *Catalog) Locales() []string {
	return slices.Clone(c.cfg.Locales)
}

func (c *Catalog) DefaultLocale() string { return c.cfg.DefaultLocale }

func (c *Catalog) Config() Config { return c.cfg }
