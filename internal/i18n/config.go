// Package i18n resolves the active locale of a request and serves the
// translation bundles loaded from <MessagesDir>/<locale>.json.
package i18n

import (
	"time"

	"community-gateway/internal/config"
	envconfig "community-gateway/pkg/config"
)

// Config selects the supported locales and where their bundles live.
type Config struct {
	DefaultLocale string
	Locales       []string
	MessagesDir   string

	// Watch enables hot reload of the bundles.
	Watch    bool
	Debounce time.Duration
}

// DefaultConfig is en, de and ja with bundles under ./messages.
func DefaultConfig() Config {
	return Config{
		DefaultLocale: "en",
		Locales:       []string{"en", "de", "ja"},
		MessagesDir:   "messages",
		Debounce:      200 * time.Millisecond,
	}
}

// ConfigFrom takes the locales from the gateway config and the watch
// settings from I18N_WATCH, I18N_DEBOUNCE and I18N_MESSAGES_DIR.
func ConfigFrom(gc config.I18nConfig) Config {
	cfg := DefaultConfig()
	if gc.DefaultLocale != "" {
		cfg.DefaultLocale = gc.DefaultLocale
	}
	if len(gc.Locales) > 0 {
		cfg.Locales = append([]string(nil), gc.Locales...)
	}
	if gc.MessagesDir != "" {
		cfg.MessagesDir = gc.MessagesDir
	}
	cfg.MessagesDir = envconfig.GetEnvString("I18N_MESSAGES_DIR", cfg.MessagesDir)
	cfg.Watch = envconfig.GetEnvBool("I18N_WATCH", false)
	cfg.Debounce = envconfig.GetEnvDuration("I18N_DEBOUNCE", cfg.Debounce)
	return cfg
}
