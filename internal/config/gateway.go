// Package config loads the gateway's YAML configuration: the entity tables
// exposed under /api, the page routes, and locale settings.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed gateway.yaml
var defaultGatewayYAML []byte

// GatewayConfig mirrors gateway.yaml.
type GatewayConfig struct {
	Site struct {
		Name string `yaml:"name"`
	} `yaml:"site"`

	I18n I18nConfig `yaml:"i18n"`

	Entities map[string]EntityConfig `yaml:"entities"`

	Pages []PageConfig `yaml:"pages"`
}

type I18nConfig struct {
	DefaultLocale string   `yaml:"default_locale"`
	Locales       []string `yaml:"locales"`
	MessagesDir   string   `yaml:"messages_dir"`
}

type EntityConfig struct {
	Select       string `yaml:"select"`
	RequireAuth  bool   `yaml:"require_auth"`
	DefaultOrder string `yaml:"default_order"`
	OwnerColumn  string `yaml:"owner_column"`
}

type PageConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
	Auth bool   `yaml:"auth"`
	// Providers lists the OAuth providers offered on the page.
	Providers []string `yaml:"providers"`
}

var (
	identPattern  = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	localePattern = regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z0-9]{2,8})*$`)
)

// LoadGatewayConfig reads path, or the embedded defaults when path is "".
func LoadGatewayConfig(path string) (*GatewayConfig, error) {
	data := defaultGatewayYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		data = b
	}
	return ParseGatewayConfig(data)
}

// ParseGatewayConfig decodes and validates YAML.
func ParseGatewayConfig(data []byte) (*GatewayConfig, error) {
	var cfg GatewayConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *GatewayConfig) applyDefaults() {
	if c.I18n.DefaultLocale == "" {
		c.I18n.DefaultLocale = "en"
	}
	if len(c.I18n.Locales) == 0 {
		c.I18n.Locales = []string{"en", "de", "ja"}
	}
	if c.I18n.MessagesDir == "" {
		c.I18n.MessagesDir = "messages"
	}
	for name, e := range c.Entities {
		if e.Select == "" {
			e.Select = "*"
			c.Entities[name] = e
		}
	}
}

func (c *GatewayConfig) validate() error {
	for _, l := range c.I18n.Locales {
		if !localePattern.MatchString(l) {
			return fmt.Errorf("invalid locale %q", l)
		}
	}
	if !slices.Contains(c.I18n.Locales, c.I18n.DefaultLocale) {
		return fmt.Errorf("default_locale %q must be one of locales", c.I18n.DefaultLocale)
	}

	if len(c.Entities) == 0 {
		return fmt.Errorf("at least one entity is required")
	}
	for name, e := range c.Entities {
		if !identPattern.MatchString(name) {
			return fmt.Errorf("entity name %q must be a lowercase identifier", name)
		}
		if name == "users" || name == "auth" || name == "rest" || name == "translations" {
			return fmt.Errorf("entity name %q is reserved", name)
		}
		if e.OwnerColumn != "" && !identPattern.MatchString(e.OwnerColumn) {
			return fmt.Errorf("entity %s: owner_column %q must be a lowercase identifier", name, e.OwnerColumn)
		}
		if col := strings.TrimPrefix(e.DefaultOrder, "-"); e.DefaultOrder != "" && !identPattern.MatchString(col) {
			return fmt.Errorf("entity %s: default_order %q must be a column name", name, e.DefaultOrder)
		}
	}

	seen := map[string]bool{}
	for _, p := range c.Pages {
		if p.Name == "" {
			return fmt.Errorf("page name is required")
		}
		if !strings.HasPrefix(p.Path, "/") {
			return fmt.Errorf("page %s: path must start with /", p.Name)
		}
		if strings.HasPrefix(p.Path, "/api/") || p.Path == "/api" {
			return fmt.Errorf("page %s: path must not be under /api", p.Name)
		}
		for _, pr := range p.Providers {
			if !identPattern.MatchString(pr) {
				return fmt.Errorf("page %s: provider %q must be a lowercase identifier", p.Name, pr)
			}
		}
		if seen[p.Path] {
			return fmt.Errorf("page %s: duplicate path %s", p.Name, p.Path)
		}
		seen[p.Path] = true
	}
	return nil
}
