package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadGatewayConfig_Defaults(t *testing.T) {
	cfg, err := LoadGatewayConfig("")
	if err != nil {
		t.Fatalf("LoadGatewayConfig() error = %v", err)
	}

	if diff := cmp.Diff([]string{"en", "de", "ja"}, cfg.I18n.Locales); diff != "" {
		t.Errorf("locales mismatch (-want +got):\n%s", diff)
	}
	if cfg.I18n.DefaultLocale != "en" {
		t.Errorf("default locale = %q, want en", cfg.I18n.DefaultLocale)
	}

	wantTables := []string{
		"article_comments", "articles", "message_likes", "messages", "metadata",
		"notifications", "peers", "profiles", "whispers",
	}
	for _, table := range wantTables {
		if _, ok := cfg.Entities[table]; !ok {
			t.Errorf("entity %q missing from defaults", table)
		}
	}
	if got := cfg.Entities["articles"].Select; got != "*,user:user_id!inner(*)" {
		t.Errorf("articles select = %q", got)
	}
	if got := cfg.Entities["metadata"].Select; got != "*" {
		t.Errorf("metadata select = %q, want *", got)
	}
	if !cfg.Entities["whispers"].RequireAuth {
		t.Error("whispers should require auth")
	}

	var authPages []string
	for _, p := range cfg.Pages {
		if p.Auth {
			authPages = append(authPages, p.Name)
		}
	}
	if diff := cmp.Diff([]string{"chat", "settings", "edit-profile"}, authPages); diff != "" {
		t.Errorf("auth pages mismatch (-want +got):\n%s", diff)
	}

	for _, p := range cfg.Pages {
		if p.Name != "login" {
			continue
		}
		if diff := cmp.Diff([]string{"google", "facebook", "apple"}, p.Providers); diff != "" {
			t.Errorf("login providers mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestLoadGatewayConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	yamlText := `
i18n:
  default_locale: de
  locales: [de, en]
entities:
  posts:
    owner_column: author_id
pages:
  - { name: home, path: / }
`
	if err := os.WriteFile(path, []byte(yamlText), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadGatewayConfig(path)
	if err != nil {
		t.Fatalf("LoadGatewayConfig() error = %v", err)
	}
	if cfg.I18n.MessagesDir != "messages" {
		t.Errorf("messages dir = %q, want default", cfg.I18n.MessagesDir)
	}
	if cfg.Entities["posts"].OwnerColumn != "author_id" {
		t.Errorf("owner column = %q", cfg.Entities["posts"].OwnerColumn)
	}
}

func TestParseGatewayConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "default locale not listed",
			yaml:    "i18n: {default_locale: fr, locales: [en]}\nentities: {posts: {}}",
			wantErr: "default_locale",
		},
		{
			name:    "bad entity name",
			yaml:    "entities: {\"Posts;drop\": {}}",
			wantErr: "lowercase identifier",
		},
		{
			name:    "reserved entity",
			yaml:    "entities: {users: {}}",
			wantErr: "reserved",
		},
		{
			name:    "no entities",
			yaml:    "site: {name: x}",
			wantErr: "at least one entity",
		},
		{
			name:    "bad provider",
			yaml:    "entities: {posts: {}}\npages: [{name: login, path: /login, providers: [\"../x\"]}]",
			wantErr: "provider",
		},
		{
			name:    "page under api",
			yaml:    "entities: {posts: {}}\npages: [{name: x, path: /api/x}]",
			wantErr: "must not be under /api",
		},
		{
			name:    "malformed yaml",
			yaml:    "entities: [",
			wantErr: "failed to parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGatewayConfig([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadGatewayConfig_MissingFile(t *testing.T) {
	_, err := LoadGatewayConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Fatalf("error = %v, want read failure", err)
	}
}
