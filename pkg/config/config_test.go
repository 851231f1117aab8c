package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"community-gateway/pkg/ratelimit"
)

func TestGetEnvFirst(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", "https://abc.supabase.co")

	got := GetEnvFirst("fallback", "SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL")
	if got != "https://abc.supabase.co" {
		t.Fatalf("GetEnvFirst() = %q, want public url", got)
	}

	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", "")
	if got := GetEnvFirst("fallback", "SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL"); got != "fallback" {
		t.Fatalf("GetEnvFirst() = %q, want fallback", got)
	}
}

func TestGetEnvParsers(t *testing.T) {
	t.Setenv("T_INT", "42")
	t.Setenv("T_BAD_INT", "forty")
	t.Setenv("T_BOOL", "true")
	t.Setenv("T_DUR", "15s")
	t.Setenv("T_LIST", " a, ,b ,c")
	t.Setenv("T_FLOAT", "0.25")

	if got := GetEnvInt("T_INT", 1); got != 42 {
		t.Errorf("GetEnvInt = %d, want 42", got)
	}
	if got := GetEnvInt("T_BAD_INT", 7); got != 7 {
		t.Errorf("GetEnvInt(bad) = %d, want 7", got)
	}
	if got := GetEnvBool("T_BOOL", false); !got {
		t.Errorf("GetEnvBool = false, want true")
	}
	if got := GetEnvDuration("T_DUR", time.Second); got != 15*time.Second {
		t.Errorf("GetEnvDuration = %v, want 15s", got)
	}
	if got := GetEnvFloat("T_FLOAT", 1); got != 0.25 {
		t.Errorf("GetEnvFloat = %v, want 0.25", got)
	}
	if got := GetEnvFloat("T_MISSING_FLOAT", 1); got != 1 {
		t.Errorf("GetEnvFloat(missing) = %v, want 1", got)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, GetEnvStringList("T_LIST", nil)); diff != "" {
		t.Errorf("GetEnvStringList mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRateLimitConfig_Defaults(t *testing.T) {
	got := LoadRateLimitConfig()
	if diff := cmp.Diff(ratelimit.DefaultConfig(), got); diff != "" {
		t.Fatalf("LoadRateLimitConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRateLimitConfig_Overrides(t *testing.T) {
	t.Setenv("RATELIMIT_SESSION_LIMIT", "5")
	t.Setenv("RATELIMIT_IP_WINDOW", "1m")
	t.Setenv("RATELIMIT_IP_LIMIT", "-3")
	t.Setenv("RATELIMIT_ENABLED", "false")

	got := LoadRateLimitConfig()

	if got.SessionLimit != 5 {
		t.Errorf("SessionLimit = %d, want 5", got.SessionLimit)
	}
	if got.IPWindow != time.Minute {
		t.Errorf("IPWindow = %v, want 1m", got.IPWindow)
	}
	if got.IPLimit != 600 {
		t.Errorf("IPLimit = %d, want default 600", got.IPLimit)
	}
	if got.Enabled {
		t.Errorf("Enabled = true, want false")
	}
}

func TestGetEnvSchedule(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{value: "", want: "@every 5m"},
		{value: "*/2 * * * *", want: "*/2 * * * *"},
		{value: "@hourly", want: "@hourly"},
		{value: "every five minutes", want: "@every 5m"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("RATELIMIT_CLEANUP_SCHEDULE", tt.value)
			if got := GetEnvSchedule("RATELIMIT_CLEANUP_SCHEDULE", "@every 5m"); got != tt.want {
				t.Errorf("GetEnvSchedule() = %q, want %q", got, tt.want)
			}
		})
	}
}
