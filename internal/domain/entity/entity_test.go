package entity

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSanitizeSearch(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "ann", want: "ann"},
		{in: "a%n_n*", want: "ann"},
		{in: "Ann Smith", want: "Ann Smith"},
		{in: "ann),id.eq.(1", want: "annideq1"},
		{in: "Jürgen", want: "Jrgen"},
		{in: "  ", want: ""},
	}

	for _, tt := range tests {
		if got := SanitizeSearch(tt.in); got != tt.want {
			t.Errorf("SanitizeSearch(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitProfilePatch(t *testing.T) {
	name, cols, err := SplitProfilePatch(map[string]any{
		"name":        "Ann",
		"bio":         "hello",
		"deactivated": false,
	})
	if err != nil {
		t.Fatalf("SplitProfilePatch() error = %v", err)
	}
	if name != "Ann" {
		t.Errorf("name = %q, want Ann", name)
	}
	if diff := cmp.Diff(map[string]any{"bio": "hello", "deactivated": false}, cols); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}

	_, _, err = SplitProfilePatch(map[string]any{"claims": map[string]any{"admin": true}})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("err = %v, want ErrInvalidParameter", err)
	}

	_, _, err = SplitProfilePatch(map[string]any{"name": 42})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("err = %v, want ErrInvalidParameter", err)
	}
}

func TestPublicProfile_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(PublicProfile{ID: "u1"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"id":"u1","full_name":null,"avatar_url":null,"claims":null,"bio":null}`
	if string(b) != want {
		t.Errorf("Marshal() = %s, want %s", b, want)
	}
}
