package config

import (
	"reflect"
	"testing"
	"time"
)

func TestParseList(t *testing.T) {
	cases := map[string][]string{
		"":            nil,
		"12":          {"12"},
		" 11 , 12 ,,": {"11", "12"},
		"a,b,c":       {"a", "b", "c"},
	}
	for in, want := range cases {
		got := parseList(in)
		if len(want) == 0 && len(got) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("parseList(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LOGIN_WINDOW_SECONDS", "")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "")
	t.Setenv("DEFAULT_NUM_QUESTIONS", "")
	t.Setenv("TRUSTED_PROXIES", "")

	cfg := Load()
	if cfg.LoginWindow != 600*time.Second {
		t.Errorf("LoginWindow = %v, want 10m", cfg.LoginWindow)
	}
	if cfg.LoginMaxAttempts != 6 {
		t.Errorf("LoginMaxAttempts = %d, want 6", cfg.LoginMaxAttempts)
	}
	if len(cfg.TrustedProxies) != 0 {
		t.Errorf("TrustedProxies = %v, want none", cfg.TrustedProxies)
	}
	if cfg.DefaultNumQuestions != 125 {
		t.Errorf("DefaultNumQuestions = %d, want 125", cfg.DefaultNumQuestions)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ALLOWED_VERSIONS", "11,12")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")

	cfg := Load()
	if !reflect.DeepEqual(cfg.AllowedVersions, []string{"11", "12"}) {
		t.Errorf("AllowedVersions = %v", cfg.AllowedVersions)
	}
	if !reflect.DeepEqual(cfg.TrustedProxies, []string{"10.0.0.0/8", "127.0.0.1"}) {
		t.Errorf("TrustedProxies = %v", cfg.TrustedProxies)
	}
	if cfg.LoginMaxAttempts != 6 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.LoginMaxAttempts)
	}
}
