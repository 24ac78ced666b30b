package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CASDOOR_ENDPOINT", "")
	t.Setenv("PRIVILEGED_EMAILS", " Admin@GizaEdu.com ,owner@gizaedu.com,")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.RemoteEnabled() {
		t.Error("RemoteEnabled() = true without DATABASE_URL")
	}
	if cfg.StorageNamespace != "gizaedu" {
		t.Errorf("StorageNamespace = %q", cfg.StorageNamespace)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %s", cfg.SessionTTL)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %s", cfg.LogLevel)
	}
	want := []string{"admin@gizaedu.com", "owner@gizaedu.com"}
	if len(cfg.PrivilegedEmails) != len(want) {
		t.Fatalf("PrivilegedEmails = %v", cfg.PrivilegedEmails)
	}
	for i := range want {
		if cfg.PrivilegedEmails[i] != want[i] {
			t.Errorf("PrivilegedEmails[%d] = %q, want %q", i, cfg.PrivilegedEmails[i], want[i])
		}
	}
}

func TestLoadConfig_RemoteRequiresBothSettings(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/giza")
	t.Setenv("CASDOOR_ENDPOINT", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when only DATABASE_URL is set")
	}

	t.Setenv("CASDOOR_ENDPOINT", "https://auth.example.com")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !cfg.RemoteEnabled() {
		t.Error("RemoteEnabled() = false with both settings")
	}
}

func TestConfig_BypassAllowed(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"disabled", Config{Environment: "development"}, false},
		{"local development", Config{Environment: "development", AllowPrivilegedBypass: true}, true},
		{"production", Config{Environment: EnvironmentProduction, AllowPrivilegedBypass: true}, false},
		{"remote backend", Config{
			Environment:           "development",
			AllowPrivilegedBypass: true,
			DatabaseURL:           "postgres://x",
			Casdoor:               CasdoorConfig{Endpoint: "https://auth"},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.BypassAllowed(); got != tt.want {
				t.Errorf("BypassAllowed() = %v, want %v", got, tt.want)
			}
		})
	}
}
