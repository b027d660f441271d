package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Estimation.BaseHoursPerArea != 2.0 {
		t.Errorf("BaseHoursPerArea = %v, want 2", cfg.Estimation.BaseHoursPerArea)
	}
	if cfg.HTTP.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.HTTP.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.RemoteConfigured() {
		t.Error("default config should not have remote services configured")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "testscope.yaml")
	data := `
jira:
  baseURL: https://jira.example.com
  email: qa@example.com
testrail:
  baseURL: https://example.testrail.io
  projectID: 3
  suiteID: 12
cache:
  enabled: true
  ttl: 90m
server:
  port: 9000
estimation:
  baseHoursPerArea: 1.5
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TESTSCOPE_JIRA_TOKEN", "secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Jira.BaseURL != "https://jira.example.com" || cfg.Jira.Token != "secret" {
		t.Errorf("jira = %+v", cfg.Jira)
	}
	if cfg.TestRail.ProjectID != 3 || cfg.TestRail.SuiteID != 12 {
		t.Errorf("testrail = %+v", cfg.TestRail)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL != 90*time.Minute {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Port != 9000 || cfg.Server.Addr != "127.0.0.1" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Estimation.BaseHoursPerArea != 1.5 {
		t.Errorf("estimation = %+v", cfg.Estimation)
	}
	if cfg.GitHub.BaseURL != "https://api.github.com" {
		t.Errorf("github default lost: %+v", cfg.GitHub)
	}
	if !cfg.RemoteConfigured() {
		t.Error("expected remote services configured")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadSearchPathFallsBackToDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Log.Format != "text" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TESTSCOPE_GITHUB_TOKEN=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("TESTSCOPE_GITHUB_TOKEN") })

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GitHub.Token != "from-dotenv" {
		t.Errorf("token = %q", cfg.GitHub.Token)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"hours", func(c *Config) { c.Estimation.BaseHoursPerArea = -1 }, "estimation.baseHoursPerArea"},
		{"ttl", func(c *Config) { c.Cache.Enabled = true; c.Cache.TTL = 0 }, "cache.ttl"},
		{"timeout", func(c *Config) { c.HTTP.Timeout = -time.Second }, "http.timeout"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var cfgErr *Error
			if !errors.As(err, &cfgErr) || cfgErr.Field != tt.field {
				t.Errorf("Validate() = %v, want error on %s", err, tt.field)
			}
		})
	}
}
