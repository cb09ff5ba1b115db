package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spiffcs/codewatch/internal/constants"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestLoadFromMissingFiles(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFrom(filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "also-missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timeout() != constants.RequestTimeout {
		t.Errorf("expected default timeout, got %s", cfg.Timeout())
	}
	if cfg.Commits() != constants.CommitLimit {
		t.Errorf("expected default commit limit, got %d", cfg.Commits())
	}
	if cfg.Format() != "text" {
		t.Errorf("expected text format, got %q", cfg.Format())
	}
}

func TestLoadFromMerge(t *testing.T) {
	dir := t.TempDir()
	global := writeFile(t, dir, "global.yaml", `
api_url: https://github.example.com/api/v3/
request_timeout: 10s
commit_limit: 50
cache:
  users:
    capacity: 5
    ttl: 1m
  repos:
    capacity: 7
`)
	local := writeFile(t, dir, "local.yaml", `
commit_limit: 10
log_format: json
cache:
  users:
    ttl: 30s
`)

	cfg, err := LoadFrom(global, local)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIURL != "https://github.example.com/api/v3/" {
		t.Errorf("expected global api_url, got %q", cfg.APIURL)
	}
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("expected 10s timeout, got %s", cfg.Timeout())
	}
	if cfg.Commits() != 10 {
		t.Errorf("expected local commit limit 10, got %d", cfg.Commits())
	}
	if cfg.LogFormat != "json" {
		t.Errorf("expected json log format, got %q", cfg.LogFormat)
	}

	capacity, ttl := cfg.UserCacheLimits()
	if capacity != 5 {
		t.Errorf("expected global user capacity 5, got %d", capacity)
	}
	if ttl != 30*time.Second {
		t.Errorf("expected local user ttl 30s, got %s", ttl)
	}

	capacity, ttl = cfg.RepoCacheLimits()
	if capacity != 7 {
		t.Errorf("expected repo capacity 7, got %d", capacity)
	}
	if ttl != constants.RepoCacheTTL {
		t.Errorf("expected default repo ttl, got %s", ttl)
	}
}

func TestLoadFromInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "commit_limit: [", "failed to parse"},
		{"bad format", "default_format: table", "default_format"},
		{"bad log format", "log_format: xml", "log_format"},
		{"commit limit too large", "commit_limit: 500", "commit_limit"},
		{"negative timeout", "request_timeout: -1s", "request_timeout"},
		{"zero capacity", "cache:\n  repos:\n    capacity: 0", "cache.repos.capacity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "config.yaml", tt.content)

			_, err := LoadFrom(path, filepath.Join(dir, "none.yaml"))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSessionPath(t *testing.T) {
	cfg := &Config{}
	if !strings.HasSuffix(cfg.SessionPath(), filepath.Join("codewatch", "session.json")) {
		t.Errorf("unexpected default session path %q", cfg.SessionPath())
	}

	cfg.SessionFile = "/tmp/session.json"
	if cfg.SessionPath() != "/tmp/session.json" {
		t.Errorf("expected configured session path, got %q", cfg.SessionPath())
	}
}

func TestSecretsFromEnvironment(t *testing.T) {
	t.Setenv(EnvGitHubToken, "ghp_test")
	t.Setenv(EnvClientSecret, "shh")
	t.Setenv(EnvPassword, "hunter2")

	cfg := &Config{}
	if cfg.GitHubToken() != "ghp_test" {
		t.Errorf("expected token from env, got %q", cfg.GitHubToken())
	}
	if cfg.ClientSecret() != "shh" {
		t.Errorf("expected client secret from env, got %q", cfg.ClientSecret())
	}
	if cfg.Password() != "hunter2" {
		t.Errorf("expected password from env, got %q", cfg.Password())
	}
}

func TestDefaultConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	out, err := DefaultConfig().ToYAML()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "token") {
		t.Error("config output must not contain tokens")
	}

	path := writeFile(t, dir, "config.yaml", out)
	cfg, err := LoadFrom(path, filepath.Join(dir, "none.yaml"))
	if err != nil {
		t.Fatalf("defaults did not load back: %v", err)
	}
	capacity, ttl := cfg.UserCacheLimits()
	if capacity != constants.UserHistoryCapacity || ttl != constants.UserCacheTTL {
		t.Errorf("unexpected user cache limits %d %s", capacity, ttl)
	}
}

func TestMinimalConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")
	if err := SaveTo(path, MinimalConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := LoadFrom(path, filepath.Join(dir, "none.yaml"))
	if err != nil {
		t.Fatalf("minimal config did not load: %v", err)
	}
	if cfg.Format() != "text" {
		t.Errorf("expected text format, got %q", cfg.Format())
	}
}
