package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "liftlog"
  user: "liftlog"
  password: "secret"
  sslmode: "disable"
auth:
  tokens:
    - token: "test-token-123"
      login: "alice@example.com"
      display_name: "Alice"
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadValid verifies that a well-formed YAML config loads with all fields populated.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "liftlog" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "liftlog")
	}
	if len(cfg.Auth.Tokens) != 1 {
		t.Fatalf("auth.tokens length = %d, want 1", len(cfg.Auth.Tokens))
	}
	if cfg.Auth.Tokens[0].Login != "alice@example.com" {
		t.Errorf("token login = %q, want %q", cfg.Auth.Tokens[0].Login, "alice@example.com")
	}
}

// TestEnvOverride verifies that LIFTLOG_ env vars take precedence over YAML
// values, so production deployments can override config via environment.
func TestEnvOverride(t *testing.T) {
	t.Setenv("LIFTLOG_DB_HOST", "override-host")
	t.Setenv("LIFTLOG_DB_PORT", "9999")
	t.Setenv("LIFTLOG_AUTH_TOKEN", "env-token")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Host != "override-host" {
		t.Errorf("database.host = %q, want %q", cfg.Database.Host, "override-host")
	}
	if cfg.Database.Port != 9999 {
		t.Errorf("database.port = %d, want 9999", cfg.Database.Port)
	}
	if len(cfg.Auth.Tokens) != 2 {
		t.Fatalf("auth.tokens length = %d, want 2 (yaml + env)", len(cfg.Auth.Tokens))
	}
	if cfg.Auth.Tokens[1].Token != "env-token" || cfg.Auth.Tokens[1].Login != "local" {
		t.Errorf("env token entry = %+v, want env-token/local", cfg.Auth.Tokens[1])
	}
	// Unchanged fields should keep YAML values
	if cfg.Database.Name != "liftlog" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "liftlog")
	}
}

// TestValidationMissingPort verifies that missing required fields produce a
// clear error instead of a half-configured server.
func TestValidationMissingPort(t *testing.T) {
	yaml := `
server:
  host: "0.0.0.0"
database:
  host: "localhost"
  port: 5432
  name: "liftlog"
  user: "liftlog"
auth:
  tokens:
    - token: "t"
      login: "l"
`
	_, err := Load(writeTemp(t, yaml))
	if err == nil {
		t.Fatal("expected validation error for missing port")
	}
}

// TestValidationNoTokens verifies a config with no bearer tokens is rejected.
// Without tokens every request would be unauthenticated.
func TestValidationNoTokens(t *testing.T) {
	yaml := `
server:
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "liftlog"
  user: "liftlog"
`
	_, err := Load(writeTemp(t, yaml))
	if err == nil {
		t.Fatal("expected validation error for missing tokens")
	}
}

// TestValidationDuplicateToken verifies duplicate tokens are rejected, since
// a duplicate would make identity resolution ambiguous.
func TestValidationDuplicateToken(t *testing.T) {
	yaml := `
server:
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "liftlog"
  user: "liftlog"
auth:
  tokens:
    - token: "same"
      login: "a"
    - token: "same"
      login: "b"
`
	_, err := Load(writeTemp(t, yaml))
	if err == nil {
		t.Fatal("expected validation error for duplicate token")
	}
}

// TestDSNDefaultSSLMode verifies the DSN falls back to sslmode=disable.
func TestDSNDefaultSSLMode(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5432, Name: "n", User: "u", Password: "p"}
	want := "postgres://u:p@h:5432/n?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
