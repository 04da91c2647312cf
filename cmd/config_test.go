package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Addr == "" {
		t.Fatalf("expected default listen address")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  addr: ":9090"
database:
  driver: sqlite
  path: data/talento.db
auth:
  jwt_secret: from-file
scheduler:
  interval: "0 3 * * *"
matcher:
  limit: 5
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("JWT_SECRET", "")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Auth.Secret != "from-file" || cfg.Database.Path != "data/talento.db" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Scheduler.Interval != "0 3 * * *" || cfg.Matcher.Limit != 5 {
		t.Fatalf("nested sections not parsed: %+v", cfg)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"DATABASE_URL": "postgres://u:p@localhost:5432/talento",
		"JWT_SECRET":   "from-env",
		"LISTEN_ADDR":  ":7000",
	}
	cfg := AppConfig{}
	cfg.Auth.Secret = "from-file"
	cfg.applyEnv(func(k string) string { return env[k] })

	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != env["DATABASE_URL"] {
		t.Fatalf("expected postgres dsn, got %+v", cfg.Database)
	}
	if cfg.Auth.Secret != "from-env" || cfg.Server.Addr != ":7000" {
		t.Fatalf("env did not override: %+v", cfg)
	}

	sqlite := AppConfig{}
	sqlite.applyEnv(func(k string) string {
		if k == "DATABASE_URL" {
			return "file:./dev.db"
		}
		return ""
	})
	if sqlite.Database.Driver != "sqlite" || sqlite.Database.Path != "./dev.db" {
		t.Fatalf("expected sqlite path, got %+v", sqlite.Database)
	}
	if sqlite.Server.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", sqlite.Server.Addr)
	}
}
