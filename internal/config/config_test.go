package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDir_Defaults(t *testing.T) {
	t.Setenv("TODO_AUTH_JWTSECRET", "secret")

	cfg, err := LoadDir(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:8000" {
		t.Errorf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.Database.Driver != "sqlite" || cfg.DataSource() != "data/todos.db" {
		t.Errorf("unexpected database %+v", cfg.Database)
	}
	if cfg.TokenTTL() != time.Hour {
		t.Errorf("expected 1h token ttl, got %v", cfg.TokenTTL())
	}
	if cfg.PresignTTL() != 15*time.Minute {
		t.Errorf("expected 15m presign ttl, got %v", cfg.PresignTTL())
	}
	if cfg.Todo.EnforceOwnership {
		t.Error("ownership enforcement should default to off")
	}
	if cfg.Storage.Bucket != "" {
		t.Errorf("storage should default to disabled, got bucket %q", cfg.Storage.Bucket)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("unexpected log level %q", cfg.Log.Level)
	}
}

func TestLoadDir_EnvOverrides(t *testing.T) {
	t.Setenv("TODO_AUTH_JWTSECRET", "secret")
	t.Setenv("TODO_AUTH_TOKENTTLMINUTES", "5")
	t.Setenv("TODO_DATABASE_DRIVER", "Postgres")
	t.Setenv("TODO_DATABASE_DSN", "postgres://todo@localhost/todo")
	t.Setenv("TODO_TODO_ENFORCEOWNERSHIP", "true")
	t.Setenv("TODO_STORAGE_BUCKET", "exports")

	cfg, err := LoadDir(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Database.Driver != "postgres" || cfg.DataSource() != "postgres://todo@localhost/todo" {
		t.Errorf("unexpected database %+v", cfg.Database)
	}
	if cfg.TokenTTL() != 5*time.Minute {
		t.Errorf("expected 5m token ttl, got %v", cfg.TokenTTL())
	}
	if !cfg.Todo.EnforceOwnership {
		t.Error("expected ownership enforcement from env")
	}
	if cfg.Storage.Bucket != "exports" {
		t.Errorf("unexpected bucket %q", cfg.Storage.Bucket)
	}
}

func TestLoadDir_DotEnv(t *testing.T) {
	dir := t.TempDir()
	content := "# local overrides\nTODO_AUTH_JWTSECRET=\"from-dotenv\"\nexport TODO_SERVER_ADDR=127.0.0.1:9000\nTODO_LOG_LEVEL=debug\nmalformed\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// Registered with t.Setenv so the values loaded from .env are restored.
	t.Setenv("TODO_AUTH_JWTSECRET", "")
	os.Unsetenv("TODO_AUTH_JWTSECRET")
	t.Setenv("TODO_SERVER_ADDR", "")
	os.Unsetenv("TODO_SERVER_ADDR")
	t.Setenv("TODO_LOG_LEVEL", "warn")

	cfg, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.JWTSecret != "from-dotenv" {
		t.Errorf("unexpected secret %q", cfg.Auth.JWTSecret)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf(".env must not override the environment, got level %q", cfg.Log.Level)
	}
}

func TestLoadDir_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := "auth:\n  jwtsecret: file-secret\ndatabase:\n  path: /tmp/todos.db\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.JWTSecret != "file-secret" || cfg.Database.Path != "/tmp/todos.db" {
		t.Errorf("config file ignored: %+v", cfg)
	}
}

func TestLoadDir_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"TODO_AUTH_JWTSECRET": ""}},
		{"unknown driver", map[string]string{"TODO_AUTH_JWTSECRET": "s", "TODO_DATABASE_DRIVER": "mysql"}},
		{"postgres without dsn", map[string]string{"TODO_AUTH_JWTSECRET": "s", "TODO_DATABASE_DRIVER": "postgres"}},
		{"zero ttl", map[string]string{"TODO_AUTH_JWTSECRET": "s", "TODO_AUTH_TOKENTTLMINUTES": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadDir(t.TempDir()); err == nil {
				t.Error("expected error")
			}
		})
	}
}
