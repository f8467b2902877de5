package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Source.Kind != SourceFS {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Server.BasePath != "/__experimental/edit-site/v1" {
		t.Fatalf("unexpected base path %q", cfg.Server.BasePath)
	}
	if cfg.Actor.ID != "" || len(cfg.Actor.Capabilities) != 0 {
		t.Fatalf("expected no actor by default, got %+v", cfg.Actor)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "site-export.yaml")
	data := []byte(`server:
  port: "9090"
export:
  strict: true
source:
  kind: sqlite
  dsn: "file:templates.db"
actor:
  id: editor
  capabilities: [edit_theme_options, edit_posts]
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SITE_EXPORT_TEMP_DIR=/tmp/exports\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("SITE_EXPORT_PORT", "7070")
	t.Cleanup(func() { _ = os.Unsetenv("SITE_EXPORT_TEMP_DIR") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("expected env port override, got %q", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Fatalf("expected default host kept, got %q", cfg.Server.Host)
	}
	if !cfg.Export.Strict {
		t.Fatalf("expected strict from file")
	}
	if cfg.Export.TempDir != "/tmp/exports" {
		t.Fatalf("expected temp dir from .env, got %q", cfg.Export.TempDir)
	}
	if cfg.Source.Kind != SourceSQLite || cfg.Source.DSN != "file:templates.db" {
		t.Fatalf("unexpected source %+v", cfg.Source)
	}
	if cfg.Actor.ID != "editor" || len(cfg.Actor.Capabilities) != 2 {
		t.Fatalf("unexpected actor %+v", cfg.Actor)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SITE_EXPORT_SOURCE":             "sqlite",
		"SITE_EXPORT_STRICT":             "1",
		"SITE_EXPORT_ACTOR_CAPABILITIES": "edit_theme_options, , export",
		"SITE_EXPORT_BASE_PATH":          "/wp-json/edit-site/v1",
	}
	cfg := Defaults()
	if err := ApplyEnv(&cfg, func(key string) string { return env[key] }); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Source.Kind != SourceSQLite || !cfg.Export.Strict {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.Actor.Capabilities) != 2 || cfg.Actor.Capabilities[1] != "export" {
		t.Fatalf("unexpected capabilities %v", cfg.Actor.Capabilities)
	}
	if cfg.Server.BasePath != "/wp-json/edit-site/v1" {
		t.Fatalf("unexpected base path %q", cfg.Server.BasePath)
	}

	bad := Defaults()
	err := ApplyEnv(&bad, func(key string) string {
		if key == "SITE_EXPORT_STRICT" {
			return "maybe"
		}
		return ""
	})
	if err == nil {
		t.Fatalf("expected strict parse error")
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Source.Kind = "s3"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown source error")
	}

	cfg = Defaults()
	cfg.Source.Kind = SourceSQLite
	cfg.Source.DSN = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected dsn error")
	}
}
