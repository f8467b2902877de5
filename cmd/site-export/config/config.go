package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Source kinds.
const (
	SourceFS     = "fs"
	SourceSQLite = "sqlite"
)

// Config holds the site export configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Export ExportConfig `yaml:"export"`
	Source SourceConfig `yaml:"source"`
	Actor  ActorConfig  `yaml:"actor"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	BasePath string `yaml:"base_path"`
}

// ExportConfig holds archive settings.
type ExportConfig struct {
	TempDir    string `yaml:"temp_dir"`
	Theme      string `yaml:"theme"`
	Strict     bool   `yaml:"strict"`
	Capability string `yaml:"capability"`
}

// SourceConfig selects where templates are read from.
type SourceConfig struct {
	Kind     string `yaml:"kind"`
	ThemeDir string `yaml:"theme_dir"`
	DSN      string `yaml:"dsn"`
}

// ActorConfig is the user every request is served as. It is empty by
// default, so exports are refused until an operator grants one.
type ActorConfig struct {
	ID           string   `yaml:"id"`
	Capabilities []string `yaml:"capabilities"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:     "localhost",
			Port:     "8080",
			BasePath: "/__experimental/edit-site/v1",
		},
		Export: ExportConfig{
			Capability: "edit_theme_options",
		},
		Source: SourceConfig{
			Kind:     SourceFS,
			ThemeDir: ".",
			DSN:      "file:site-export.db?cache=shared",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path,
// a .env file in the working directory and SITE_EXPORT_* environment
// variables, in that order.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := ApplyEnv(&cfg, os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides cfg with values returned by getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if host := getenv("SITE_EXPORT_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := getenv("SITE_EXPORT_PORT"); port != "" {
		cfg.Server.Port = port
	}
	if basePath := getenv("SITE_EXPORT_BASE_PATH"); basePath != "" {
		cfg.Server.BasePath = basePath
	}
	if tempDir := getenv("SITE_EXPORT_TEMP_DIR"); tempDir != "" {
		cfg.Export.TempDir = tempDir
	}
	if theme := getenv("SITE_EXPORT_THEME"); theme != "" {
		cfg.Export.Theme = theme
	}
	if strict := getenv("SITE_EXPORT_STRICT"); strict != "" {
		parsed, err := strconv.ParseBool(strict)
		if err != nil {
			return fmt.Errorf("SITE_EXPORT_STRICT: %w", err)
		}
		cfg.Export.Strict = parsed
	}
	if capability := getenv("SITE_EXPORT_CAPABILITY"); capability != "" {
		cfg.Export.Capability = capability
	}
	if source := getenv("SITE_EXPORT_SOURCE"); source != "" {
		cfg.Source.Kind = source
	}
	if themeDir := getenv("SITE_EXPORT_THEME_DIR"); themeDir != "" {
		cfg.Source.ThemeDir = themeDir
	}
	if dsn := getenv("SITE_EXPORT_DSN"); dsn != "" {
		cfg.Source.DSN = dsn
	}
	if actor := getenv("SITE_EXPORT_ACTOR"); actor != "" {
		cfg.Actor.ID = actor
	}
	if caps := getenv("SITE_EXPORT_ACTOR_CAPABILITIES"); caps != "" {
		cfg.Actor.Capabilities = splitCSV(caps)
	}
	return nil
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	switch c.Source.Kind {
	case SourceFS:
		if c.Source.ThemeDir == "" {
			return errors.New("source.theme_dir is required for fs source")
		}
	case SourceSQLite:
		if c.Source.DSN == "" {
			return errors.New("source.dsn is required for sqlite source")
		}
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	return nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
