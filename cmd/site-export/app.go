package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-site-export/adapters/exportapi"
	"github.com/goliatone/go-site-export/cmd/site-export/config"
	"github.com/goliatone/go-site-export/export"
	sourcebun "github.com/goliatone/go-site-export/sources/bun"
	sourcefs "github.com/goliatone/go-site-export/sources/fs"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// App holds the wired export components.
type App struct {
	Config   config.Config
	Exporter *export.Exporter
	Actor    export.Actor
	Logger   export.Logger

	db *bun.DB
}

// NewApp builds the template source and exporter described by cfg.
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	logger := newLogger(slog.Default())
	app := &App{
		Config: cfg,
		Logger: logger,
		Actor: export.Actor{
			ID:           cfg.Actor.ID,
			Capabilities: cfg.Actor.Capabilities,
		},
	}

	source, err := app.buildSource(ctx)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	exporter := export.NewExporter(source)
	exporter.Logger = logger
	exporter.TempDir = cfg.Export.TempDir
	exporter.Theme = cfg.Export.Theme
	exporter.Guard = export.CapabilityGuard{Capability: cfg.Export.Capability}
	exporter.Transformer.Strict = cfg.Export.Strict
	exporter.Transformer.Logger = logger
	app.Exporter = exporter
	return app, nil
}

// ControllerConfig returns the shared transport configuration.
func (a *App) ControllerConfig(provider export.ActorProvider) exportapi.Config {
	return exportapi.Config{
		Exporter:      a.Exporter,
		ActorProvider: provider,
		BasePath:      a.Config.Server.BasePath,
		Logger:        a.Logger,
	}
}

// Close releases the database when one is open.
func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) buildSource(ctx context.Context) (export.TemplateSource, error) {
	switch a.Config.Source.Kind {
	case config.SourceFS:
		slog.Debug("reading templates from theme directory", "dir", a.Config.Source.ThemeDir)
		return sourcefs.NewSource(a.Config.Source.ThemeDir, a.Config.Export.Theme), nil
	case config.SourceSQLite:
		sqldb, err := sql.Open(sqliteshim.ShimName, a.Config.Source.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.db = bun.NewDB(sqldb, sqlitedialect.New())
		source := sourcebun.NewSource(a.db)
		if err := source.CreateSchema(ctx); err != nil {
			return nil, err
		}
		slog.Debug("reading templates from sqlite", "dsn", a.Config.Source.DSN)
		return source, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", a.Config.Source.Kind)
	}
}
