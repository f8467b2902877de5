package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-site-export/cmd/site-export/config"
	"github.com/goliatone/go-site-export/command"
	"github.com/goliatone/go-site-export/export"
	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the theme archive to a local file",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath)
		if err != nil {
			fatal("Failed to load config", err)
		}
		if err := runExport(cmd.Context(), cfg, exportOut); err != nil {
			fatal("Export failed", err)
		}
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", export.DefaultFilename, "Archive output path")
	rootCmd.AddCommand(exportCmd)
}

func runExport(ctx context.Context, cfg config.Config, out string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.Create(out)
	if err != nil {
		return err
	}

	result := gcmd.NewResult[export.Result]()
	ctx = gcmd.ContextWithResult(ctx, result)
	handler := command.NewExportThemeHandler(app.Exporter)
	err = handler.Execute(ctx, command.ExportTheme{Actor: app.Actor, Output: file})
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(out)
		return err
	}

	if stored, ok := result.Load(); ok {
		slog.Info("archive written",
			"path", out,
			"templates", stored.Templates,
			"template_parts", stored.TemplateParts,
			"bytes", stored.Size,
		)
	}
	return nil
}
