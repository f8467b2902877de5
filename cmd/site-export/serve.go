package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/goliatone/go-router"
	exporthttp "github.com/goliatone/go-site-export/adapters/http"
	exportrouter "github.com/goliatone/go-site-export/adapters/router"
	"github.com/goliatone/go-site-export/cmd/site-export/config"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the export endpoint over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath)
		if err != nil {
			fatal("Failed to load config", err)
		}
		if err := runServe(cmd.Context(), cfg); err != nil {
			fatal("Server failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if app.Actor.ID == "" {
		slog.Warn("no actor configured, export requests will be refused", "hint", "set SITE_EXPORT_ACTOR and SITE_EXPORT_ACTOR_CAPABILITIES")
	}

	srv := router.NewFiberAdapter(fiberAppInitializer())
	handler := exportrouter.NewHandler(app.ControllerConfig(exporthttp.StaticActorProvider{Actor: app.Actor}))
	handler.RegisterRoutes(srv.Router())

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr, "export", "http://"+addr+handler.ExportPath())
		errCh <- srv.Serve(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	slog.Info("shutting down server")
	return srv.Shutdown(ctx)
}

func fiberAppInitializer() func(*fiber.App) *fiber.App {
	return func(*fiber.App) *fiber.App {
		fiberApp := fiber.New(fiber.Config{
			AppName:               "Site Export",
			DisableStartupMessage: true,
		})
		fiberApp.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
		}))
		return fiberApp
	}
}
