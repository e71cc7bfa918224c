package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mcoot/courgette-crush/internal/api"
	"github.com/mcoot/courgette-crush/internal/config"
	"github.com/mcoot/courgette-crush/internal/factory"
	"github.com/mcoot/courgette-crush/internal/web"
)

const cleanupInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel() // Validated by Load

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := factory.New(ctx, factory.ConfigFrom(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	logger.Info("application ready",
		slog.String("storage", cfg.Storage.Type),
		slog.Int("rows", cfg.Game.Rows),
		slog.Int("cols", cfg.Game.Cols),
		slog.Int("moves", cfg.Game.Moves))

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		GameController: app.GameController,
		BotService:     app.BotService,
		HubManager:     app.HubManager,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		GameController: app.GameController,
		HubManager:     app.HubManager,
		StaticDir:      findStaticDir(),
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := api.NewServer(mux, cfg.Server, logger)
	server.OnShutdown(app.HubManager.Shutdown)

	go runCleanup(ctx, app, logger)

	if err := server.Run(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// runCleanup periodically drops expired token revocations and idle hubs
func runCleanup(ctx context.Context, app *factory.App, logger *slog.Logger) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.AuthService.CleanExpiredSessions()
			app.HubManager.CleanupEmptyHubs()
			logger.Debug("periodic cleanup done",
				slog.Int("revoked_tokens", app.AuthService.RevokedCount()))
		}
	}
}

// findStaticDir looks for the static files directory
func findStaticDir() string {
	candidates := []string{
		"internal/web/static",
		filepath.Join(os.Getenv("PWD"), "internal/web/static"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}

	return ""
}
