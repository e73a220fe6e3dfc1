package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mcoot/aliasgame/internal/api"
	"github.com/mcoot/aliasgame/internal/factory"
	"github.com/mcoot/aliasgame/internal/services/interval"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &Config{}
	if err := newCmd(cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Config) error {
	// Set up logging with JSON output
	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(ctx, factory.Config{
		BackendURL: cfg.storeURL,
		BackendKey: cfg.storeKey,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Storage:     app.Storage,
		HubManager:  app.HubManager,
		APIKey:      cfg.apiKey,
		CORSOrigins: cfg.corsOrigins,
		RateLimit:   cfg.rateLimit,
		RateBurst:   cfg.rateBurst,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.bind
	serverConfig.Port = cfg.port
	server := api.NewServer(router, serverConfig, logger)

	// Event streams never finish on their own
	server.OnShutdown(app.HubManager.CloseAll)

	// Drop hubs nobody is subscribed to any more
	cleanup := interval.New(app.Clock, cfg.hubCleanup)
	cleanup.Start(ctx, func(context.Context) {
		if n := app.HubManager.CleanupEmptyHubs(); n > 0 {
			logger.Debug("removed idle event hubs", slog.Int("count", n))
		}
	})
	defer cleanup.Stop()

	logger.Info("server configured",
		slog.String("addr", server.Addr()),
		slog.String("store", storeScheme(cfg.storeURL)),
		slog.Bool("api_key", cfg.apiKey != ""),
	)

	if err := server.Run(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// storeScheme hides credentials that may be embedded in the store URL
func storeScheme(storeURL string) string {
	scheme, _, _ := strings.Cut(storeURL, ":")
	return scheme
}
