package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paycallback/internal/app"
	"paycallback/internal/bootstrap"
	"paycallback/internal/config"
	cronpkg "paycallback/internal/cron"
	"paycallback/internal/router"
)

func main() {
	// --- Logger ---
	logger, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if hasArg("--bootstrap-db") {
		if err := runDBBootstrap(logger); err != nil {
			logger.Fatal("Database bootstrap failed", zap.Error(err))
		}
		logger.Info("Database bootstrap completed")
		return
	}

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// --- Database ---
	db, err := config.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := bootstrap.MigrateAndSeed(db); err != nil {
		logger.Fatal("Failed to bootstrap database schema", zap.Error(err))
	}

	// --- Callback pipeline ---
	components, err := app.Build(cfg, db, logger)
	if err != nil {
		logger.Fatal("Failed to wire callback pipeline", zap.Error(err))
	}
	defer components.Close()
	logger.Info("Payment gateways registered", zap.Strings("providers", components.Deps.Registry.Names()))

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true

	// --- Routes ---
	router.Setup(e, db, components.Dispatcher(), logger, cfg.API.Key, cfg.Callback.RateLimit)

	// --- Cron Scheduler ---
	var statusReporter cronpkg.StatusReporter
	if components.Reporter != nil {
		statusReporter = components.Reporter
	}
	scheduler := cronpkg.New(components.Logs, cfg.Callback.LogRetention, cfg.Callback.LogPruneSpec,
		components.Orders, statusReporter, logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal("Failed to start cron scheduler", zap.Error(err))
	}

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting payment callback server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	// Stop cron
	ctx := scheduler.Stop()
	<-ctx.Done()

	// Stop HTTP server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func hasArg(name string) bool {
	for _, arg := range os.Args[1:] {
		if arg == name {
			return true
		}
	}
	return false
}

func runDBBootstrap(logger *zap.Logger) error {
	dbCfg, err := config.LoadDatabaseOnly()
	if err != nil {
		return err
	}
	db, err := config.NewDatabase(dbCfg)
	if err != nil {
		return err
	}
	if err := bootstrap.MigrateAndSeed(db); err != nil {
		return err
	}
	logger.Info("Schema migration and default seed completed")
	return nil
}
