// @title SGU Auth Server
// @version 1.0
// @description Identity provisioning gateway fronting a Keycloak realm
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Vitorass0/sgu-auth-server/internal/app"
	"github.com/Vitorass0/sgu-auth-server/internal/config"
	"github.com/Vitorass0/sgu-auth-server/internal/constants"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var (
		configFile   = flag.String("config", "", "Path to configuration file (YAML, TOML, or JSON)")
		validateOnly = flag.Bool("validate-only", false, "Validate configuration and exit")
		showVersion  = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("sgu-auth-server %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	basicLogger, _ := zap.NewProduction()
	if basicLogger == nil {
		basicLogger, _ = zap.NewDevelopment()
	}
	defer basicLogger.Sync()

	cfg, err := config.LoadWithConfigFile(*configFile)
	if err != nil {
		basicLogger.Fatal("Failed to load configuration",
			zap.Error(err),
			zap.String("config_file", *configFile),
			zap.String("help", "Ensure configuration file exists or set environment variables with SGU_ prefix"))
	}

	logger, err := config.NewLogger(cfg.Environment)
	if err != nil {
		basicLogger.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync()

	logger.Info("SGU Auth Server starting",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("environment", cfg.Environment))

	if *validateOnly {
		if err := cfg.Validate(); err != nil {
			logger.Error("Configuration validation failed", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("Configuration is valid")
		return
	}

	application := app.New(cfg, logger, version)
	if err := application.Initialize(context.Background()); err != nil {
		logger.Error("Failed to initialize application", zap.Error(err))
		os.Exit(1)
	}

	go func() {
		if err := application.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := application.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("SGU Auth Server stopped")
}
