package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Vitorass0/sgu-auth-server/internal/auth"
	"github.com/Vitorass0/sgu-auth-server/internal/config"
	"github.com/Vitorass0/sgu-auth-server/internal/constants"
	"github.com/Vitorass0/sgu-auth-server/internal/database"
	"github.com/Vitorass0/sgu-auth-server/internal/handlers"
	"github.com/Vitorass0/sgu-auth-server/internal/keycloak"
	"github.com/Vitorass0/sgu-auth-server/internal/middleware"
	"github.com/Vitorass0/sgu-auth-server/internal/routing"
	"github.com/Vitorass0/sgu-auth-server/internal/services"
	"github.com/Vitorass0/sgu-auth-server/internal/utils"
	"github.com/Vitorass0/sgu-auth-server/pkg/cache"
)

type Application struct {
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
	admin   *keycloak.AdminClient
	db      *gorm.DB
	cache   cache.Cache
	version string
}

func New(cfg *config.Config, logger *zap.Logger, version string) *Application {
	return &Application{
		config:  cfg,
		logger:  logger,
		version: version,
	}
}

func (app *Application) Initialize(ctx context.Context) error {
	if err := app.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if app.config.Database.Host != "" {
		app.logger.Info("Connecting to database",
			zap.String("host", app.config.Database.Host),
			zap.Int("port", app.config.Database.Port),
			zap.String("database", app.config.Database.DBName))

		db, err := database.Connect(app.config.Database, app.config.Environment)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("database migration failed: %w", err)
		}

		app.db = db
		app.logger.Info("Database connected")
	} else {
		app.logger.Warn("No database configured, running without the local account store")
	}

	if app.config.Redis.Host != "" {
		c, err := database.ConnectRedis(app.config.Redis)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		app.cache = c
		app.logger.Info("Redis connected")
	}

	app.admin = keycloak.NewAdminClient(
		app.config.Keycloak.URL,
		app.config.Keycloak.AdminRealm,
		app.config.Keycloak.AdminUser,
		app.config.Keycloak.AdminPass,
		app.config.Keycloak.SkipTLSVerify,
		app.config.Keycloak.CACertPath,
		app.logger,
	)

	if err := app.admin.TestAuthentication(ctx); err != nil {
		return fmt.Errorf("keycloak admin authentication failed: %w", err)
	}

	verifier, err := auth.NewVerifier(
		ctx,
		app.config.Keycloak.URL,
		app.config.Keycloak.Realm,
		app.config.Keycloak.SkipTLSVerify,
		app.config.Keycloak.CACertPath,
		app.logger,
	)
	if err != nil {
		return fmt.Errorf("OIDC verifier initialization failed: %w", err)
	}

	serviceContainer := services.NewContainer(app.db, app.cache, app.admin, app.config, app.logger)

	router := app.setupRouter(serviceContainer, verifier)

	app.server = &http.Server{
		Addr:         ":" + app.config.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(app.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(app.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(app.config.Server.IdleTimeout) * time.Second,
	}

	app.logger.Info("Application initialized",
		zap.String("server_address", app.server.Addr),
		zap.Int("routes_configured", len(router.Routes())))

	return nil
}

func (app *Application) setupRouter(serviceContainer *services.Container, verifier *auth.Verifier) *gin.Engine {
	if app.config.Environment == "development" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	if err := utils.RegisterValidators(); err != nil {
		app.logger.Warn("Failed to register custom validators", zap.Error(err))
	}

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(app.logger))
	router.Use(middleware.Recovery(app.logger))
	router.Use(middleware.CORS(app.config.Server.AllowedOrigins))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSize(constants.MaxRequestSize))

	handlerContainer := handlers.NewContainer(serviceContainer, app.db, app.cache, app.admin, app.version, app.logger)

	routing.New(verifier, app.logger).Setup(router, handlerContainer)

	return router
}

func (app *Application) Start() error {
	app.logger.Info("Server ready",
		zap.String("port", app.config.Server.Port),
		zap.String("environment", app.config.Environment))

	if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (app *Application) Shutdown(ctx context.Context) error {
	app.logger.Info("HTTP server shutting down gracefully")

	err := app.server.Shutdown(ctx)

	if app.cache != nil {
		if closeErr := app.cache.Close(); closeErr != nil {
			app.logger.Warn("Error closing cache connection", zap.Error(closeErr))
		}
	}

	if app.db != nil {
		if sqlDB, dbErr := app.db.DB(); dbErr == nil {
			if closeErr := sqlDB.Close(); closeErr != nil {
				app.logger.Warn("Error closing database connection", zap.Error(closeErr))
			}
		}
	}

	if err != nil {
		app.logger.Error("Error during server shutdown", zap.Error(err))
		return err
	}

	app.logger.Info("HTTP server shutdown completed")
	return nil
}
