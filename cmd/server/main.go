package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/ledgerdesk/ledgerdesk/application/port/inbound"
	"github.com/ledgerdesk/ledgerdesk/application/port/outbound"
	"github.com/ledgerdesk/ledgerdesk/application/usecase"
	"github.com/ledgerdesk/ledgerdesk/application/usecase/user_management"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/adapter/memory"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/adapter/postgres"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/config"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/http/handler"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/http/middleware"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/http/router"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/http/validator"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/jwt"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/logger"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/password"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/ratelimit"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logConfig := logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "ledgerdesk-api",
	}
	structuredLogger := logger.NewStructuredLogger(logConfig)
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env": cfg.Environment,
	})

	var userRepo outbound.UserRepository
	if cfg.DatabaseURL != "" {
		db, err := openDatabase(ctx, cfg.DatabaseURL)
		if err != nil {
			structuredLogger.Error(ctx, "Failed to connect to database", err, nil)
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		userRepo = postgres.NewUserRepositoryAdapter(db)
		structuredLogger.Info(ctx, "Database connection established", nil)
	} else {
		if cfg.IsProduction() {
			log.Fatal("DATABASE_URL is required in production")
		}
		userRepo = memory.NewUserRepository()
		structuredLogger.Warn(ctx, "DATABASE_URL not set, users are kept in memory", nil)
	}

	var rateLimitService inbound.RateLimitService
	rateLimitService, err = ratelimit.NewRateLimitService(ratelimit.RateLimitConfig{
		Enabled:  cfg.RateLimitEnabled,
		RedisURL: cfg.RedisURL,
	}, logger.NewLogrus(logConfig))
	if err != nil {
		structuredLogger.Error(ctx, "Failed to initialize rate limit service, continuing without it", err, map[string]interface{}{
			"redis_url": cfg.RedisURL,
		})
		rateLimitService = ratelimit.NewNoopRateLimitService()
	}

	tokenService, err := jwt.NewJWTService(cfg, jwt.WithLogger(structuredLogger))
	if err != nil {
		structuredLogger.Error(ctx, "Failed to initialize JWT service", err, nil)
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}
	passwordService := password.NewBcryptPasswordService(cfg.BcryptCost)

	authUseCase := usecase.NewAuthUseCase(
		userRepo,
		tokenService,
		passwordService,
		rateLimitService,
		structuredLogger,
		cfg.TokenTTL,
		usecase.LoginLimits{
			Attempts: cfg.RateLimitLoginAttempts,
			Window:   cfg.RateLimitLoginWindow,
			Block:    cfg.RateLimitBlockDuration,
		},
	)
	userManagementUseCase := user_management.NewUserManagementUseCase(userRepo, passwordService, structuredLogger)

	v := validator.NewValidator()
	ipRule := middleware.RateLimitRule{
		Limit:  cfg.RateLimitIPAttempts,
		Window: cfg.RateLimitIPWindow,
		Block:  cfg.RateLimitBlockDuration,
	}
	api := router.New(router.Config{
		CORSEnabled:          cfg.CORSEnabled,
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		CORSAllowCredentials: cfg.CORSAllowCredentials,
		LoginLimit:           ipRule,
		RegisterLimit:        ipRule,
		RefreshLimit:         ipRule,
	}, router.Deps{
		Auth:      handler.NewAuthHandler(authUseCase, v),
		Users:     handler.NewUserManagementHandler(userManagementUseCase, v),
		Guard:     middleware.NewAuthMiddleware(tokenService, structuredLogger),
		RateLimit: middleware.NewRateLimitMiddleware(rateLimitService, structuredLogger),
		Logger:    structuredLogger,
	})

	server := router.NewServer(router.ServerConfig{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}, api, structuredLogger)

	go func() {
		if err := server.Start(ctx); err != nil {
			structuredLogger.Error(ctx, "Server failed", err, nil)
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, nil)
	}
	structuredLogger.Info(ctx, "Server exited", nil)
}

func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
