package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"jobboard-api/config"
	"jobboard-api/internal/app"
	"jobboard-api/internal/database"
	"jobboard-api/internal/logging"
	"jobboard-api/internal/server"

	_ "jobboard-api/docs" // Registers the OpenAPI document served under /swagger
)

// @title           Job Board API
// @version         1.0
// @description     Job postings with filtering, radius search, salary stats, resume applications and account management.

// @contact.name   API Support
// @contact.email  support@jobboard.local

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Initialize Redis Client ---
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	dbPool, err := database.NewConnectionPool(ctx, cfg.DB, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()

	if cfg.DB.RunMigrations {
		if err := database.RunMigrations(ctx, dbPool, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	application, err := app.New(cfg, logger, dbPool, redisClient)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}

	srv := server.NewServer(application)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Server exited with error", zap.Error(err), zap.Bool("panicked", errors.Is(err, server.ErrCrashed)))
		stop()
		_ = redisClient.Close()
		dbPool.Close()
		_ = logger.Sync()
		os.Exit(1)
	}

	logger.Info("Application gracefully stopped.")
}
