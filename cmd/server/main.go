package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mymemorycard.com/backend/internal/bootstrap"
	"mymemorycard.com/backend/internal/config"
	"mymemorycard.com/backend/internal/server"
	"mymemorycard.com/backend/pkg/database"
	"mymemorycard.com/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("invalid configuration")
	}
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(database.Options{
		Driver:     cfg.DBDriver,
		URL:        cfg.DatabaseURL,
		Host:       cfg.DBHost,
		Port:       cfg.DBPort,
		User:       cfg.DBUser,
		Password:   cfg.DBPass,
		Name:       cfg.DBName,
		SQLitePath: cfg.SQLitePath,
		Debug:      cfg.LogLevel == "debug",
	})
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if err := bootstrap.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedAdminUser(db, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			log.WithError(err).Fatal("failed to seed admin user")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := database.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		// the API still works without Redis
		log.WithError(err).Warn("redis unavailable, running without cache")
		redisClient = nil
	} else if redisClient == nil {
		log.Info("REDIS_URL not set, running without cache")
	}

	srv, err := server.NewServer(cfg, db, redisClient)
	if err != nil {
		log.WithError(err).Fatal("failed to build server")
	}

	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		log.WithError(err).Fatal("server exited with error")
	}
	log.Info("server stopped")
}
