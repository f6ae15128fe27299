package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/inkwell/content-platform/internal/api"
	"github.com/inkwell/content-platform/internal/infrastructure/audit"
	"github.com/inkwell/content-platform/internal/infrastructure/config"
	mongostore "github.com/inkwell/content-platform/internal/infrastructure/db/mongo"
	redisstore "github.com/inkwell/content-platform/internal/infrastructure/db/redis"
	"github.com/inkwell/content-platform/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title        Inkwell Credential & Session Authority
// @version      1.0
// @description  Authentication, two-factor, federated identity, and session revalidation for the Inkwell content platform.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	twoFactorKey, err := cfg.Auth.TwoFactorKeyBytes()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid two-factor key")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	recorder := audit.NewDispatcher(0, mongostore.NewAuditRepository(db), log)
	recorder.Start(ctx)

	e := api.NewRouter(db, rdb, cfg, twoFactorKey, recorder, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("authority listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
