package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/inkwell/content-platform/docs"
	"github.com/inkwell/content-platform/internal/api/handler"
	"github.com/inkwell/content-platform/internal/api/middleware"
	"github.com/inkwell/content-platform/internal/core/ports"
	"github.com/inkwell/content-platform/internal/core/service"
	"github.com/inkwell/content-platform/internal/infrastructure/config"
	mongostore "github.com/inkwell/content-platform/internal/infrastructure/db/mongo"
	redisstore "github.com/inkwell/content-platform/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	cfg *config.Config,
	twoFactorKey []byte,
	recorder ports.AuditRecorder,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("authority"))

	// --- Dependencies ---
	accounts := mongostore.NewAccountRepository(db)
	backupCodes := mongostore.NewBackupCodeRepository(db)
	identities := mongostore.NewLinkedIdentityRepository(db)
	roles := mongostore.NewRoleRepository(db)
	limiter := redisstore.NewLoginLimiter(rdb, cfg.Auth.LoginAttemptLimit, cfg.Auth.LoginAttemptWindow)

	resolver := service.NewRoleResolver(roles)
	twoFactor := service.NewTwoFactorVerifier(backupCodes, recorder, twoFactorKey, log)
	authService := service.NewAuthService(accounts, identities, roles, resolver, twoFactor, limiter, recorder, service.AuthConfig{
		RequireEmailVerification: cfg.Auth.RequireEmailVerification,
		AllowAccountLinking:      cfg.Auth.AllowAccountLinking,
		DefaultRoleName:          cfg.Auth.DefaultRoleName,
	}, log)
	sessionService := service.NewSessionService(accounts, resolver, cfg.JWTSecret, cfg.Auth.SessionTTL, cfg.Auth.RememberMeTTL, log)

	authHandler := handler.NewAuthHandler(authService, sessionService, recorder)
	sessionHandler := handler.NewSessionHandler(sessionService)
	session := middleware.Session(sessionService, recorder)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/federated", authHandler.FederatedLogin)
	e.POST("/auth/logout", authHandler.Logout, session)
	e.GET("/auth/session", sessionHandler.Get, session)
	e.PATCH("/auth/session", sessionHandler.Patch, session)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Operability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
