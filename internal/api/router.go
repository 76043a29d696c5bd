package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/verifactor/auth-service/internal/api/handler"
	"github.com/verifactor/auth-service/internal/api/middleware"
	"github.com/verifactor/auth-service/internal/core/service"
	"github.com/verifactor/auth-service/internal/infrastructure/config"
	"github.com/verifactor/auth-service/internal/infrastructure/crypto"
	mongostore "github.com/verifactor/auth-service/internal/infrastructure/db/mongo"
	redisstore "github.com/verifactor/auth-service/internal/infrastructure/db/redis"
	"github.com/verifactor/auth-service/internal/infrastructure/totp"
)

// NewRouter builds the Echo instance with all routes registered — exactly
// one handler per (method, path) pair.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("auth"))

	// --- Dependencies ---
	users := mongostore.NewUserRepository(db)
	sessions := redisstore.NewSessionStore(rdb, cfg.SessionTTL)
	hasher := crypto.NewHasher(cfg.BcryptCost, cfg.HashWorkers)
	engine := totp.NewEngine(cfg.TOTPIssuer)
	authService := service.NewAuthService(users, hasher, engine, log)

	authHandler := handler.NewAuthHandler(authService, sessions, cfg.SessionTTL)
	pageHandler := handler.NewPageHandler(totp.QRCode)

	e.Use(middleware.LoadSession(sessions))
	gate := middleware.RequireAuthenticated()

	// --- Pages ---
	e.GET("/", pageHandler.Index)
	e.GET("/register", pageHandler.RegisterForm)
	e.GET("/login", pageHandler.LoginForm)
	e.GET("/enroll", pageHandler.EnrollPage)
	e.GET("/enroll/qr.png", pageHandler.EnrollQR)
	e.GET("/verify_2fa/:userId", pageHandler.ChallengeForm)
	e.GET("/success", pageHandler.Success, gate)

	// --- Auth flow ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/verify_2fa/:userId", authHandler.Verify2FA)
	e.POST("/auth/logout", authHandler.Logout)

	// --- Operations ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
