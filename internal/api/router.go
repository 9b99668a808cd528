package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/peoplehq/users-api/internal/api/handler"
	"github.com/peoplehq/users-api/internal/api/middleware"
	"github.com/peoplehq/users-api/internal/core/ports"
	"github.com/peoplehq/users-api/internal/core/service"
	mongodb "github.com/peoplehq/users-api/internal/infrastructure/db/mongo"
	redisdb "github.com/peoplehq/users-api/internal/infrastructure/db/redis"
	"github.com/peoplehq/users-api/internal/pkg/config"
)

// NewRouter builds the Echo instance with all dependencies wired and
// routes registered. Composition is explicit: every service is constructed
// here once, at process start, and shared by reference.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("users"))

	// --- Dependencies ---
	var userRepo ports.UserRepository = mongodb.NewUserRepository(db)
	if rdb != nil {
		userRepo = redisdb.NewUserCache(rdb, userRepo, cfg.Redis.CacheTTL, log)
	}

	tokens, err := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.TTL())
	if err != nil {
		return nil, err
	}

	userService := service.NewUserService(userRepo, log)
	authService := service.NewAuthService(userRepo, service.NewCredentials(), tokens, log)

	userHandler := handler.NewUserHandler(userService)
	authHandler := handler.NewAuthHandler(authService)
	requireAuth := middleware.Auth(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/validate", authHandler.Validate)

	// --- User CRUD routes (listing is public, the rest needs a token) ---
	users := e.Group("/v1/users")
	users.GET("", userHandler.GetAll)
	users.POST("", userHandler.Create, requireAuth)
	users.GET("/:id", userHandler.GetByID, requireAuth)
	users.PUT("/:id", userHandler.Update, requireAuth)
	users.DELETE("/:id", userHandler.Delete, requireAuth)

	// --- Health probes (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(db, rdb).Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e, nil
}
