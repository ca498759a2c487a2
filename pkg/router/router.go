package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"intelligent-chatbot/backend/pkg/config"
	"intelligent-chatbot/backend/pkg/di"
	"intelligent-chatbot/backend/pkg/errors"
	"intelligent-chatbot/backend/pkg/health"
	"intelligent-chatbot/backend/pkg/logger"
	"intelligent-chatbot/backend/pkg/middleware"
	"intelligent-chatbot/backend/pkg/validator"
)

// Router is the main router for the application.
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Config    *config.Config
	Health    *health.Checker
}

// New creates the gin engine with the shared middleware chain.
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)

	cfg := container.Config

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	limiterOpts := middleware.DefaultRateLimiterOptions()
	limiterOpts.Limit = rate.Limit(cfg.Security.RateLimit)
	limiterOpts.Burst = cfg.Security.RateLimitBurst
	rateLimiter := middleware.NewRateLimiter(container.Logger, limiterOpts)
	engine.Use(rateLimiter.Middleware())

	checker := health.NewChecker(container.Logger)
	checker.RegisterCheck("database", func() (health.Status, string, error) {
		sqlDB, err := container.DB.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			return health.StatusDown, "database unreachable", err
		}
		return health.StatusUp, "database connection ok", nil
	})
	checker.RegisterCheck("redis", func() (health.Status, string, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := container.Redis.Ping(ctx); err != nil {
			return health.StatusDegraded, "cache unreachable", err
		}
		return health.StatusUp, "cache connection ok", nil
	})

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Config:    cfg,
		Health:    checker,
	}
}

// SetupRoutes registers all application routes.
func (r *Router) SetupRoutes() {
	r.Engine.Use(corsMiddleware(r.Config.Security.AllowedOrigins))

	if r.Config.OpenAPISchemaPath != "" {
		v, err := validator.NewOpenAPIValidator(r.Config.OpenAPISchemaPath)
		if err != nil {
			r.Logger.Warn("request validation disabled", "error", err.Error())
		} else {
			r.Engine.Use(v.Middleware())
		}
	}

	r.Engine.GET("/health", r.Health.Handler())
	r.Engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"env":    r.Config.Server.Env,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := r.Engine.Group("/api")
	api.Use(middleware.OptionalAuth(r.Container.JWTService))
	{
		r.Container.ChatController.RegisterRoutes(api)
		r.Container.ConversationController.RegisterRoutes(api)
		r.Container.KnowledgeController.RegisterRoutes(api)
		r.Container.FeedbackController.RegisterRoutes(api)
	}

	r.Engine.GET("/ws/chat", r.Container.WSHandler.Serve)
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		switch {
		case allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, Authorization, Origin, Upgrade, Connection, Cache-Control")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Upgrade, Connection")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
