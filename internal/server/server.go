package server

import (
	"context"
	"log"
	"time"

	"ai-knowledge-bot/internal/bootstrap"
	"ai-knowledge-bot/internal/config"
	"ai-knowledge-bot/internal/pkg/logger"
	"ai-knowledge-bot/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:             1024 * 1024,
		DisableStartupMessage: cfg.IsProduction(),
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.App.CorsAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, DELETE, OPTIONS",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(requestLogger(container.Logger))
	app.Use(serverutils.ErrorHandlerMiddleware())

	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("Ops server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

// Shutdown stops accepting connections and waits for active requests until
// ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	c.HealthController.RegisterRoutes(app)

	if cfg.Admin.JWTSecret == "" {
		log.Println("[WARN] ADMIN_JWT_SECRET is empty, admin routes are disabled")
		return
	}
	api := app.Group("/api")
	auth := serverutils.JwtMiddleware(cfg.Admin.JWTSecret)
	c.SessionController.RegisterRoutes(api, auth)
	c.LogController.RegisterRoutes(api, auth)
}

func requestLogger(l logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()
		l.Info("HTTP", ctx.Method()+" "+ctx.Path(), map[string]interface{}{
			"status":      ctx.Response().StatusCode(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          ctx.IP(),
		})
		return err
	}
}
