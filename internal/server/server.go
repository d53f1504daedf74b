package server

import (
	"log"
	"time"

	"mini-shop-be/internal/bootstrap"
	"mini-shop-be/internal/config"
	"mini-shop-be/internal/dto"
	"mini-shop-be/internal/pkg/serverutils"
	internalWS "mini-shop-be/internal/websocket"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	// Initialize Fiber App
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB, slip images
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.App.CorsAllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Access-Token",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Type, Authorization",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	// Static slip images
	app.Static("/uploads", cfg.App.UploadDir)

	// Health check
	app.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(dto.HealthResponse{
			Status:    "ok",
			Message:   "Mini Shop Backend API",
			Timestamp: time.Now(),
		})
	})

	// Routes
	registerRoutes(app, container)

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
	log.Printf("✅ Server is running on http://%s:%s", s.cfg.App.Host, s.cfg.App.Port)
	return s.app.Listen(s.cfg.App.Host + ":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.PaymentController.RegisterRoutes(api)
	c.AdminController.RegisterRoutes(api)

	// WebSocket
	api.Get("/ws", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return websocket.New(func(conn *websocket.Conn) {
				internalWS.ServeWs(c.WebSocketHub, conn)
			})(ctx)
		}
		return fiber.ErrUpgradeRequired
	})
}
