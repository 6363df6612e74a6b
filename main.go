package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"marketgw/internal/config"
	"marketgw/internal/handlers"
	"marketgw/internal/services"
	"marketgw/internal/vendors"
	"marketgw/pkg/rabbitmq"
	"marketgw/pkg/tokencache"
)

func main() {
	cfg := config.Load()

	// --- RabbitMQ (optional) ---
	// Order events are a downstream notification channel; the gateway keeps
	// serving when the broker is unreachable.
	var mqClient *rabbitmq.Client
	if client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}); err != nil {
		log.Printf("Warning: RabbitMQ unavailable, order events disabled: %v", err)
	} else {
		mqClient = client
		defer mqClient.Close()
	}

	// --- Vendor layer ---
	// One token cache shared by all vendor adapters, injected rather than
	// global so tests and future adapters can carry their own.
	tokens := tokencache.New()
	factory := vendors.NewFactory(cfg, tokens)

	// --- Services & Handlers ---
	marketplaceService := services.NewMarketplaceService(factory, mqClient)
	marketplaceHandler := handlers.NewMarketplaceHandler(marketplaceService)

	// --- Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	// --- API Routes ---
	api := app.Group("/api")
	marketplaceHandler.RegisterRoutes(api)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start HTTP Server ---
	log.Printf("Starting marketplace gateway on %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
