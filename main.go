package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"akun/internal/config"
	"akun/internal/handlers"
	"akun/internal/middleware"
	"akun/internal/models"
	"akun/internal/repositories"
	"akun/internal/services"
	"akun/pkg/imagestore"
	"akun/pkg/mailqueue"
)

// NewApp wires repositories, services, handlers and routes into a Fiber
// app. Collaborators are injected so tests can substitute mocks.
func NewApp(cfg *config.Config, db *gorm.DB, mailer services.Mailer, images services.ImageStore) (*fiber.App, error) {
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return nil, err
	}

	userRepo := repositories.NewGORMUserRepository(db)

	authService := services.NewAuthService(userRepo, mailer, images, cfg.JWTSecret)
	accountService := services.NewAccountService(userRepo, images)

	authHandler := handlers.NewAuthHandler(authService, cfg)
	accountHandler := handlers.NewAccountHandler(accountService)

	app := fiber.New()
	app.Use(logger.New())

	apiV1 := app.Group("/api/v1")

	// Public authentication routes.
	authHandler.RegisterRoutes(apiV1)

	// Protected routes behind the authorization gate.
	protected := apiV1.Group("", middleware.AuthRequired(authService))
	accountHandler.RegisterRoutes(protected)

	// Admin-only routes add the role check on top of the gate.
	admin := protected.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	accountHandler.RegisterAdminRoutes(admin)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app, nil
}

// openDatabase picks the GORM driver from the DSN shape: a postgres DSN
// contains "host=", anything else is treated as a sqlite path, and an
// empty DSN falls back to a shared in-memory database for local runs.
func openDatabase(dsn string) (*gorm.DB, error) {
	switch {
	case dsn == "":
		return gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	case strings.Contains(dsn, "host="):
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	default:
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	}
}

func main() {
	// Load .env if present, then the environment proper.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	cfg := config.Load()

	db, err := openDatabase(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	mailClient, err := mailqueue.NewClient(mailqueue.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		log.Fatalf("Failed to initialize mail queue client: %v", err)
	}
	defer mailClient.Close()

	images, err := imagestore.New(context.Background(), imagestore.Config{
		Endpoint:      cfg.S3Endpoint,
		Region:        cfg.S3Region,
		Bucket:        cfg.S3Bucket,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize image store: %v", err)
	}

	app, err := NewApp(cfg, db, mailClient, images)
	if err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}

	// Drain the email queue. The handler is where an SMTP relay would be
	// invoked; the queue keeps delivery decoupled from request handling.
	go func() {
		log.Println("Starting mail queue consumer...")
		err := mailClient.ConsumeEmailEvents(func(msg mailqueue.EmailMessage) error {
			log.Printf("Delivering email %q to %s", msg.Subject, msg.To)
			return nil
		})
		if err != nil {
			log.Printf("Failed to start mail queue consumer: %v", err)
		}
	}()

	log.Printf("Starting server on port %s", cfg.AppPort)

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
