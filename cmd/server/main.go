package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpAdapter "github.com/kilimo-tech/farmgate-pos/internal/adapters/http"
	"github.com/kilimo-tech/farmgate-pos/internal/adapters/postgres"
	redisAdapter "github.com/kilimo-tech/farmgate-pos/internal/adapters/redis"
	"github.com/kilimo-tech/farmgate-pos/internal/config"
	"github.com/kilimo-tech/farmgate-pos/internal/core"
	"github.com/kilimo-tech/farmgate-pos/internal/middleware"
	"github.com/kilimo-tech/farmgate-pos/internal/service"
	"github.com/kilimo-tech/farmgate-pos/internal/state"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to Redis
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	if cfg.RedisPassword != "" {
		redisOpts.Password = cfg.RedisPassword
	}

	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("✓ Redis connection established")

	// Connect to PostgreSQL
	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(ctx); err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	log.Println("✓ PostgreSQL connection established")

	// Initialize repositories
	postgresRepo, err := postgres.NewRepository(cfg.DBURL)
	if err != nil {
		log.Fatalf("Failed to initialize postgres repository: %v", err)
	}
	reportCache := redisAdapter.NewRepository(rdb)

	// Initialize services
	authState := state.NewAuthState()
	authService := service.NewAuthService(
		postgresRepo.UserRepository(),
		reportCache,
		authState,
		cfg.JWTSecret,
		nil,
	)
	reportService := service.NewReportService(
		postgresRepo.ProductRepository(),
		reportCache,
		nil,
	)
	receiptService := service.NewReceiptService()

	// Initialize handlers
	authHandler := httpAdapter.NewAuthHandler(authService)
	reportHandler := httpAdapter.NewReportHandler(reportService, postgresRepo.CategoryRepository())
	receiptHandler := httpAdapter.NewReceiptHandler(receiptService)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Farmgate POS API",
		ServerHeader: "Fiber",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Health check route
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"project": "farmgate-pos",
		})
	})

	// Auth routes
	auth := app.Group("/api/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/request-reset", authHandler.RequestReset)

	authed := auth.Use(middleware.AuthMiddleware(authService))
	authed.Post("/logout", authHandler.Logout)
	authed.Get("/me", authHandler.Me)
	authed.Post("/change-password", authHandler.ChangePassword)
	authed.Post("/signup", middleware.RequireRoles(core.RoleAdmin, core.RoleManager), authHandler.Signup)
	authed.Post("/reset-password", middleware.RequireRoles(core.RoleAdmin), authHandler.AdminResetPassword)

	// Report routes
	reports := app.Group("/api/reports", middleware.AuthMiddleware(authService))
	reports.Get("/inventory", reportHandler.GetInventoryReport)
	reports.Get("/filters", reportHandler.ListCategories)

	// Receipt routes
	receipts := app.Group("/api/receipts", middleware.AuthMiddleware(authService))
	receipts.Post("/pdf", receiptHandler.GeneratePDF)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.AppPort)
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
