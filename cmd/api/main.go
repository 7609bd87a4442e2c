package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-remedyflow/internal/config"
	"go-remedyflow/internal/handler"
	"go-remedyflow/internal/middleware"
	"go-remedyflow/internal/migrate"
	"go-remedyflow/internal/notify"
	"go-remedyflow/internal/repository"
	"go-remedyflow/internal/service"
	"go-remedyflow/internal/ws"
	"go-remedyflow/pkg/database"
	"go-remedyflow/pkg/jwt"
	"go-remedyflow/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Env
	envErr := godotenv.Load()

	if err := logger.Init(os.Getenv("ENV") != "production"); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.L()
	if envErr != nil {
		log.Info(".env file not found, using process environment")
	}

	cfg := config.Load(log)
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Setup Database
	db := database.ConnectDB(cfg.DB, log)
	defer database.CloseDB(db, log)

	if err := migrate.Run(ctx, db, log, migrate.DefaultOptions()); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	repo := repository.New(db)
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	authService := service.NewAuthService(repo, tokens, log)

	// 3. Seed admin
	if cfg.Admin.Password != "" {
		if _, err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.FullName); err != nil {
			log.Fatal("failed to ensure admin user", zap.Error(err))
		}
	}

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub(log)
	go wsHub.Run(ctx)

	// 5. Notification sinks
	notifiers := notify.Multi{notify.NewHubNotifier(wsHub)}
	if cfg.SMTP.Enabled() {
		notifiers = append(notifiers, notify.NewEmailSender(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			SSL:      cfg.SMTP.SSL,
			TMPLDir:  cfg.SMTP.TMPLDir,
		}, log))
		log.Info("email notifications enabled", zap.String("smtp_host", cfg.SMTP.Host))
	}
	if cfg.Kafka.Enabled() {
		publisher := notify.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Warn("failed to close kafka writer", zap.Error(err))
			}
		}()
		notifiers = append(notifiers, publisher)
		log.Info("kafka order events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.OrdersTopic))
	}

	var orderLimiter middleware.RateLimiter
	if cfg.Redis.Enabled() {
		rdb, err := middleware.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Warn("redis unavailable, order rate limit disabled", zap.Error(err))
		} else {
			defer func(rdb *redis.Client) {
				if err := rdb.Close(); err != nil {
					log.Warn("failed to close redis", zap.Error(err))
				}
			}(rdb)
			orderLimiter = middleware.NewRedisRateLimiter(rdb, "ratelimit:order:")
		}
	}

	// 6. Dependency Injection (Wiring Layers)
	stockService := service.NewStockService(repo)
	orderService := service.NewOrderService(repo, notifiers, wsHub, log)
	purchaseService := service.NewPurchaseService(repo, wsHub, log)
	saleService := service.NewSaleService(repo, wsHub, log)
	reportService := service.NewReportService(repo, stockService, service.ReportDefaults{
		LowStockThreshold: cfg.Report.LowStockThreshold,
		ExpiryWindowDays:  cfg.Report.ExpiryWindowDays,
	}, log)
	productService := service.NewProductService(repo, stockService, wsHub, log)
	categoryService := service.NewCategoryService(repo)

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB from gorm", zap.Error(err))
	}

	handlers := handler.Handlers{
		Auth:      handler.NewAuthHandler(authService, log),
		Order:     handler.NewOrderHandler(orderService, log),
		Purchase:  handler.NewPurchaseHandler(purchaseService, log),
		Sale:      handler.NewSaleHandler(saleService, log),
		Report:    handler.NewReportHandler(reportService, log),
		Dashboard: handler.NewDashboardHandler(reportService, log),
		Product:   handler.NewProductHandler(productService, log),
		Category:  handler.NewCategoryHandler(categoryService, log),
		Health:    handler.NewHealthHandler(sqlDB.PingContext, log),
	}

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "RemedyFlow API v1.0",
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.RequestLogger(log))

	handler.SetupRoutes(app, handlers, handler.RouterDeps{
		Auth:            authService,
		OrderLimiter:    orderLimiter,
		OrderRateWindow: cfg.OrderRateLimit,
		WebSocket:       wsHub.Handler(),
		Log:             log,
	})

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited")
}
