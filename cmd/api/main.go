package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"signdesk/internal/config"
	"signdesk/internal/database"
	"signdesk/internal/database/migration"
	"signdesk/internal/email"
	handlers "signdesk/internal/http/handler"
	"signdesk/internal/http/middleware"
	"signdesk/internal/otel"
	"signdesk/internal/ratelimit"
	"signdesk/internal/repository/postgres"
	"signdesk/internal/service"
	"signdesk/internal/session"
	"signdesk/internal/signing"
	"signdesk/internal/storage"
)

const completedURLTTL = 15 * time.Minute

func main() {
	cfg := config.Load()
	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("invalid redis url: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	sessions := session.NewRedisStoreWithClient(redisClient)
	limiter := ratelimit.NewRedisLimiter(redisClient)
	signer := signing.NewSigner([]byte(cfg.Auth.SigningSecret))
	mailer := email.NewService(cfg.SMTP)

	docRepo := postgres.NewDocumentPostgres(db)
	invRepo := postgres.NewInvitationPostgres(db)
	userRepo := postgres.NewUserPostgres(db)

	docSvc := service.NewDocumentService(objStore, docRepo)
	invSvc := service.NewInvitationService(invRepo, docRepo, userRepo, objStore, signer, mailer, cfg.BaseURL, cfg.Auth.InviteTTL)
	statusSvc := service.NewStatusService(docRepo, invRepo, objStore, completedURLTTL)
	authSvc := service.NewAuthService(userRepo, sessions, cfg.Auth.SessionTTL)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, handlers.RouteDeps{
		DB:              db,
		Auth:            authSvc,
		Documents:       docSvc,
		Invitations:     invSvc,
		Status:          statusSvc,
		Sessions:        sessions,
		Limiter:         limiter,
		RateLimitMax:    cfg.RateLimit.Limit,
		RateLimitWindow: cfg.RateLimit.Window,
	})

	addr := ":" + cfg.Port
	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
