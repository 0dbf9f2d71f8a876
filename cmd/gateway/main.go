package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"invproc/internal/config"
	"invproc/internal/database"
	"invproc/internal/database/migration"
	handlers "invproc/internal/http/handler"
	"invproc/internal/http/middleware"
	appotel "invproc/internal/otel"
	queuepg "invproc/internal/queue/postgres"
	"invproc/internal/service"
	"invproc/internal/sse"
	"invproc/internal/storage"
	"invproc/internal/store"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	ctx := context.Background()

	shutdownTracing, err := appotel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	// PostgreSQL backs the durable upload-job queue
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	jobs := queuepg.NewJobQueue(db, cfg.Worker.MaxAttempts)
	docs := store.NewDocumentStore()
	registry := sse.NewRegistry()

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMW, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMW.Handler())

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:             db,
		Storage:        objStore,
		Uploads:        service.NewUploadService(objStore, jobs),
		Documents:      service.NewDocumentService(docs),
		Analytics:      service.NewAnalyticsService(docs),
		Events:         service.NewEventService(docs, registry),
		Registry:       registry,
		DeadLetters:    jobs,
		InternalSecret: cfg.InternalEventsSecret,
	})

	// Keep-alive frames for open event streams
	go func() {
		ticker := time.NewTicker(cfg.SSEHeartbeat)
		defer ticker.Stop()
		for range ticker.C {
			registry.Heartbeat()
		}
	}()

	addr := ":" + cfg.Port
	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
