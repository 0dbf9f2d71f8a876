package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"invproc/internal/config"
	"invproc/internal/database"
	"invproc/internal/database/migration"
	appotel "invproc/internal/otel"
	queuepg "invproc/internal/queue/postgres"
	"invproc/internal/worker"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := appotel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	jobs := queuepg.NewJobQueue(db, cfg.Worker.MaxAttempts)
	poster := worker.NewHTTPPoster(cfg.GatewayURL, cfg.InternalEventsSecret)
	extractor := &worker.SimulatedExtractor{Delay: cfg.Worker.ProgressDelay}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "worker"
	}

	var wg sync.WaitGroup
	for i := 0; i < cfg.Worker.Concurrency; i++ {
		w := worker.New(fmt.Sprintf("%s-%d", hostname, i), jobs, extractor, poster, cfg.Worker.PollInterval)
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(ctx)
		}()
	}

	// Return claims abandoned by crashed workers to the queue.
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := jobs.RequeueStale(ctx, cfg.Worker.StaleAfter); err != nil {
					log.Printf("requeue stale jobs: %v", err)
				}
			}
		}
	}()

	wg.Wait()
}
