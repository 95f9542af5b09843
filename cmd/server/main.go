package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"keywordpyramid/internal/cache"
	"keywordpyramid/internal/config"
	"keywordpyramid/internal/db"
	"keywordpyramid/internal/events"
	"keywordpyramid/internal/importer"
	"keywordpyramid/internal/jobs"
	"keywordpyramid/internal/keywords"
	"keywordpyramid/internal/metrics"
	"keywordpyramid/internal/server"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	if cfg.IsDev() {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	// Redis backs the cache, job status records, and the event channel.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	appCache := cache.New(redisClient)
	if err := appCache.Ping(ctx); err != nil {
		// The cache is an expendable projection; start degraded rather
		// than refusing to serve.
		log.Printf("Warning: cache unreachable, running uncached: %v", err)
	}

	metrics.Init(database)
	appCache.OnHit = func(key string) {
		metrics.CacheHits.WithLabelValues(cache.Resource(key)).Inc()
	}
	appCache.OnMiss = func(key string) {
		metrics.CacheMisses.WithLabelValues(cache.Resource(key)).Inc()
	}

	publisher := events.NewPublisher(redisClient)

	service := keywords.NewService(database, appCache, publisher, keywords.TTLConfig{
		List:    cfg.ListTTL,
		Item:    cfg.ItemTTL,
		Pyramid: cfg.PyramidTTL,
	})

	imp := importer.NewWithBatchSize(database, cfg.ImportBatchSize)
	runner := jobs.NewImportRunner(imp, service, redisClient, publisher)

	srv := server.New(cfg)
	srv.RegisterRoutes(database, appCache, service, runner)

	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := srv.Shutdown(); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	runner.Shutdown()
	log.Println("Server exited")
}
