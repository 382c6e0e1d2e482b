package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillerhq/skiller/internal/api"
	"github.com/skillerhq/skiller/internal/client"
	"github.com/skillerhq/skiller/internal/config"
	"github.com/skillerhq/skiller/internal/logger"
	"github.com/skillerhq/skiller/internal/queue"
	"github.com/skillerhq/skiller/internal/repository"
	"github.com/skillerhq/skiller/internal/service"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.NewFromEnv(logger.LoadFromEnv())
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize repositories
	jobRepo := repository.NewJobRepository(db)
	skillRepo := repository.NewSkillRepository(db)

	// Initialize task queue
	tasks, err := queue.New(&cfg.Queue)
	if err != nil {
		appLogger.Fatalf("Failed to initialize task queue: %v", err)
	}
	defer tasks.Close()

	// Initialize currency rate source. Redis backs the rate cache when
	// configured; otherwise rates are cached in process.
	ctx := context.Background()
	var rateCache client.RateCache
	if cfg.Redis.Enabled {
		redisCache, err := client.NewRedisRateCache(ctx, cfg.Redis.URL, cfg.Currency.CacheTTL)
		if err != nil {
			appLogger.Fatalf("Failed to connect to Redis: %v", err)
		}
		rateCache = redisCache
	} else {
		rateCache = client.NewMemoryRateCache(cfg.Currency.CacheTTL)
	}
	rates := client.NewCurrencyClient(&cfg.Currency, rateCache)

	// Initialize job search client
	search := client.NewJobSearchClient(&cfg.JobSearch)

	// Initialize services
	dispatcher := service.NewDispatcher(jobRepo, search, tasks)
	aggregator := service.NewAggregator(rates, cfg.Currency.Target)
	pipeline := service.NewPipeline(
		service.NewNormalizer(),
		jobRepo,
		skillRepo,
		search,
		dispatcher,
		aggregator,
		cfg.Analysis.Window,
	)
	details := service.NewDetailService(jobRepo)

	// Setup router
	router := api.SetupRouter(pipeline, details, cfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server exited")
}
