package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/skillerhq/skiller/internal/config"
	"github.com/skillerhq/skiller/internal/logger"
	"github.com/skillerhq/skiller/internal/queue"
	"github.com/skillerhq/skiller/internal/repository"
	"github.com/skillerhq/skiller/internal/worker"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.NewFromEnv(logger.LoadFromEnv())
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	workerLogger := appLogger.WithField(logger.FieldComponent, "worker")

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

	// Initialize extractor
	extractor := worker.NewScriptExtractor(cfg.Worker.Interpreter, cfg.Worker.Script)

	w := worker.New(tasks, jobRepo, skillRepo, extractor, workerLogger, worker.Config{
		Concurrency:  cfg.Worker.Concurrency,
		RequeueCron:  cfg.Worker.RequeueCron,
		RequeueAfter: cfg.Worker.RequeueAfter,
	})

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil {
		appLogger.Fatalf("Worker exited with error: %v", err)
	}

	appLogger.Info("Worker exited")
}
