package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/agencyops/seo-intel/internal/config"
	"github.com/agencyops/seo-intel/internal/database"
	"github.com/agencyops/seo-intel/internal/digest"
	"github.com/agencyops/seo-intel/internal/drafts"
	"github.com/agencyops/seo-intel/internal/fetch"
	"github.com/agencyops/seo-intel/internal/logger"
	"github.com/agencyops/seo-intel/internal/queue"
	"github.com/agencyops/seo-intel/internal/services/ai"
	"github.com/agencyops/seo-intel/internal/workers"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
		zap.Int("batch_size", cfg.BatchSize),
	)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	// Initialize repositories
	sourceRepo := database.NewSourceRepository(db)
	digestRepo := database.NewDigestRepository(db)
	fetchResultRepo := database.NewFetchResultRepository(db)
	recRepo := database.NewRecommendationRepository(db)
	taskDraftRepo := database.NewTaskDraftRepository(db)
	sopDraftRepo := database.NewSopDraftRepository(db)
	sopDocRepo := database.NewSopDocumentRepository(db)

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq", zap.Int("prefetch", cfg.RabbitMQPrefetch))

	// Seen-URL store is optional; without Redis every run re-ingests
	// whatever the feeds currently expose.
	var seenStore fetch.SeenStore
	if cfg.RedisURL != "" {
		redisSeen, err := fetch.NewRedisSeenStore(cfg.RedisURL)
		if err != nil {
			zapLogger.Warn("failed_to_connect_to_redis_dedupe_disabled", zap.Error(err))
		} else {
			seenStore = redisSeen
			defer func() {
				if err := redisSeen.Close(); err != nil {
					zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
				}
			}()
			zapLogger.Info("connected_to_redis")
		}
	}

	fetcher := fetch.NewFetcher(zapLogger, fetch.Options{
		Timeout:     cfg.FetchTimeout,
		MaxItems:    cfg.MaxItemsPerFeed,
		Concurrency: cfg.FetchConcurrency,
		Seen:        seenStore,
	})

	var aiProvider ai.Provider
	if cfg.AIProvider == "openai" {
		aiProvider = ai.NewOpenAIProviderWithLogger(
			cfg.OpenAIKey,
			cfg.AIBaseURL,
			cfg.AIModel,
			cfg.ProviderTimeout,
			zapLogger,
			debugMode,
		)
	} else {
		zapLogger.Fatal("unsupported_ai_provider", zap.String("provider", cfg.AIProvider))
	}

	zapLogger.Info("initialized_ai_provider",
		zap.String("provider", cfg.AIProvider),
		zap.String("model", cfg.AIModel),
	)

	generator := drafts.NewGenerator(sopDocRepo, zapLogger)

	orchestrator := digest.NewOrchestrator(
		digestRepo,
		sourceRepo,
		fetchResultRepo,
		recRepo,
		taskDraftRepo,
		sopDraftRepo,
		fetcher,
		aiProvider,
		generator,
		digest.Options{
			BatchSize:       cfg.BatchSize,
			MaxArticleChars: cfg.MaxArticleChars,
		},
		zapLogger,
	)

	worker := workers.NewPipelineWorker(orchestrator, fetcher, sourceRepo, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		zapLogger.Info("worker_shutting_down")
		cancel()
	}()

	zapLogger.Info("worker_consuming")
	if err := worker.Run(ctx, jobQueue, cfg.RabbitMQPrefetch); err != nil && !errors.Is(err, context.Canceled) {
		zapLogger.Fatal("worker_stopped_with_error", zap.Error(err))
	}

	zapLogger.Info("worker_exited")
}
