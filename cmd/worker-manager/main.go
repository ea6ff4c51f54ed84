// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"survey-workers/internal/common/aws"
	"survey-workers/internal/common/config"
	"survey-workers/internal/common/database"
	"survey-workers/internal/common/logger"
	"survey-workers/internal/common/observability"
	"survey-workers/internal/common/openai"
	"survey-workers/internal/pipeline"
	"survey-workers/internal/signals"
	"survey-workers/internal/store"
	"survey-workers/internal/workers/index"
	"survey-workers/internal/workers/notify"
	"survey-workers/internal/workers/summarize"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Core pipeline wiring ---
	st := store.New(pg.DB)
	bus := signals.NewBus(rdb.Client, log)
	analysisClient := openai.NewClient(cfg.OpenAI)

	generator := summarize.NewHandler(analysisClient, st, st, bus, obs, log)

	pool := pipeline.NewPool(
		pipeline.PoolConfig{
			Workers:     cfg.Pipeline.Workers,
			MaxAttempts: cfg.Pipeline.MaxAttempts,
			JobTimeout:  cfg.Pipeline.JobTimeout,
			RetryDelay:  2 * time.Second,
		},
		generator,
		pipeline.NewStateTracker(rdb.Client, log),
		log,
	)
	pool.Start(ctx)

	runner := pipeline.NewRunner(st, pipeline.NewDispatcher(pool, log), cfg.Pipeline.BatchSize, log)

	// --- Notification fan-out ---
	if cfg.Notifications.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWSRegion)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}

		var topic notify.TopicPublisher
		if cfg.Notifications.TopicARN != "" {
			snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWSRegion)
			if err != nil {
				zapLog.Fatal("sns client failed", zap.Error(err))
			}
			topic = snsClient
		}

		notifier := notify.NewHandler(
			notify.Config{
				FromAddress: cfg.Notifications.FromAddress,
				TopicARN:    cfg.Notifications.TopicARN,
				BaseURL:     cfg.App.BaseURL,
			},
			st,
			notify.NewAllUsersResolver(st),
			sesClient,
			topic,
			log,
		)

		go func() {
			if err := bus.SubscribeSummaryCreated(ctx, notifier.HandleSummaryCreated); err != nil && ctx.Err() == nil {
				zapLog.Error("notification subscriber stopped", zap.Error(err))
			}
		}()
		zapLog.Info("Notification fan-out enabled")
	}

	// --- Search indexing ---
	if cfg.Search.Enabled && cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			return err
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}

		indexer := index.NewHandler(cfg.Database.Elasticsearch.Index, index.NewESIndexer(esClient.Client), st, log)
		go func() {
			if err := bus.SubscribeSummaryCreated(ctx, indexer.HandleSummaryCreated); err != nil && ctx.Err() == nil {
				zapLog.Error("index subscriber stopped", zap.Error(err))
			}
		}()
		zapLog.Info("Summary search indexing enabled")
	}

	// --- Scheduled runs ---
	var scheduler *cron.Cron
	if cfg.Pipeline.Schedule != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Pipeline.Schedule, func() {
			report, err := runner.Run(ctx, pipeline.Options{})
			if err != nil {
				zapLog.Error("scheduled summary run failed", zap.Error(err))
				return
			}
			zapLog.Info("scheduled summary run dispatched",
				zap.Int("surveysFound", report.SurveysFound),
				zap.Int("batchesDispatched", report.BatchesDispatched),
			)
		})
		if err != nil {
			zapLog.Fatal("invalid pipeline schedule", zap.Error(err), zap.String("schedule", cfg.Pipeline.Schedule))
		}
		scheduler.Start()
		zapLog.Info("Summary run scheduler started", zap.String("schedule", cfg.Pipeline.Schedule))
	}

	// --- Trigger, Health & Metrics Server ---
	mux := http.DefaultServeMux
	mux.HandleFunc("/api/v1/summaries/runs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			SurveyID  int64 `json:"surveyId"`
			Force     bool  `json:"force"`
			BatchSize int   `json:"batchSize"`
		}
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error": "invalid request body"})
				return
			}
		}

		report, err := runner.Run(r.Context(), pipeline.Options{
			SurveyID:  req.SurveyID,
			Force:     req.Force,
			BatchSize: req.BatchSize,
		})
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(report)
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := pg.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.Server.Address, Handler: mux}
	go func() {
		zapLog.Info("Trigger/Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if scheduler != nil {
		scheduler.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	// Let queued jobs drain before cancelling the subscribers.
	pool.Close()
	pool.Wait()
	cancel()

	zapLog.Info("Worker manager stopped gracefully")
}
