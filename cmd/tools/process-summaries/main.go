// cmd/tools/process-summaries/main.go
// One-shot trigger for the summarization pipeline. Unlike the service, it
// dispatches a single run, waits for every job to finish, and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"survey-workers/internal/common/config"
	"survey-workers/internal/common/database"
	"survey-workers/internal/common/logger"
	"survey-workers/internal/common/openai"
	"survey-workers/internal/pipeline"
	"survey-workers/internal/signals"
	"survey-workers/internal/store"
	"survey-workers/internal/workers/summarize"
)

func main() {
	surveyID := flag.Int64("survey-id", 0, "process only this survey")
	force := flag.Bool("force", false, "reprocess surveys that already have a summary")
	batchSize := flag.Int("batch-size", 0, "surveys per batch (0 uses the configured default)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres failed", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		zapLog.Fatal("postgres ping failed", zap.Error(err))
	}

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("redis failed", zap.Error(err))
	}
	defer rdb.Close()
	if err := rdb.Ping(ctx); err != nil {
		zapLog.Fatal("redis ping failed", zap.Error(err))
	}

	st := store.New(pg.DB)
	bus := signals.NewBus(rdb.Client, log)
	generator := summarize.NewHandler(openai.NewClient(cfg.OpenAI), st, st, bus, nil, log)

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

	report, err := runner.Run(ctx, pipeline.Options{
		SurveyID:  *surveyID,
		Force:     *force,
		BatchSize: *batchSize,
	})
	if err != nil {
		zapLog.Fatal("summary run failed", zap.Error(err))
	}

	// Wait for every dispatched job before exiting.
	pool.Close()
	pool.Wait()

	zapLog.Info("summary run finished",
		zap.Int("surveysFound", report.SurveysFound),
		zap.Int("batchesDispatched", report.BatchesDispatched),
	)
}
