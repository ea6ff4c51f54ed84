// internal/pipeline/pool.go
package pipeline

import (
	"context"
	"sync"
	"time"

	"survey-workers/internal/common/errors"
	"survey-workers/internal/common/logger"
	"survey-workers/internal/common/metrics"
	"survey-workers/internal/models"
)

// Summarizer generates and persists the summary for one survey.
type Summarizer interface {
	Summarize(ctx context.Context, survey models.Survey) (*models.SurveySummary, error)
}

type PoolConfig struct {
	Workers     int
	MaxAttempts int
	JobTimeout  time.Duration
	RetryDelay  time.Duration
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Workers:     4,
		MaxAttempts: 3,
		JobTimeout:  120 * time.Second,
		RetryDelay:  2 * time.Second,
	}
}

// Pool executes per-survey jobs on background workers. A job's permanent
// failure never cancels sibling jobs, in the same batch or any other.
type Pool struct {
	cfg        PoolConfig
	summarizer Summarizer
	state      JobStateStore
	logger     logger.Logger

	jobs      chan *Job
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewPool(cfg PoolConfig, summarizer Summarizer, state JobStateStore, log logger.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Pool{
		cfg:        cfg,
		summarizer: summarizer,
		state:      state,
		logger:     log.WithFields(map[string]interface{}{"component": "summary-pool"}),
		jobs:       make(chan *Job, cfg.Workers*4),
	}
}

// Start launches the worker goroutines. Workers drain the queue until the
// pool is closed or the context is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					p.runJob(ctx, job)
				}
			}
		}()
	}
}

// Submit enqueues every job in a batch. Jobs from different batches
// interleave freely on the workers.
func (p *Pool) Submit(ctx context.Context, batch *Batch) {
	if err := p.state.RecordBatch(ctx, batch); err != nil {
		p.logger.Warn("failed to record batch", map[string]interface{}{
			"batchId": batch.ID,
			"error":   err.Error(),
		})
	}

	for _, survey := range batch.Surveys {
		p.recordJobState(ctx, batch.ID, survey.ID, JobStateQueued, 0, nil)
		p.jobs <- &Job{BatchID: batch.ID, BatchName: batch.Name, Survey: survey}
	}
}

// Close stops accepting jobs. Workers finish what is queued.
func (p *Pool) Close() {
	p.closeOnce.Do(func() { close(p.jobs) })
}

// Wait blocks until all workers have exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// runJob drives one job through its attempt loop. Each attempt re-runs the
// whole generation; the storage-level upsert makes that safe.
func (p *Pool) runJob(ctx context.Context, job *Job) {
	log := p.logger.WithFields(map[string]interface{}{
		"batchId":  job.BatchID,
		"surveyId": job.Survey.ID,
	})

	metrics.SummaryJobsActive.Inc()
	defer metrics.SummaryJobsActive.Dec()
	start := time.Now()
	defer func() { metrics.SummaryJobDuration.Observe(time.Since(start).Seconds()) }()

	var lastErr error
	var lastAttempt int
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		lastAttempt = attempt
		p.recordJobState(ctx, job.BatchID, job.Survey.ID, JobStateRunning, attempt, nil)

		attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.JobTimeout)
		summary, err := p.summarizer.Summarize(attemptCtx, job.Survey)
		cancel()

		if err == nil {
			p.recordJobState(ctx, job.BatchID, job.Survey.ID, JobStateSucceeded, attempt, nil)
			metrics.SummaryJobsCompleted.Inc()
			log.Info("summary job succeeded", map[string]interface{}{
				"summaryId": summary.ID,
				"sentiment": string(summary.Sentiment),
				"attempt":   attempt,
			})
			return
		}

		lastErr = err
		if !errors.IsRetryable(err) {
			break
		}
		if attempt == p.cfg.MaxAttempts {
			break
		}

		p.recordJobState(ctx, job.BatchID, job.Survey.ID, JobStateFailedRetrying, attempt, err)
		metrics.SummaryJobRetries.Inc()
		log.Warn("summary job attempt failed, retrying", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})

		select {
		case <-ctx.Done():
			p.recordJobState(ctx, job.BatchID, job.Survey.ID, JobStateFailedPermanently, attempt, ctx.Err())
			return
		case <-time.After(p.cfg.RetryDelay):
		}
	}

	// Recorded for operator visibility; never propagated to the run.
	p.recordJobState(ctx, job.BatchID, job.Survey.ID, JobStateFailedPermanently, lastAttempt, lastErr)
	metrics.SummaryJobsFailed.WithLabelValues(string(errors.CodeOf(lastErr))).Inc()
	log.Error("summary job failed permanently", map[string]interface{}{
		"error":     lastErr.Error(),
		"errorCode": string(errors.CodeOf(lastErr)),
		"attempts":  lastAttempt,
	})
}

func (p *Pool) recordJobState(ctx context.Context, batchID string, surveyID int64, state JobState, attempt int, jobErr error) {
	if err := p.state.RecordJobState(ctx, batchID, surveyID, state, attempt, jobErr); err != nil {
		p.logger.Warn("failed to record job state", map[string]interface{}{
			"batchId":  batchID,
			"surveyId": surveyID,
			"state":    string(state),
			"error":    err.Error(),
		})
	}
}
