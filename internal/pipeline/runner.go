// internal/pipeline/runner.go
package pipeline

import (
	"context"

	"survey-workers/internal/common/logger"
	"survey-workers/internal/models"
	"survey-workers/internal/store"
)

// SurveyLister selects surveys that qualify for summarization.
type SurveyLister interface {
	ListEligible(ctx context.Context, filter store.EligibilityFilter) ([]models.Survey, error)
}

// Options parameterize one triggering run.
type Options struct {
	SurveyID  int64 // process only this survey; 0 means all
	Force     bool  // reprocess surveys that already have a summary
	BatchSize int   // 0 means the configured default
}

// Report describes what a run scheduled. Dispatch success means the work
// was queued, not that every job will succeed.
type Report struct {
	SurveysFound      int `json:"surveysFound"`
	BatchesDispatched int `json:"batchesDispatched"`
}

// Runner is the triggering surface: it runs the selector and dispatcher
// synchronously, then returns while jobs execute in the background.
type Runner struct {
	surveys          SurveyLister
	dispatcher       *Dispatcher
	defaultBatchSize int
	logger           logger.Logger
}

func NewRunner(surveys SurveyLister, dispatcher *Dispatcher, defaultBatchSize int, log logger.Logger) *Runner {
	if defaultBatchSize <= 0 {
		defaultBatchSize = 10
	}
	return &Runner{
		surveys:          surveys,
		dispatcher:       dispatcher,
		defaultBatchSize: defaultBatchSize,
		logger:           log.WithFields(map[string]interface{}{"component": "runner"}),
	}
}

func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = r.defaultBatchSize
	}

	surveys, err := r.surveys.ListEligible(ctx, store.EligibilityFilter{
		SurveyID: opts.SurveyID,
		Force:    opts.Force,
	})
	if err != nil {
		return nil, err
	}

	if len(surveys) == 0 {
		r.logger.Info("no surveys need summary processing", map[string]interface{}{
			"surveyId": opts.SurveyID,
			"force":    opts.Force,
		})
		return &Report{}, nil
	}

	batches := r.dispatcher.Dispatch(ctx, surveys, batchSize)

	r.logger.Info("summary run dispatched", map[string]interface{}{
		"surveysFound":      len(surveys),
		"batchesDispatched": batches,
		"batchSize":         batchSize,
	})

	return &Report{SurveysFound: len(surveys), BatchesDispatched: batches}, nil
}
