// internal/pipeline/job.go
// Package pipeline owns the asynchronous summarization run: selecting
// eligible surveys, batching them, and executing per-survey jobs on a
// background worker pool.
package pipeline

import "survey-workers/internal/models"

// JobState tracks one per-survey job through its lifecycle.
type JobState string

const (
	JobStateQueued            JobState = "queued"
	JobStateRunning           JobState = "running"
	JobStateSucceeded         JobState = "succeeded"
	JobStateFailedRetrying    JobState = "failed-retrying"
	JobStateFailedPermanently JobState = "failed-permanently"
)

// Batch is one independently-tracked group of per-survey jobs. Numbering is
// for observability only; batches execute concurrently once submitted.
type Batch struct {
	ID      string
	Name    string
	Number  int
	Surveys []models.Survey
}

// Job wraps exactly one summary generation for one survey.
type Job struct {
	BatchID   string
	BatchName string
	Survey    models.Survey
}
