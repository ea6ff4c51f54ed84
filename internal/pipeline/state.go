// internal/pipeline/state.go
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"survey-workers/internal/common/logger"
)

// JobStateStore records batch and job progress for operator visibility.
// Recording failures must not fail the work being recorded.
type JobStateStore interface {
	RecordBatch(ctx context.Context, batch *Batch) error
	RecordJobState(ctx context.Context, batchID string, surveyID int64, state JobState, attempt int, jobErr error) error
}

const stateTTL = 24 * time.Hour

// StateTracker is the redis-backed JobStateStore.
type StateTracker struct {
	client *redis.Client
	logger logger.Logger
}

func NewStateTracker(client *redis.Client, log logger.Logger) *StateTracker {
	return &StateTracker{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "state-tracker"}),
	}
}

type batchRecord struct {
	Name         string    `json:"name"`
	Number       int       `json:"number"`
	Size         int       `json:"size"`
	DispatchedAt time.Time `json:"dispatchedAt"`
}

type jobRecord struct {
	State   JobState `json:"state"`
	Attempt int      `json:"attempt"`
	Error   string   `json:"error,omitempty"`
}

func batchKey(batchID string) string {
	return fmt.Sprintf("summary:batch:%s", batchID)
}

func batchJobsKey(batchID string) string {
	return fmt.Sprintf("summary:batch:%s:jobs", batchID)
}

func (t *StateTracker) RecordBatch(ctx context.Context, batch *Batch) error {
	payload, err := json.Marshal(batchRecord{
		Name:         batch.Name,
		Number:       batch.Number,
		Size:         len(batch.Surveys),
		DispatchedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return t.client.Set(ctx, batchKey(batch.ID), payload, stateTTL).Err()
}

func (t *StateTracker) RecordJobState(ctx context.Context, batchID string, surveyID int64, state JobState, attempt int, jobErr error) error {
	record := jobRecord{State: state, Attempt: attempt}
	if jobErr != nil {
		record.Error = jobErr.Error()
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}

	key := batchJobsKey(batchID)
	if err := t.client.HSet(ctx, key, fmt.Sprintf("%d", surveyID), payload).Err(); err != nil {
		return err
	}
	return t.client.Expire(ctx, key, stateTTL).Err()
}
