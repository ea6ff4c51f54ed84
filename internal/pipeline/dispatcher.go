// internal/pipeline/dispatcher.go
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"survey-workers/internal/common/logger"
	"survey-workers/internal/common/metrics"
	"survey-workers/internal/models"
)

// Submitter accepts a batch of jobs for background execution.
type Submitter interface {
	Submit(ctx context.Context, batch *Batch)
}

// Dispatcher partitions eligible surveys into fixed-size batches and hands
// each one to the execution substrate.
type Dispatcher struct {
	submitter Submitter
	logger    logger.Logger
}

func NewDispatcher(submitter Submitter, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		submitter: submitter,
		logger:    log.WithFields(map[string]interface{}{"component": "dispatcher"}),
	}
}

// Dispatch submits one batch per chunk, preserving survey order, and
// returns the number of batches submitted. Zero surveys means zero batches
// and is a normal outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, surveys []models.Survey, batchSize int) int {
	chunks := chunkSurveys(surveys, batchSize)

	for i, chunk := range chunks {
		batch := &Batch{
			ID:      uuid.NewString(),
			Number:  i + 1,
			Name:    fmt.Sprintf("Survey Summaries Batch %d", i+1),
			Surveys: chunk,
		}

		d.logger.Info("dispatching batch", map[string]interface{}{
			"batchId":      batch.ID,
			"batchNumber":  batch.Number,
			"totalBatches": len(chunks),
			"size":         len(chunk),
		})

		d.submitter.Submit(ctx, batch)
		metrics.BatchesDispatched.Inc()
	}

	return len(chunks)
}

// chunkSurveys partitions surveys into consecutive chunks of at most size
// elements, preserving order. The last chunk may be smaller.
func chunkSurveys(surveys []models.Survey, size int) [][]models.Survey {
	if size <= 0 || len(surveys) == 0 {
		return nil
	}

	chunks := make([][]models.Survey, 0, (len(surveys)+size-1)/size)
	for start := 0; start < len(surveys); start += size {
		end := start + size
		if end > len(surveys) {
			end = len(surveys)
		}
		chunks = append(chunks, surveys[start:end])
	}
	return chunks
}
