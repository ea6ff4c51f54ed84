// internal/pipeline/dispatcher_test.go
package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-workers/internal/common/logger"
	"survey-workers/internal/models"
)

type recordingSubmitter struct {
	batches []*Batch
}

func (r *recordingSubmitter) Submit(_ context.Context, batch *Batch) {
	r.batches = append(r.batches, batch)
}

func makeSurveys(n int) []models.Survey {
	surveys := make([]models.Survey, 0, n)
	for i := 1; i <= n; i++ {
		surveys = append(surveys, models.Survey{
			ID:        int64(i),
			CompanyID: 1,
			Title:     fmt.Sprintf("Survey %d", i),
			Status:    models.SurveyStatusCompleted,
		})
	}
	return surveys
}

func TestDispatchPartitionsIntoBatches(t *testing.T) {
	submitter := &recordingSubmitter{}
	dispatcher := NewDispatcher(submitter, logger.NewTestLogger(t))

	count := dispatcher.Dispatch(context.Background(), makeSurveys(25), 10)

	require.Equal(t, 3, count)
	require.Len(t, submitter.batches, 3)

	assert.Len(t, submitter.batches[0].Surveys, 10)
	assert.Len(t, submitter.batches[1].Surveys, 10)
	assert.Len(t, submitter.batches[2].Surveys, 5)

	// Every survey appears exactly once, in order.
	var seen []int64
	for _, batch := range submitter.batches {
		for _, s := range batch.Surveys {
			seen = append(seen, s.ID)
		}
	}
	require.Len(t, seen, 25)
	for i, id := range seen {
		assert.Equal(t, int64(i+1), id)
	}
}

func TestDispatchBatchNaming(t *testing.T) {
	submitter := &recordingSubmitter{}
	dispatcher := NewDispatcher(submitter, logger.NewTestLogger(t))

	dispatcher.Dispatch(context.Background(), makeSurveys(12), 5)

	require.Len(t, submitter.batches, 3)
	assert.Equal(t, "Survey Summaries Batch 1", submitter.batches[0].Name)
	assert.Equal(t, "Survey Summaries Batch 2", submitter.batches[1].Name)
	assert.Equal(t, "Survey Summaries Batch 3", submitter.batches[2].Name)
	assert.Equal(t, 1, submitter.batches[0].Number)
	assert.Equal(t, 3, submitter.batches[2].Number)

	ids := map[string]bool{}
	for _, batch := range submitter.batches {
		assert.NotEmpty(t, batch.ID)
		ids[batch.ID] = true
	}
	assert.Len(t, ids, 3)
}

func TestDispatchEmptySelection(t *testing.T) {
	submitter := &recordingSubmitter{}
	dispatcher := NewDispatcher(submitter, logger.NewTestLogger(t))

	count := dispatcher.Dispatch(context.Background(), nil, 10)

	assert.Equal(t, 0, count)
	assert.Empty(t, submitter.batches)
}

func TestChunkSurveysExactMultiple(t *testing.T) {
	chunks := chunkSurveys(makeSurveys(20), 10)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 10)
	assert.Len(t, chunks[1], 10)
}

func TestChunkSurveysSmallerThanBatch(t *testing.T) {
	chunks := chunkSurveys(makeSurveys(3), 10)
	require.Len(t, chunks, 1)
	assert.Len(t, chunks[0], 3)
}
