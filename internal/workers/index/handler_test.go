// internal/workers/index/handler_test.go
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-workers/internal/common/errors"
	"survey-workers/internal/common/logger"
	"survey-workers/internal/models"
)

type fakeIndexer struct {
	index string
	docID string
	body  []byte
	err   error
	calls int
}

func (f *fakeIndexer) Index(_ context.Context, index, documentID string, body io.Reader) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.index = index
	f.docID = documentID
	f.body, _ = io.ReadAll(body)
	return nil
}

type fakeReader struct {
	summary *models.SurveySummary
	survey  *models.Survey
}

func (f *fakeReader) GetSummaryByID(context.Context, int64) (*models.SurveySummary, error) {
	return f.summary, nil
}

func (f *fakeReader) GetSurvey(context.Context, int64) (*models.Survey, error) {
	if f.survey == nil {
		return nil, errors.NewSurveyNotFoundError(0)
	}
	return f.survey, nil
}

func TestHandleSummaryCreatedIndexesDocument(t *testing.T) {
	reader := &fakeReader{
		summary: &models.SurveySummary{
			ID:          501,
			SurveyID:    42,
			SummaryText: "Customers are mostly satisfied.",
			Sentiment:   models.SentimentPositive,
			Topics:      []string{"support"},
			UpdatedAt:   time.Now().UTC(),
		},
		survey: &models.Survey{ID: 42, Title: "Q3 Customer Satisfaction"},
	}
	indexer := &fakeIndexer{}

	handler := NewHandler("survey-summaries", indexer, reader, logger.NewTestLogger(t))
	handler.HandleSummaryCreated(context.Background(), models.SummaryCreated{SummaryID: 501, SurveyID: 42})

	assert.Equal(t, "survey-summaries", indexer.index)
	assert.Equal(t, "42", indexer.docID)

	var doc summaryDocument
	require.NoError(t, json.Unmarshal(indexer.body, &doc))
	assert.Equal(t, int64(501), doc.SummaryID)
	assert.Equal(t, "Q3 Customer Satisfaction", doc.SurveyTitle)
	assert.Equal(t, "positive", doc.Sentiment)
	assert.Equal(t, []string{"support"}, doc.Topics)
}

func TestHandleSummaryCreatedMissingSummary(t *testing.T) {
	indexer := &fakeIndexer{}
	handler := NewHandler("survey-summaries", indexer, &fakeReader{}, logger.NewTestLogger(t))

	handler.HandleSummaryCreated(context.Background(), models.SummaryCreated{SummaryID: 999, SurveyID: 42})

	assert.Equal(t, 0, indexer.calls)
}

func TestHandleSummaryCreatedIndexerFailureIsSwallowed(t *testing.T) {
	reader := &fakeReader{
		summary: &models.SurveySummary{ID: 501, SurveyID: 42, Sentiment: models.SentimentNeutral},
		survey:  &models.Survey{ID: 42, Title: "Q3"},
	}
	indexer := &fakeIndexer{err: errors.NewIndexingFailedError(fmt.Errorf("cluster unavailable"))}

	handler := NewHandler("survey-summaries", indexer, reader, logger.NewTestLogger(t))
	handler.HandleSummaryCreated(context.Background(), models.SummaryCreated{SummaryID: 501, SurveyID: 42})

	assert.Equal(t, 1, indexer.calls)
}
