// internal/workers/index/handler.go
// Package index projects persisted summaries into the search index. Like
// notification fan-out, it consumes the summary-created signal and never
// feeds failures back into generation.
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"survey-workers/internal/common/errors"
	"survey-workers/internal/common/logger"
	"survey-workers/internal/models"
)

// Indexer writes one document to the search backend.
type Indexer interface {
	Index(ctx context.Context, index, documentID string, body io.Reader) error
}

// SummaryReader loads the summary and survey a signal refers to.
type SummaryReader interface {
	GetSummaryByID(ctx context.Context, id int64) (*models.SurveySummary, error)
	GetSurvey(ctx context.Context, id int64) (*models.Survey, error)
}

type Handler struct {
	indexName string
	indexer   Indexer
	reader    SummaryReader
	logger    logger.Logger
}

func NewHandler(indexName string, indexer Indexer, reader SummaryReader, log logger.Logger) *Handler {
	return &Handler{
		indexName: indexName,
		indexer:   indexer,
		reader:    reader,
		logger:    log.WithFields(map[string]interface{}{"worker": "index"}),
	}
}

// HandleSummaryCreated indexes the summary a signal refers to. The survey id
// is the document id, so reprocessing a survey overwrites its document the
// same way the upsert overwrites its row.
func (h *Handler) HandleSummaryCreated(ctx context.Context, event models.SummaryCreated) {
	log := h.logger.WithFields(map[string]interface{}{
		"summaryId": event.SummaryID,
		"surveyId":  event.SurveyID,
	})

	summary, err := h.reader.GetSummaryByID(ctx, event.SummaryID)
	if err != nil {
		log.Error("failed to load summary for indexing", map[string]interface{}{"error": err.Error()})
		return
	}
	if summary == nil {
		log.Warn("summary referenced by signal no longer exists", nil)
		return
	}

	survey, err := h.reader.GetSurvey(ctx, summary.SurveyID)
	if err != nil {
		log.Error("failed to load survey for indexing", map[string]interface{}{"error": err.Error()})
		return
	}

	doc := summaryDocument{
		SummaryID:   summary.ID,
		SurveyID:    summary.SurveyID,
		SurveyTitle: survey.Title,
		SummaryText: summary.SummaryText,
		Sentiment:   string(summary.Sentiment),
		Topics:      summary.Topics,
		UpdatedAt:   summary.UpdatedAt,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		log.Error("failed to encode summary document", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := h.indexer.Index(ctx, h.indexName, strconv.FormatInt(summary.SurveyID, 10), bytes.NewReader(body)); err != nil {
		log.Error("failed to index summary", map[string]interface{}{"error": err.Error()})
		return
	}

	log.Info("summary indexed", map[string]interface{}{"index": h.indexName})
}

// ESIndexer is the elasticsearch-backed Indexer.
type ESIndexer struct {
	client *elasticsearch.Client
}

func NewESIndexer(client *elasticsearch.Client) *ESIndexer {
	return &ESIndexer{client: client}
}

func (e *ESIndexer) Index(ctx context.Context, index, documentID string, body io.Reader) error {
	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: documentID,
		Body:       body,
		Refresh:    "false",
	}

	res, err := req.Do(ctx, e.client)
	if err != nil {
		return errors.NewIndexingFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewIndexingFailedError(fmt.Errorf("index request returned %s", res.Status()))
	}
	return nil
}
