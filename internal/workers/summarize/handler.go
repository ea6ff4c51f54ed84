// internal/workers/summarize/handler.go
// Package summarize generates one AI summary per survey: it gathers the
// survey's responses, asks the analysis model for a JSON verdict, validates
// and normalizes it, persists via upsert, and announces the result.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"survey-workers/internal/common/errors"
	"survey-workers/internal/common/logger"
	"survey-workers/internal/common/observability"
	"survey-workers/internal/models"
)

const systemPrompt = "You are an expert survey analyst. Analyze the survey responses and provide insights in the exact JSON format requested."

// AnalysisClient produces raw JSON analysis output for a prompt pair.
type AnalysisClient interface {
	CreateJSONCompletion(ctx context.Context, system, user string) (string, error)
}

// ResponseLister loads a survey's responses.
type ResponseLister interface {
	ListResponses(ctx context.Context, surveyID int64) ([]models.SurveyResponse, error)
}

// SummaryWriter persists the generated summary.
type SummaryWriter interface {
	UpsertSummary(ctx context.Context, surveyID int64, summaryText string, sentiment models.Sentiment, topics []string) (*models.SurveySummary, error)
}

// Publisher announces a persisted summary.
type Publisher interface {
	PublishSummaryCreated(ctx context.Context, event models.SummaryCreated) error
}

type Handler struct {
	analysis  AnalysisClient
	responses ResponseLister
	summaries SummaryWriter
	publisher Publisher
	obs       *observability.Observability
	logger    logger.Logger
}

func NewHandler(analysis AnalysisClient, responses ResponseLister, summaries SummaryWriter, publisher Publisher, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		analysis:  analysis,
		responses: responses,
		summaries: summaries,
		publisher: publisher,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"worker": "summarize"}),
	}
}

// Summarize runs the full generation for one survey. The no-responses check
// happens before any external call so an empty survey has no side effects.
// Persistence is an upsert, so re-running after a mid-flight failure cannot
// produce duplicate summaries.
func (h *Handler) Summarize(ctx context.Context, survey models.Survey) (*models.SurveySummary, error) {
	start := time.Now()

	summary, err := h.summarize(ctx, survey)

	status := "success"
	if err != nil {
		status = string(errors.CodeOf(err))
	}
	if h.obs != nil {
		h.obs.RecordSummaryProcessed(ctx, status)
		h.obs.RecordSummaryDuration(ctx, time.Since(start), status)
	}
	return summary, err
}

func (h *Handler) summarize(ctx context.Context, survey models.Survey) (*models.SurveySummary, error) {
	responses, err := h.responses.ListResponses(ctx, survey.ID)
	if err != nil {
		return nil, err
	}
	if len(responses) == 0 {
		return nil, errors.NewNoResponsesError(survey.ID)
	}

	raw, err := h.analysis.CreateJSONCompletion(ctx, systemPrompt, buildUserPrompt(survey, responses))
	if err != nil {
		return nil, err
	}

	result, err := parseAnalysis(raw)
	if err != nil {
		return nil, err
	}

	summary, err := h.summaries.UpsertSummary(ctx, survey.ID, result.Summary, models.NormalizeSentiment(result.Sentiment), result.Topics)
	if err != nil {
		return nil, err
	}

	h.logger.Info("summary persisted", map[string]interface{}{
		"surveyId":  survey.ID,
		"summaryId": summary.ID,
		"sentiment": string(summary.Sentiment),
		"topics":    len(summary.Topics),
	})

	// Announced after a successful upsert, exactly once per generation.
	// Delivery is best effort; the summary itself is already durable.
	event := models.SummaryCreated{SummaryID: summary.ID, SurveyID: summary.SurveyID, CreatedAt: summary.CreatedAt}
	if err := h.publisher.PublishSummaryCreated(ctx, event); err != nil {
		h.logger.Warn("failed to announce summary", map[string]interface{}{
			"surveyId":  survey.ID,
			"summaryId": summary.ID,
			"error":     err.Error(),
		})
	}

	return summary, nil
}

// buildUserPrompt renders the survey and its responses into the analysis
// request, with responses numbered in insertion order.
func buildUserPrompt(survey models.Survey, responses []models.SurveyResponse) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Survey Title: %s\n", survey.Title)
	if survey.Description != "" {
		fmt.Fprintf(&b, "Survey Description: %s\n", survey.Description)
	}
	fmt.Fprintf(&b, "Total Responses: %d\n\n", len(responses))

	b.WriteString("Responses:\n")
	for i, r := range responses {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.ResponseText)
	}

	b.WriteString("\nProvide your analysis as a JSON object with exactly these fields:\n")
	b.WriteString(`{"summary": "<a 200-400 word summary of the key findings>", `)
	b.WriteString(`"sentiment": "<positive, negative, or neutral>", `)
	b.WriteString(`"topics": ["<3-8 short key topics>", ...]}`)

	return b.String()
}

// parseAnalysis decodes and validates the raw model output. Anything the
// model got wrong here is worth another attempt with a fresh completion.
func parseAnalysis(raw string) (*analysisResult, error) {
	var document interface{}
	if err := json.Unmarshal([]byte(raw), &document); err != nil {
		return nil, errors.NewInvalidResponseShapeError(fmt.Sprintf("unparsable JSON: %v", err))
	}

	schemaLoader := gojsonschema.NewGoLoader(analysisSchema)
	documentLoader := gojsonschema.NewGoLoader(document)

	validation, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, errors.NewInvalidResponseShapeError(fmt.Sprintf("validation error: %v", err))
	}
	if !validation.Valid() {
		errs := make([]string, len(validation.Errors()))
		for i, desc := range validation.Errors() {
			errs[i] = desc.String()
		}
		return nil, errors.NewInvalidResponseShapeError(strings.Join(errs, "; "))
	}

	var result analysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, errors.NewInvalidResponseShapeError(fmt.Sprintf("decode analysis: %v", err))
	}
	return &result, nil
}
