// internal/store/summaries.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"survey-workers/internal/common/errors"
	"survey-workers/internal/models"
)

// UpsertSummary atomically inserts or replaces the summary for a survey.
// The survey_id unique constraint makes concurrent upserts converge to a
// single row; a read-then-write sequence would race here.
func (s *Store) UpsertSummary(ctx context.Context, surveyID int64, summaryText string, sentiment models.Sentiment, topics []string) (*models.SurveySummary, error) {
	if topics == nil {
		topics = []string{}
	}
	topicsJSON, err := json.Marshal(topics)
	if err != nil {
		return nil, errors.NewPersistenceFailureError(err)
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO survey_summaries (survey_id, summary_text, sentiment, topics_json, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (survey_id) DO UPDATE
		SET summary_text = EXCLUDED.summary_text,
		    sentiment = EXCLUDED.sentiment,
		    topics_json = EXCLUDED.topics_json,
		    updated_at = now()
		RETURNING id, survey_id, summary_text, sentiment, topics_json, created_at, updated_at`,
		surveyID, summaryText, string(sentiment), topicsJSON)

	summary, err := scanSummary(row)
	if err != nil {
		return nil, errors.NewPersistenceFailureError(err)
	}
	return summary, nil
}

// GetSummary returns the summary for a survey, if one exists.
func (s *Store) GetSummary(ctx context.Context, surveyID int64) (*models.SurveySummary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, survey_id, summary_text, sentiment, topics_json, created_at, updated_at
		FROM survey_summaries
		WHERE survey_id = $1`, surveyID)

	summary, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewPersistenceFailureError(err)
	}
	return summary, nil
}

// GetSummaryByID returns a summary by its own id.
func (s *Store) GetSummaryByID(ctx context.Context, id int64) (*models.SurveySummary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, survey_id, summary_text, sentiment, topics_json, created_at, updated_at
		FROM survey_summaries
		WHERE id = $1`, id)

	summary, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewPersistenceFailureError(err)
	}
	return summary, nil
}

func scanSummary(row rowScanner) (*models.SurveySummary, error) {
	var summary models.SurveySummary
	var sentiment string
	var topicsJSON []byte
	err := row.Scan(
		&summary.ID, &summary.SurveyID, &summary.SummaryText,
		&sentiment, &topicsJSON, &summary.CreatedAt, &summary.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	summary.Sentiment = models.Sentiment(sentiment)
	if len(topicsJSON) > 0 {
		if err := json.Unmarshal(topicsJSON, &summary.Topics); err != nil {
			return nil, err
		}
	}
	return &summary, nil
}
