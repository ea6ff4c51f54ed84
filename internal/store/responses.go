// internal/store/responses.go
package store

import (
	"context"

	"survey-workers/internal/common/errors"
	"survey-workers/internal/models"
)

// ListResponses returns a survey's responses in insertion order.
func (s *Store) ListResponses(ctx context.Context, surveyID int64) ([]models.SurveyResponse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, survey_id, participant_email, response_text, created_at
		FROM survey_responses
		WHERE survey_id = $1
		ORDER BY id`, surveyID)
	if err != nil {
		return nil, errors.NewPersistenceFailureError(err)
	}
	defer rows.Close()

	responses := []models.SurveyResponse{}
	for rows.Next() {
		var r models.SurveyResponse
		if err := rows.Scan(&r.ID, &r.SurveyID, &r.ParticipantEmail, &r.ResponseText, &r.CreatedAt); err != nil {
			return nil, errors.NewPersistenceFailureError(err)
		}
		responses = append(responses, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceFailureError(err)
	}
	return responses, nil
}

// CreateResponse records a participant's response. The parent survey must
// still be active, and each participant may respond at most once.
func (s *Store) CreateResponse(ctx context.Context, surveyID int64, participantEmail, responseText string) (*models.SurveyResponse, error) {
	survey, err := s.GetSurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if survey.Status != models.SurveyStatusActive {
		return nil, errors.NewSurveyNotActiveError(surveyID)
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO survey_responses (survey_id, participant_email, response_text, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, survey_id, participant_email, response_text, created_at`,
		surveyID, participantEmail, responseText)

	var r models.SurveyResponse
	if err := row.Scan(&r.ID, &r.SurveyID, &r.ParticipantEmail, &r.ResponseText, &r.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, errors.NewDuplicateResponseError(surveyID, participantEmail)
		}
		return nil, errors.NewPersistenceFailureError(err)
	}
	return &r, nil
}
