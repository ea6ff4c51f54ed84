// internal/store/surveys.go
package store

import (
	"context"
	"database/sql"
	"strings"

	"survey-workers/internal/common/errors"
	"survey-workers/internal/models"
)

const surveyColumns = "id, company_id, title, description, status, created_at, updated_at, deleted_at"

// EligibilityFilter narrows the eligible-survey query.
type EligibilityFilter struct {
	SurveyID int64 // 0 means all surveys
	Force    bool  // include surveys that already have a summary
}

// ListEligible returns completed, non-deleted surveys with at least one
// response that either have no summary yet or are being force-reprocessed.
// An empty result is a normal outcome, not an error.
func (s *Store) ListEligible(ctx context.Context, filter EligibilityFilter) ([]models.Survey, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT ` + surveyColumns + `
		FROM surveys s
		WHERE s.status = 'completed'
		  AND s.deleted_at IS NULL
		  AND EXISTS (SELECT 1 FROM survey_responses r WHERE r.survey_id = s.id)`)

	args := []interface{}{}
	if filter.SurveyID != 0 {
		args = append(args, filter.SurveyID)
		sb.WriteString(" AND s.id = $1")
	}
	if !filter.Force {
		sb.WriteString(" AND NOT EXISTS (SELECT 1 FROM survey_summaries m WHERE m.survey_id = s.id)")
	}
	sb.WriteString(" ORDER BY s.id")

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, errors.NewPersistenceFailureError(err)
	}
	defer rows.Close()

	return scanSurveys(rows)
}

// GetSurvey returns one non-deleted survey by id.
func (s *Store) GetSurvey(ctx context.Context, id int64) (*models.Survey, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+surveyColumns+`
		FROM surveys s
		WHERE s.id = $1 AND s.deleted_at IS NULL`, id)

	survey, err := scanSurvey(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewSurveyNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewPersistenceFailureError(err)
	}
	return survey, nil
}

// ListSurveys returns all non-deleted surveys.
func (s *Store) ListSurveys(ctx context.Context) ([]models.Survey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+surveyColumns+`
		FROM surveys s
		WHERE s.deleted_at IS NULL
		ORDER BY s.id`)
	if err != nil {
		return nil, errors.NewPersistenceFailureError(err)
	}
	defer rows.Close()

	return scanSurveys(rows)
}

// CreateSurvey inserts a survey in active status. The (company_id, title)
// pair must be unique among non-deleted surveys.
func (s *Store) CreateSurvey(ctx context.Context, companyID int64, title, description string) (*models.Survey, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO surveys (company_id, title, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, 'active', now(), now())
		RETURNING `+surveyColumns, companyID, title, description)

	survey, err := scanSurvey(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.NewDuplicateSurveyTitleError(companyID, title)
		}
		return nil, errors.NewPersistenceFailureError(err)
	}
	return survey, nil
}

// UpdateSurvey updates title, description and status of a non-deleted survey.
func (s *Store) UpdateSurvey(ctx context.Context, id int64, title, description string, status models.SurveyStatus) (*models.Survey, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE surveys
		SET title = $2, description = $3, status = $4, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+surveyColumns, id, title, description, string(status))

	survey, err := scanSurvey(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewSurveyNotFoundError(id)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.NewDuplicateSurveyTitleError(0, title)
		}
		return nil, errors.NewPersistenceFailureError(err)
	}
	return survey, nil
}

// SoftDeleteSurvey marks a survey deleted. Rows are never hard-deleted here.
func (s *Store) SoftDeleteSurvey(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE surveys
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return errors.NewPersistenceFailureError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.NewPersistenceFailureError(err)
	}
	if affected == 0 {
		return errors.NewSurveyNotFoundError(id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSurvey(row rowScanner) (*models.Survey, error) {
	var survey models.Survey
	var description sql.NullString
	var deletedAt sql.NullTime
	err := row.Scan(
		&survey.ID, &survey.CompanyID, &survey.Title, &description,
		&survey.Status, &survey.CreatedAt, &survey.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	survey.Description = description.String
	if deletedAt.Valid {
		survey.DeletedAt = &deletedAt.Time
	}
	return &survey, nil
}

func scanSurveys(rows *sql.Rows) ([]models.Survey, error) {
	surveys := []models.Survey{}
	for rows.Next() {
		survey, err := scanSurvey(rows)
		if err != nil {
			return nil, errors.NewPersistenceFailureError(err)
		}
		surveys = append(surveys, *survey)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceFailureError(err)
	}
	return surveys, nil
}
