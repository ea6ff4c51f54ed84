// internal/models/survey.go
package models

import "time"

type SurveyStatus string

const (
	SurveyStatusActive    SurveyStatus = "active"
	SurveyStatusCompleted SurveyStatus = "completed"
)

// Label returns the display form of the status.
func (s SurveyStatus) Label() string {
	switch s {
	case SurveyStatusActive:
		return "Active"
	case SurveyStatusCompleted:
		return "Completed"
	}
	return string(s)
}

type Survey struct {
	ID          int64        `json:"id"`
	CompanyID   int64        `json:"companyId"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      SurveyStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	DeletedAt   *time.Time   `json:"deletedAt,omitempty"`

	// Populated by the store when requested; nil otherwise.
	Responses []SurveyResponse `json:"responses,omitempty"`
}

type SurveyResponse struct {
	ID               int64     `json:"id"`
	SurveyID         int64     `json:"surveyId"`
	ParticipantEmail string    `json:"participantEmail"`
	ResponseText     string    `json:"responseText"`
	CreatedAt        time.Time `json:"createdAt"`
}
