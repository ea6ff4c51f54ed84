// internal/models/events.go
package models

import "time"

// SummaryCreated is the signal published after a summary upsert succeeds.
// It is delivered over the signal channel and never persisted.
type SummaryCreated struct {
	SummaryID int64     `json:"summaryId"`
	SurveyID  int64     `json:"surveyId"`
	CreatedAt time.Time `json:"createdAt"`
}
