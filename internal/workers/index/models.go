// internal/workers/index/models.go
package index

import "time"

// summaryDocument is the search-index projection of a summary. It carries
// the survey title so summaries are findable by survey name without a join.
type summaryDocument struct {
	SummaryID   int64     `json:"summaryId"`
	SurveyID    int64     `json:"surveyId"`
	SurveyTitle string    `json:"surveyTitle"`
	SummaryText string    `json:"summaryText"`
	Sentiment   string    `json:"sentiment"`
	Topics      []string  `json:"topics"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
