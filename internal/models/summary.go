// internal/models/summary.go
package models

import (
	"strings"
	"time"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Label returns the display form of the sentiment.
func (s Sentiment) Label() string {
	switch s {
	case SentimentPositive:
		return "Positive"
	case SentimentNegative:
		return "Negative"
	case SentimentNeutral:
		return "Neutral"
	}
	return string(s)
}

// NormalizeSentiment maps a raw analysis value onto a known sentiment.
// Unknown values fall back to neutral instead of failing; the analysis
// output is advisory, not authoritative.
func NormalizeSentiment(raw string) Sentiment {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "positive":
		return SentimentPositive
	case "negative":
		return SentimentNegative
	case "neutral":
		return SentimentNeutral
	default:
		return SentimentNeutral
	}
}

type SurveySummary struct {
	ID          int64     `json:"id"`
	SurveyID    int64     `json:"surveyId"`
	SummaryText string    `json:"summaryText"`
	Sentiment   Sentiment `json:"sentiment"`
	Topics      []string  `json:"topics"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
