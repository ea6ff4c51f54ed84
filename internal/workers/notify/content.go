// internal/workers/notify/content.go
package notify

import (
	"fmt"
	"strings"

	"survey-workers/internal/models"
)

// buildSubject renders the notification subject line for a survey.
func buildSubject(survey models.Survey) string {
	return fmt.Sprintf("New Survey Summary Available: %s", survey.Title)
}

// buildEmailBody renders the plain-text notification for one recipient.
func buildEmailBody(baseURL string, survey models.Survey, summary models.SurveySummary, recipient models.User) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hello %s,\n\n", recipient.Name)
	fmt.Fprintf(&b, "A new summary is available for the survey \"%s\".\n\n", survey.Title)
	fmt.Fprintf(&b, "Overall Sentiment: %s\n", summary.Sentiment.Label())
	fmt.Fprintf(&b, "Key Topics: %s\n\n", topicsLine(summary.Topics))
	fmt.Fprintf(&b, "Summary:\n%s\n\n", summary.SummaryText)
	fmt.Fprintf(&b, "View the survey: %s/surveys/%d\n", strings.TrimRight(baseURL, "/"), survey.ID)

	return b.String()
}

func topicsLine(topics []string) string {
	if len(topics) == 0 {
		return "No topics identified"
	}
	return strings.Join(topics, ", ")
}
