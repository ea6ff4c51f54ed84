// internal/workers/summarize/models.go
package summarize

// analysisResult is the shape the analysis model must return.
type analysisResult struct {
	Summary   string   `json:"summary"`
	Sentiment string   `json:"sentiment"`
	Topics    []string `json:"topics"`
}

// analysisSchema validates the decoded analysis payload before any of it is
// trusted. Sentiment values outside the enum are allowed here; they are
// normalized to neutral downstream.
var analysisSchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"summary", "sentiment", "topics"},
	"properties": map[string]interface{}{
		"summary": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"sentiment": map[string]interface{}{
			"type": "string",
		},
		"topics": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "string",
			},
		},
	},
}
