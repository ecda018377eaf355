package segment_title

import "encoding/json"

// ResponseSchema is the JSON schema the title judgment must satisfy.
var ResponseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title": map[string]any{
			"type":        "string",
			"description": "The project title, plain text, under 150 characters",
		},
		"confidence": map[string]any{
			"type":        "string",
			"enum":        []string{"high", "medium", "low"},
			"description": "How certain the title is",
		},
	},
	"required":             []string{"title", "confidence"},
	"additionalProperties": false,
}

// Result is the parsed title judgment.
type Result struct {
	Title      string `json:"title"`
	Confidence string `json:"confidence"`
}

// ParseResult decodes a model response into a Result.
func ParseResult(raw json.RawMessage) (*Result, error) {
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
