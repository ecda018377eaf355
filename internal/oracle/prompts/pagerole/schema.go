package pagerole

import "encoding/json"

// ResponseSchema is the JSON schema the role judgment must satisfy. It is
// rendered into the system prompt and used for local validation of the
// model output.
var ResponseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"role": map[string]any{
			"type":        "string",
			"enum":        []string{"front_matter", "body", "back_matter"},
			"description": "Structural role of the page",
		},
		"confidence": map[string]any{
			"type":        "string",
			"enum":        []string{"high", "medium", "low"},
			"description": "How certain the classification is",
		},
		"reason": map[string]any{
			"type":        []string{"string", "null"},
			"description": "One short sentence naming the deciding marker, null if none",
		},
	},
	"required":             []string{"role", "confidence"},
	"additionalProperties": false,
}

// Result is the parsed role judgment.
type Result struct {
	Role       string  `json:"role"`
	Confidence string  `json:"confidence"`
	Reason     *string `json:"reason"`
}

// ParseResult decodes a model response into a Result.
func ParseResult(raw json.RawMessage) (*Result, error) {
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
