package relation

import "encoding/json"

// ResponseSchema is the JSON schema the continuity judgment must satisfy.
var ResponseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"relation": map[string]any{
			"type":        "string",
			"enum":        []string{"continue", "break"},
			"description": "Whether the second page continues the same project or starts a new one",
		},
		"confidence": map[string]any{
			"type":        "string",
			"enum":        []string{"high", "medium", "low"},
			"description": "How certain the judgment is",
		},
		"reason": map[string]any{
			"type":        []string{"string", "null"},
			"description": "One short sentence naming the deciding cue, null if none",
		},
	},
	"required":             []string{"relation", "confidence"},
	"additionalProperties": false,
}

// Result is the parsed continuity judgment.
type Result struct {
	Relation   string  `json:"relation"`
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
