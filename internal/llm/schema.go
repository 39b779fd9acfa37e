package llm

import "github.com/joseph-ayodele/medreport-summarizer/constants"

// BuildEntityJSONSchema returns the JSON-Schema the entity response must satisfy.
func BuildEntityJSONSchema() map[string]any {
	types := make([]any, len(constants.EntityTypes))
	for i, t := range constants.EntityTypes {
		types[i] = t
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"entities"},
		"properties": map[string]any{
			"entities": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"text", "type"},
					"properties": map[string]any{
						"text": map[string]any{"type": "string", "minLength": 1},
						"type": map[string]any{"type": "string", "enum": types},
					},
				},
			},
		},
	}
}

// BuildSummaryJSONSchema returns the JSON-Schema for a summary response.
func BuildSummaryJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"summary"},
		"properties": map[string]any{
			"summary": map[string]any{"type": "string", "minLength": 1},
		},
	}
}
