package providers

import "encoding/json"

// resultSchema is the canonical JSON schema for StructuredResult. It is sent
// to providers that support native structured output and used locally to
// validate every response before it crosses the provider boundary.
var resultSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"document_title": map[string]any{"type": "string"},
		"total_pages":    map[string]any{"type": "integer"},
		"pages": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"page_number": map[string]any{"type": "integer"},
					"title":       map[string]any{"type": "string"},
					"summary":     map[string]any{"type": "string"},
					"key_concepts": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
				"required":             []string{"page_number", "title", "summary", "key_concepts"},
				"additionalProperties": false,
			},
		},
		"overall_summary": map[string]any{"type": "string"},
		"learning_path": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required":             []string{"document_title", "total_pages", "pages", "overall_summary", "learning_path"},
	"additionalProperties": false,
}

// ResultSchemaJSON returns the canonical result schema as raw JSON.
func ResultSchemaJSON() json.RawMessage {
	data, err := json.Marshal(resultSchema)
	if err != nil {
		// The schema is a static literal; marshalling cannot fail.
		panic(err)
	}
	return data
}

// ResultSchema returns the canonical result schema as a map, for providers
// whose SDKs take schemas as map[string]any.
func ResultSchema() map[string]any {
	return resultSchema
}
