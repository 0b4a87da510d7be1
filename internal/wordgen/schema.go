package wordgen

import "github.com/abhisek/lexiz/internal/llm"

// WordsSchema defines the JSON schema for word generation responses.
var WordsSchema = &llm.Schema{
	Name:        "vocabulary-words",
	Description: "A list of vocabulary word pairs",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"words": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"source_word": map[string]any{
							"type":        "string",
							"minLength":   1,
							"description": "The word in the source language",
						},
						"target_word": map[string]any{
							"type":        "string",
							"minLength":   1,
							"description": "Its translation in the target language",
						},
						"context": map[string]any{
							"type":        "string",
							"description": "A short example sentence in the source language",
						},
					},
					"required":             []any{"source_word", "target_word", "context"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"words"},
		"additionalProperties": false,
	},
}
