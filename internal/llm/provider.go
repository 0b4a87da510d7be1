// Package llm wraps the hosted language-model APIs behind one Provider
// interface that returns schema-validated JSON.
package llm

import (
	"context"
	"encoding/json"
)

// Provider sends one prompt to a language model and returns its output.
type Provider interface {
	// Generate runs req. When req.Schema is set the returned Content has
	// already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name is the provider family, e.g. "anthropic" or "mock".
	Name() string

	// ModelID returns the resolved model identifier.
	ModelID() string
}

// Request describes a single-turn or multi-turn prompt.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks the provider for structured JSON output.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema document.
type Schema struct {
	// Name is kebab-case, e.g. "word-pairs". Used as the cache key for
	// compiled schemas and as the schema name sent to OpenAI.
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the model output plus accounting.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserRequest builds the common single-user-message request.
func UserRequest(system, prompt string, schema *Schema, maxTokens int, temperature float64) Request {
	return Request{
		System:      system,
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		Schema:      schema,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}
