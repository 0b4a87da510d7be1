package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
)

const wordsJSON = `{"words":[{"source_word":"travail","target_word":"work"}]}`

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewAnthropicProvider(
		AnthropicConfig{APIKey: "test-key", Model: "claude-haiku"},
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}
	return p
}

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return newOpenAICompatible(ProviderOpenAI, "test-key", server.URL+"/v1", "gpt-4o-mini")
}

func anthropicMessage(text, stop string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     []map[string]any{{"type": "text", "text": text}},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": stop,
			"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
		})
	}
}

func openAICompletion(text, finish string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": text},
				"finish_reason": finish,
			}},
			"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
		})
	}
}

func statusHandler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "api_error", "message": http.StatusText(status)},
		})
	}
}

func wordRequest() Request {
	return UserRequest("You write vocabulary lists.", "Five words about work.", testSchema(), 512, 0.7)
}

func TestHTTPProviders(t *testing.T) {
	type build func(t *testing.T, h http.HandlerFunc) Provider
	anthropicP := func(t *testing.T, h http.HandlerFunc) Provider { return newTestAnthropicProvider(t, h) }
	openaiP := func(t *testing.T, h http.HandlerFunc) Provider { return newTestOpenAIProvider(t, h) }

	tests := []struct {
		name      string
		provider  build
		handler   http.HandlerFunc
		wantInput int
		check     func(t *testing.T, err error)
	}{
		{"anthropic ok", anthropicP, anthropicMessage(wordsJSON, "end_turn"), 50, nil},
		{"openai ok", openaiP, openAICompletion(wordsJSON, "stop"), 40, nil},
		{"anthropic schema mismatch", anthropicP, anthropicMessage(`{"words":[]}`, "end_turn"), 0, wantAs[*ErrInvalidResponse]},
		{"openai schema mismatch", openaiP, openAICompletion(`{"nope":1}`, "stop"), 0, wantAs[*ErrInvalidResponse]},
		{"anthropic truncated", anthropicP, anthropicMessage(`{"words":[`, "max_tokens"), 0, wantAs[*ErrMaxTokensExceeded]},
		{"openai truncated", openaiP, openAICompletion(`{"words":[`, "length"), 0, wantAs[*ErrMaxTokensExceeded]},
		{"anthropic rate limited", anthropicP, statusHandler(http.StatusTooManyRequests), 0, wantAs[*ErrRateLimit]},
		{"openai rate limited", openaiP, statusHandler(http.StatusTooManyRequests), 0, wantAs[*ErrRateLimit]},
		{"anthropic server error", anthropicP, statusHandler(http.StatusInternalServerError), 0, wantAs[*ErrProviderUnavailable]},
		{"openai server error", openaiP, statusHandler(http.StatusInternalServerError), 0, wantAs[*ErrProviderUnavailable]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.provider(t, tt.handler)
			resp, err := p.Generate(context.Background(), wordRequest())
			if tt.check != nil {
				tt.check(t, err)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(resp.Content) != wordsJSON {
				t.Fatalf("unexpected content: %s", resp.Content)
			}
			if resp.Usage.InputTokens != tt.wantInput {
				t.Fatalf("input tokens = %d, want %d", resp.Usage.InputTokens, tt.wantInput)
			}
			if resp.StopReason != "end" {
				t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
			}
		})
	}
}

func wantAs[T error](t *testing.T, err error) {
	t.Helper()
	var target T
	if !errors.As(err, &target) {
		t.Fatalf("expected %T, got: %T (%v)", target, err, err)
	}
}

func TestOpenAIMessages_PrependsSystem(t *testing.T) {
	msgs := openAIMessages(Request{
		System: "sys",
		Messages: []Message{
			{Role: RoleUser, Content: "q"},
			{Role: RoleAssistant, Content: "a"},
		},
	})
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Role != openai.ChatMessageRoleSystem || msgs[2].Role != openai.ChatMessageRoleAssistant {
		t.Fatalf("unexpected roles: %+v", msgs)
	}
}

func TestModelAliases(t *testing.T) {
	tests := []struct {
		aliases  map[string]string
		input    string
		expected string
	}{
		{anthropicModels, "claude-sonnet", "claude-sonnet-4-20250514"},
		{anthropicModels, "claude-haiku", "claude-haiku-4-5-20251001"},
		{anthropicModels, "claude-sonnet-4-20250514", "claude-sonnet-4-20250514"},
		{openaiModels, "gpt-4o-mini", "gpt-4o-mini"},
		{openaiModels, "o3", "o3"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, tt.aliases); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}

	p := &AnthropicProvider{model: resolveModel("claude-haiku", anthropicModels)}
	if p.Name() != ProviderAnthropic || p.ModelID() != "claude-haiku-4-5-20251001" {
		t.Fatalf("unexpected identity %q/%q", p.Name(), p.ModelID())
	}
}
