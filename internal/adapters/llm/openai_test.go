package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Milo82/construction-ai-assistant/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() entities.CompletionRequest {
	return entities.CompletionRequest{
		Model: "gpt-4o-mini",
		Messages: []entities.Message{
			{Role: entities.RoleSystem, Content: "system"},
			{Role: entities.RoleUser, Content: "Documents:\nx\n\nQuestion: y"},
		},
		Temperature: 0.3,
		MaxTokens:   800,
	}
}

func TestOpenAIAdapter_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		assert.InDelta(t, 0.3, body["temperature"], 1e-6)
		assert.Equal(t, float64(800), body["max_tokens"])
		assert.Len(t, body["messages"], 2)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": "Use C30 concrete."}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 1000, "completion_tokens": 500, "total_tokens": 1500},
		})
	}))
	defer server.Close()

	adapter := NewOpenAIAdapter(server.URL + "/v1")
	resp, err := adapter.Complete(context.Background(), "sk-test", testRequest())

	require.NoError(t, err)
	assert.Equal(t, "Use C30 concrete.", resp.Content)
	assert.Equal(t, entities.Usage{PromptTokens: 1000, CompletionTokens: 500}, resp.Usage)
}

func TestOpenAIAdapter_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   entities.CompletionErrorKind
	}{
		{"auth", http.StatusUnauthorized, entities.CompletionAuth},
		{"rate limit", http.StatusTooManyRequests, entities.CompletionRateLimit},
		{"server", http.StatusInternalServerError, entities.CompletionProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error": map[string]interface{}{
						"message": "provider says no",
						"type":    "invalid_request_error",
					},
				})
			}))
			defer server.Close()

			adapter := NewOpenAIAdapter(server.URL + "/v1")
			_, err := adapter.Complete(context.Background(), "sk-test", testRequest())

			var ce *entities.CompletionError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.want, ce.Kind)
			assert.Contains(t, err.Error(), "provider says no")
		})
	}
}

func TestOpenAIAdapter_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "x", "choices": []interface{}{}})
	}))
	defer server.Close()

	adapter := NewOpenAIAdapter(server.URL + "/v1")
	_, err := adapter.Complete(context.Background(), "sk-test", testRequest())

	var ce *entities.CompletionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, entities.CompletionMalformed, ce.Kind)
}

func TestOpenAIAdapter_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	adapter := NewOpenAIAdapter(url + "/v1")
	_, err := adapter.Complete(context.Background(), "sk-test", testRequest())

	var ce *entities.CompletionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, entities.CompletionNetwork, ce.Kind)
}

func TestOpenAIAdapter_ZeroTemperatureIsSent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		temp, ok := body["temperature"]
		assert.True(t, ok, "temperature must not be omitted")
		assert.InDelta(t, 0, temp, 1e-6)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer server.Close()

	req := testRequest()
	req.Temperature = 0

	_, err := NewOpenAIAdapter(server.URL + "/v1").Complete(context.Background(), "sk-test", req)

	require.NoError(t, err)
}
