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

func TestOllama_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var body ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.False(t, body.Stream)
		assert.Equal(t, 800, body.Options.NumPredict)
		assert.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"message":           map[string]string{"role": "assistant", "content": "Hello there!"},
			"done":              true,
			"prompt_eval_count": 42,
			"eval_count":        7,
		})
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL)
	resp, err := adapter.Complete(context.Background(), "", testRequest())

	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if resp.Content != "Hello there!" {
		t.Errorf("unexpected response: %s", resp.Content)
	}
	assert.Equal(t, entities.Usage{PromptTokens: 42, CompletionTokens: 7}, resp.Usage)
}

func TestOllama_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL)
	_, err := adapter.Complete(context.Background(), "", testRequest())

	var ce *entities.CompletionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, entities.CompletionProvider, ce.Kind)
	assert.Contains(t, err.Error(), "model not found")
}

func TestOllama_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL)
	_, err := adapter.Complete(context.Background(), "", testRequest())

	var ce *entities.CompletionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, entities.CompletionMalformed, ce.Kind)
}

func TestOllama_DefaultBaseURL(t *testing.T) {
	adapter := NewOllamaAdapter("")
	if adapter.baseURL != "http://localhost:11434" {
		t.Errorf("unexpected default base url: %s", adapter.baseURL)
	}
}
