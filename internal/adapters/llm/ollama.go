package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Milo82/construction-ai-assistant/internal/domain/entities"
	"github.com/apex/log"
)

// OllamaAdapter implements ports.CompletionService against a local Ollama
// server. The session credential is ignored.
type OllamaAdapter struct {
	baseURL string
	client  *http.Client
}

// NewOllamaAdapter creates a new Ollama chat adapter.
func NewOllamaAdapter(baseURL string) *OllamaAdapter {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaAdapter{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 300 * time.Second, // local models can be slow on first load
		},
	}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// ollamaChatRequest is the Ollama chat API request.
type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

// ollamaChatResponse is the Ollama chat API response.
type ollamaChatResponse struct {
	Message         *ollamaMessage `json:"message"`
	Done            bool           `json:"done"`
	PromptEvalCount int            `json:"prompt_eval_count"`
	EvalCount       int            `json:"eval_count"`
}

// Complete sends one non-streaming chat request.
func (a *OllamaAdapter) Complete(ctx context.Context, _ string, req entities.CompletionRequest) (*entities.CompletionResponse, error) {
	reqBody := ollamaChatRequest{
		Model:  req.Model,
		Stream: false,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	}
	for _, m := range req.Messages {
		reqBody.Messages = append(reqBody.Messages, ollamaMessage{Role: string(m.Role), Content: m.Content})
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, entities.NewCompletionError(entities.CompletionProvider, fmt.Errorf("marshaling request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/chat", bytes.NewReader(jsonData))
	if err != nil {
		return nil, entities.NewCompletionError(entities.CompletionProvider, fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, entities.NewCompletionError(entities.CompletionNetwork, fmt.Errorf("calling Ollama: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, entities.NewCompletionError(kindForStatus(resp.StatusCode),
			fmt.Errorf("Ollama returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body)))
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, entities.NewCompletionError(entities.CompletionMalformed, fmt.Errorf("decoding response: %w", err))
	}
	if chatResp.Message == nil {
		return nil, entities.NewCompletionError(entities.CompletionMalformed, errors.New("response contained no message"))
	}

	log.WithFields(log.Fields{
		"model":             req.Model,
		"prompt_tokens":     chatResp.PromptEvalCount,
		"completion_tokens": chatResp.EvalCount,
	}).Debug("ollama.completion")

	return &entities.CompletionResponse{
		Content: chatResp.Message.Content,
		Usage: entities.Usage{
			PromptTokens:     chatResp.PromptEvalCount,
			CompletionTokens: chatResp.EvalCount,
		},
	}, nil
}
