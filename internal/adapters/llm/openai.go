// Package llm provides completion adapters.
// Adapters implementing ports.CompletionService.
package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"

	"github.com/Milo82/construction-ai-assistant/internal/domain/entities"
	"github.com/apex/log"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIAdapter implements ports.CompletionService using the OpenAI chat
// completions API. A client is built per call because the credential belongs
// to the session, not to the process.
type OpenAIAdapter struct {
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIAdapter creates a new OpenAI adapter. An empty baseURL uses the
// public API.
func NewOpenAIAdapter(baseURL string) *OpenAIAdapter {
	return &OpenAIAdapter{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// Complete sends one chat completion request. There are no retries.
func (a *OpenAIAdapter) Complete(ctx context.Context, credential string, req entities.CompletionRequest) (*entities.CompletionResponse, error) {
	cfg := openai.DefaultConfig(credential)
	if a.baseURL != "" {
		cfg.BaseURL = a.baseURL
	}
	cfg.HTTPClient = a.httpClient
	client := openai.NewClientWithConfig(cfg)

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: wireTemperature(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, classify(err)
	}

	if len(resp.Choices) == 0 {
		return nil, entities.NewCompletionError(entities.CompletionMalformed, errors.New("response contained no choices"))
	}

	log.WithFields(log.Fields{
		"model":             resp.Model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	}).Debug("openai.completion")

	return &entities.CompletionResponse{
		Content: resp.Choices[0].Message.Content,
		Usage: entities.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// wireTemperature keeps a requested zero on the wire. go-openai omits a zero
// temperature, which would make the API apply its own default of 1.
func wireTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// classify maps a go-openai error onto a CompletionError kind, keeping the
// provider message as the cause.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return entities.NewCompletionError(kindForStatus(apiErr.HTTPStatusCode), err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return entities.NewCompletionError(kindForStatus(reqErr.HTTPStatusCode), err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return entities.NewCompletionError(entities.CompletionNetwork, err)
	}

	return entities.NewCompletionError(entities.CompletionProvider, fmt.Errorf("calling OpenAI: %w", err))
}

func kindForStatus(status int) entities.CompletionErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return entities.CompletionAuth
	case status == http.StatusTooManyRequests:
		return entities.CompletionRateLimit
	default:
		return entities.CompletionProvider
	}
}
