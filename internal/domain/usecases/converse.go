package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/Milo82/construction-ai-assistant/internal/domain/entities"
	"github.com/Milo82/construction-ai-assistant/internal/domain/ports"
	"github.com/apex/log"
	"github.com/shopspring/decimal"
)

const (
	// SystemPrompt is sent as the first message of every request.
	SystemPrompt = "You are a construction consulting assistant. Answer based on uploaded documents when available, citing specific files. Provide practical construction advice."

	noDocumentsContext = "No documents uploaded yet."
	noDocumentsLabel   = "No documents available"
)

// ConverseOptions are the fixed request parameters.
type ConverseOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int
	Pricing     Pricing
}

// DefaultConverseOptions matches the hosted gpt-4o-mini setup.
func DefaultConverseOptions() ConverseOptions {
	return ConverseOptions{
		Model:       "gpt-4o-mini",
		Temperature: 0.3,
		MaxTokens:   800,
		Pricing:     DefaultPricing,
	}
}

// Reply is the outcome of a successful turn.
type Reply struct {
	Turn         entities.Turn
	Usage        entities.Usage
	Cost         decimal.Decimal
	ContextLabel string
}

// Summary is the cost/context line displayed after the reply.
func (r Reply) Summary() string {
	return fmt.Sprintf("💰 Cost: %s | 📄 %s", FormatCost(r.Cost), r.ContextLabel)
}

// ConverseUseCase answers one user utterance against the session corpus.
type ConverseUseCase struct {
	completions ports.CompletionService
	recorder    ports.UsageRecorder
	opts        ConverseOptions
}

// NewConverseUseCase creates a ConverseUseCase with injected dependencies.
func NewConverseUseCase(completions ports.CompletionService, recorder ports.UsageRecorder, opts ConverseOptions) *ConverseUseCase {
	def := DefaultConverseOptions()
	if opts.Model == "" {
		opts.Model = def.Model
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = def.MaxTokens
	}
	if opts.Pricing.PromptTokenRate.IsZero() && opts.Pricing.CompletionTokenRate.IsZero() {
		opts.Pricing = def.Pricing
	}
	if recorder == nil {
		recorder = ports.NopRecorder{}
	}
	return &ConverseUseCase{
		completions: completions,
		recorder:    recorder,
		opts:        opts,
	}
}

// Respond appends the user turn, calls the provider once and, on success,
// appends the assistant turn. Without a credential it returns
// entities.ErrCredentialMissing and touches nothing. On provider failure the
// user turn stays in the transcript.
func (uc *ConverseUseCase) Respond(ctx context.Context, session ports.SessionStore, userText string) (*Reply, error) {
	credential, ok := session.Credential()
	if !ok {
		uc.recorder.RecordGated()
		return nil, entities.ErrCredentialMissing
	}

	session.AppendTurn(entities.Turn{Role: entities.RoleUser, Content: userText})

	contextText, contextLabel := ResolveContext(session)
	req := uc.BuildRequest(contextText, userText)

	resp, err := uc.completions.Complete(ctx, credential, req)
	if err != nil {
		var ce *entities.CompletionError
		if !errors.As(err, &ce) {
			ce = &entities.CompletionError{Kind: entities.CompletionProvider, Err: err}
			err = ce
		}
		uc.recorder.RecordCompletion(string(ce.Kind), entities.Usage{}, decimal.Zero)
		log.WithError(err).WithField("kind", ce.Kind).Warn("completion.failed")
		return nil, err
	}

	turn := entities.Turn{Role: entities.RoleAssistant, Content: resp.Content}
	session.AppendTurn(turn)

	cost := uc.opts.Pricing.Estimate(resp.Usage)
	uc.recorder.RecordCompletion("success", resp.Usage, cost)
	log.WithFields(log.Fields{
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"cost":              cost.String(),
	}).Info("completion.ok")

	return &Reply{
		Turn:         turn,
		Usage:        resp.Usage,
		Cost:         cost,
		ContextLabel: contextLabel,
	}, nil
}

// ResolveContext returns the context text sent to the model and the label
// shown to the user.
func ResolveContext(session ports.SessionStore) (string, string) {
	corpus, count, ok := session.Corpus()
	if !ok {
		return noDocumentsContext, noDocumentsLabel
	}
	return corpus, fmt.Sprintf("Based on %d uploaded documents", count)
}

// BuildRequest creates the two-message request. Only the latest question is
// included; earlier turns are never resent.
func (uc *ConverseUseCase) BuildRequest(contextText, userText string) entities.CompletionRequest {
	return entities.CompletionRequest{
		Model: uc.opts.Model,
		Messages: []entities.Message{
			{Role: entities.RoleSystem, Content: SystemPrompt},
			{Role: entities.RoleUser, Content: fmt.Sprintf("Documents:\n%s\n\nQuestion: %s", contextText, userText)},
		},
		Temperature: uc.opts.Temperature,
		MaxTokens:   uc.opts.MaxTokens,
	}
}
