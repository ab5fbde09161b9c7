package entities

import (
	"errors"
	"fmt"
)

// ErrCredentialMissing marks the gating condition: no credential has been
// supplied, so no conversation action may run. It is not a failure.
var ErrCredentialMissing = errors.New("credential missing")

// GatingNotice is the persistent notice shown while the credential is missing.
const GatingNotice = "Please enter your OpenAI API key in the sidebar"

// ErrUnsupportedType is returned for files outside {txt, pdf, md}.
var ErrUnsupportedType = errors.New("unsupported file type")

// IngestError is a non-fatal, per-file ingestion failure.
type IngestError struct {
	Name string
	Err  error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("Error reading %s: %v", e.Name, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

// CompletionErrorKind classifies a failed completion call.
type CompletionErrorKind string

const (
	CompletionNetwork   CompletionErrorKind = "network"
	CompletionAuth      CompletionErrorKind = "auth"
	CompletionRateLimit CompletionErrorKind = "rate_limit"
	CompletionMalformed CompletionErrorKind = "malformed"
	CompletionProvider  CompletionErrorKind = "provider"
)

// CompletionError is a non-fatal, per-turn failure of the completion API.
// The message is the provider-supplied description.
type CompletionError struct {
	Kind CompletionErrorKind
	Err  error
}

func (e *CompletionError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

func (e *CompletionError) Unwrap() error { return e.Err }

// NewCompletionError wraps err with the given kind.
func NewCompletionError(kind CompletionErrorKind, err error) error {
	return &CompletionError{Kind: kind, Err: err}
}
