// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions; adapters implement them.
package ports

import (
	"context"

	"github.com/Milo82/construction-ai-assistant/internal/domain/entities"
	"github.com/shopspring/decimal"
)

// CompletionService sends a chat request to a hosted language model.
type CompletionService interface {
	// Complete performs a single completion call with the given credential.
	// It makes exactly one attempt; failures are *entities.CompletionError.
	Complete(ctx context.Context, credential string, req entities.CompletionRequest) (*entities.CompletionResponse, error)
}

// DocumentParser extracts text from binary document formats.
type DocumentParser interface {
	// Parse extracts text content from document bytes.
	Parse(ctx context.Context, data []byte, filename string) (string, error)

	// SupportedFormats returns formats this parser handles (e.g., "pdf").
	SupportedFormats() []string
}

// SessionStore is the per-session state the usecases read and write.
// *entities.Session implements it.
type SessionStore interface {
	SetCorpus(text string, count int)
	Corpus() (text string, count int, ok bool)
	AppendTurn(turn entities.Turn)
	Transcript() []entities.Turn
	Credential() (string, bool)
}

// SessionRegistry creates, finds and ends sessions by ID.
type SessionRegistry interface {
	// Create starts a session under a freshly generated ID.
	Create() *entities.Session

	// Get returns a live session. Unknown IDs are never adopted.
	Get(id string) (*entities.Session, bool)

	// End destroys the session and everything it holds.
	End(id string)

	// Count returns the number of live sessions.
	Count() int
}

// DocumentSource produces documents from somewhere other than an upload,
// such as a shared folder.
type DocumentSource interface {
	// Documents returns the current set of documents in a stable order.
	Documents(ctx context.Context) ([]entities.UploadedDocument, error)
}

// UsageRecorder receives counters about ingestion and completion outcomes.
type UsageRecorder interface {
	RecordIngest(succeeded, failed int)
	RecordCompletion(outcome string, usage entities.Usage, cost decimal.Decimal)
	RecordGated()
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)

// NopRecorder discards all usage counters.
type NopRecorder struct{}

func (NopRecorder) RecordIngest(int, int)                                   {}
func (NopRecorder) RecordCompletion(string, entities.Usage, decimal.Decimal) {}
func (NopRecorder) RecordGated()                                            {}
