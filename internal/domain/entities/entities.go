// Package entities contains core business entities.
// These are pure domain objects with no knowledge of transport or providers.
package entities

import (
	"sync"
	"time"
)

// MimeType is the kind of an uploaded document.
type MimeType string

const (
	MimePDF       MimeType = "application/pdf"
	MimePlainText MimeType = "text/plain"
	MimeMarkdown  MimeType = "text/markdown"
)

// UploadedDocument is a file handed to the ingestor. It only lives for the
// duration of one ingestion batch.
type UploadedDocument struct {
	Name     string
	MimeType MimeType
	Data     []byte
	// ReadErr is set when the upload's bytes could not be read. Ingestion
	// reports it as that file's failure.
	ReadErr error
}

// Role is the author of a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is one message in the visible transcript.
type Turn struct {
	Role    Role
	Content string
}

// Message is a single message sent to the completion provider.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is built per user turn and discarded after the call.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Usage holds the token counters reported by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// CompletionResponse is the provider's reply text plus its usage counters.
type CompletionResponse struct {
	Content string
	Usage   Usage
}

// Session is the per-user, in-memory state container. The zero value is not
// usable; create sessions with NewSession.
//
// The corpus is either unset or a (possibly empty) string; the two states are
// distinct and drive the context label shown to the user.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.RWMutex
	action     sync.Mutex
	credential string
	corpus     string
	corpusSet  bool
	docCount   int
	transcript []Turn
}

// NewSession creates an empty session with no corpus and no credential.
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
	}
}

// SetCredential stores the provider credential. An empty string clears it.
func (s *Session) SetCredential(credential string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = credential
}

// Credential returns the stored credential and whether one is present.
func (s *Session) Credential() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential, s.credential != ""
}

// SetCorpus replaces the corpus and document count. There is no merge with a
// previous corpus.
func (s *Session) SetCorpus(text string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corpus = text
	s.docCount = count
	s.corpusSet = true
}

// Corpus returns the corpus, the document count, and whether a corpus was ever set.
func (s *Session) Corpus() (string, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus, s.docCount, s.corpusSet
}

// AppendTurn adds a turn to the end of the transcript.
func (s *Session) AppendTurn(turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, turn)
}

// Transcript returns a copy of the transcript in insertion order.
func (s *Session) Transcript() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Lock serialises user actions on the session. Hold it for the whole of one
// upload or question so the session never sees two actions at once.
func (s *Session) Lock() { s.action.Lock() }

// Unlock releases the action lock taken by Lock.
func (s *Session) Unlock() { s.action.Unlock() }
