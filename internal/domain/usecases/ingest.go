// Package usecases contains application business rules.
// Usecases orchestrate entities and depend on port interfaces only.
package usecases

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Milo82/construction-ai-assistant/internal/domain/entities"
	"github.com/Milo82/construction-ai-assistant/internal/domain/ports"
	"github.com/apex/log"
)

// IngestedDocument is the text extracted from one file.
type IngestedDocument struct {
	Name string
	Text string
}

// BatchIngestResult aggregates the per-file outcomes of one upload.
type BatchIngestResult struct {
	Uploaded  int
	Succeeded []IngestedDocument
	Failed    []*entities.IngestError
	Corpus    string
	// Applied is false when the batch was empty and the session was left untouched.
	Applied bool
}

// Summary is the one-line upload confirmation shown to the user.
func (r BatchIngestResult) Summary() string {
	if r.Uploaded == 0 {
		return ""
	}
	return fmt.Sprintf("✅ %d files uploaded", r.Uploaded)
}

// IngestUseCase turns uploaded files into the session corpus.
type IngestUseCase struct {
	pdf      ports.DocumentParser
	recorder ports.UsageRecorder
}

// NewIngestUseCase creates an IngestUseCase with injected dependencies.
func NewIngestUseCase(pdf ports.DocumentParser, recorder ports.UsageRecorder) *IngestUseCase {
	if recorder == nil {
		recorder = ports.NopRecorder{}
	}
	return &IngestUseCase{
		pdf:      pdf,
		recorder: recorder,
	}
}

// Ingest extracts every document in upload order and replaces the session
// corpus with the result. A failing file is skipped and reported; the rest of
// the batch continues. The document count is the number of files submitted,
// failed ones included. An empty batch leaves the session unset.
func (uc *IngestUseCase) Ingest(ctx context.Context, session ports.SessionStore, docs []entities.UploadedDocument) BatchIngestResult {
	result := BatchIngestResult{Uploaded: len(docs)}
	if len(docs) == 0 {
		return result
	}

	for _, doc := range docs {
		text, err := uc.Extract(ctx, doc)
		if err != nil {
			log.WithError(err).WithField("file", doc.Name).Warn("ingest.file.failed")
			result.Failed = append(result.Failed, &entities.IngestError{Name: doc.Name, Err: err})
			continue
		}
		log.WithFields(log.Fields{"file": doc.Name, "chars": len(text)}).Info("ingest.file.ok")
		result.Succeeded = append(result.Succeeded, IngestedDocument{Name: doc.Name, Text: text})
	}

	result.Corpus = BuildCorpus(result.Succeeded)
	session.SetCorpus(result.Corpus, len(docs))
	result.Applied = true

	uc.recorder.RecordIngest(len(result.Succeeded), len(result.Failed))
	return result
}

// Extract returns the raw text of a single document.
func (uc *IngestUseCase) Extract(ctx context.Context, doc entities.UploadedDocument) (string, error) {
	if doc.ReadErr != nil {
		return "", doc.ReadErr
	}
	switch doc.MimeType {
	case entities.MimePlainText, entities.MimeMarkdown:
		if !utf8.Valid(doc.Data) {
			return "", fmt.Errorf("'utf-8' codec can't decode %s: invalid byte sequence", doc.Name)
		}
		return string(doc.Data), nil
	case entities.MimePDF:
		if uc.pdf == nil {
			return "", entities.ErrUnsupportedType
		}
		return uc.pdf.Parse(ctx, doc.Data, doc.Name)
	default:
		return "", fmt.Errorf("%w: %q", entities.ErrUnsupportedType, doc.MimeType)
	}
}

// BuildCorpus wraps each document with its delimiter header and concatenates
// them in order.
func BuildCorpus(docs []IngestedDocument) string {
	var sb strings.Builder
	for _, d := range docs {
		sb.WriteString("\n\n--- ")
		sb.WriteString(d.Name)
		sb.WriteString(" ---\n")
		sb.WriteString(d.Text)
	}
	return sb.String()
}
