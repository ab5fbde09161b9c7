// Package loader provides document loading adapters.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Milo82/construction-ai-assistant/internal/domain/entities"
	"github.com/apex/log"
	"github.com/gabriel-vasile/mimetype"
)

var extensionTypes = map[string]entities.MimeType{
	".txt":      entities.MimePlainText,
	".md":       entities.MimeMarkdown,
	".markdown": entities.MimeMarkdown,
	".pdf":      entities.MimePDF,
}

// SupportedExtensions returns the file extensions accepted for upload.
func SupportedExtensions() []string {
	return []string{".txt", ".pdf", ".md"}
}

// Classify decides the declared type of a file. A known extension wins;
// otherwise the content is sniffed. Anything that is neither PDF nor plain
// text keeps its sniffed type and is rejected later by ingestion.
func Classify(name string, data []byte) entities.MimeType {
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}

	detected := mimetype.Detect(data)
	switch {
	case detected.Is("application/pdf"):
		return entities.MimePDF
	case detected.Is("text/plain"):
		return entities.MimePlainText
	default:
		return entities.MimeType(detected.String())
	}
}

// Document builds an UploadedDocument from a name and raw bytes.
func Document(name string, data []byte) entities.UploadedDocument {
	return entities.UploadedDocument{
		Name:     filepath.Base(name),
		MimeType: Classify(name, data),
		Data:     data,
	}
}

// DirectoryLoader implements ports.DocumentSource over a flat directory.
type DirectoryLoader struct {
	dir string
}

// NewDirectoryLoader creates a loader for the given directory.
func NewDirectoryLoader(dir string) *DirectoryLoader {
	return &DirectoryLoader{dir: dir}
}

// Documents reads every supported file in the directory, ordered by name.
// Subdirectories are not descended into. Unreadable files are skipped.
func (l *DirectoryLoader) Documents(ctx context.Context) ([]entities.UploadedDocument, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("reading documents dir: %w", err)
	}

	var docs []entities.UploadedDocument
	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if entry.IsDir() || !isSupported(entry.Name()) {
			continue
		}

		path := filepath.Join(l.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("loader.read.skipped")
			continue
		}
		docs = append(docs, Document(entry.Name(), data))
	}

	return docs, nil
}

func isSupported(name string) bool {
	_, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}
