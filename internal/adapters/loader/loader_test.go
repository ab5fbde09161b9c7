package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Milo82/construction-ai-assistant/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_ByExtension(t *testing.T) {
	tests := []struct {
		name string
		want entities.MimeType
	}{
		{"spec.txt", entities.MimePlainText},
		{"README.md", entities.MimeMarkdown},
		{"notes.MARKDOWN", entities.MimeMarkdown},
		{"drawings.PDF", entities.MimePDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.name, []byte("irrelevant")))
		})
	}
}

func TestClassify_SniffsWithoutExtension(t *testing.T) {
	assert.Equal(t, entities.MimePDF, Classify("scan", []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n")))
	assert.Equal(t, entities.MimePlainText, Classify("notes", []byte("Slab thickness 200mm")))
}

func TestClassify_UnknownKeepsSniffedType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	got := Classify("photo.png", png)

	assert.Equal(t, entities.MimeType("image/png"), got)
}

func TestDocument_UsesBaseName(t *testing.T) {
	doc := Document("some/dir/site.txt", []byte("x"))

	assert.Equal(t, "site.txt", doc.Name)
	assert.Equal(t, entities.MimePlainText, doc.MimeType)
}

func TestDirectoryLoader_ReadsSupportedFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("# Budget"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("Access road"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.json"), []byte("{}"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.txt"), 0755))

	docs, err := NewDirectoryLoader(dir).Documents(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a.txt", docs[0].Name)
	assert.Equal(t, "Access road", string(docs[0].Data))
	assert.Equal(t, "b.md", docs[1].Name)
	assert.Equal(t, entities.MimeMarkdown, docs[1].MimeType)
}

func TestDirectoryLoader_EmptyDir(t *testing.T) {
	docs, err := NewDirectoryLoader(t.TempDir()).Documents(context.Background())

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDirectoryLoader_MissingDir(t *testing.T) {
	_, err := NewDirectoryLoader("/nonexistent/docs").Documents(context.Background())

	if err == nil {
		t.Error("should error on nonexistent dir")
	}
}

func TestSupportedExtensions(t *testing.T) {
	exts := SupportedExtensions()

	assert.ElementsMatch(t, []string{".txt", ".pdf", ".md"}, exts)
}
