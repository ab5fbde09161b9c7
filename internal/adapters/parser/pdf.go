// Package parser provides document parsing adapters.
// Adapter implementing ports.DocumentParser.
package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/ledongthuc/pdf"
)

// PDFParser implements ports.DocumentParser with github.com/ledongthuc/pdf.
type PDFParser struct{}

// NewPDFParser creates a new PDF text extractor.
func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

// pageSource is an ordered sequence of pages that can yield plain text.
type pageSource interface {
	NumPage() int
	PageText(num int) (string, error)
}

type readerSource struct {
	r *pdf.Reader
}

func (s readerSource) NumPage() int { return s.r.NumPage() }

func (s readerSource) PageText(num int) (string, error) {
	p := s.r.Page(num)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

// Parse extracts text page by page. Each page is followed by a newline; a
// page without extractable text (a scan, an image) contributes an empty string.
// Only a document that cannot be opened at all is an error.
func (p *PDFParser) Parse(ctx context.Context, data []byte, filename string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	return joinPages(ctx, readerSource{r: reader}, filename), nil
}

// SupportedFormats returns formats this parser handles.
func (p *PDFParser) SupportedFormats() []string {
	return []string{"pdf"}
}

func joinPages(ctx context.Context, src pageSource, filename string) string {
	var sb strings.Builder
	n := src.NumPage()
	for i := 1; i <= n; i++ {
		if ctx.Err() != nil {
			break
		}
		sb.WriteString(pageText(src, i, filename))
		sb.WriteString("\n")
	}
	return sb.String()
}

// pageText isolates per-page failures, including panics inside the PDF
// library, so that one bad page never fails the document.
func pageText(src pageSource, num int, filename string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{"file": filename, "page": num}).Debugf("pdf.page.panic: %v", r)
			text = ""
		}
	}()

	text, err := src.PageText(num)
	if err != nil {
		log.WithFields(log.Fields{"file": filename, "page": num}).Debugf("pdf.page.empty: %v", err)
		return ""
	}
	return text
}
