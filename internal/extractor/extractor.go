// Package extractor adapts the text-extraction collaborator: it turns a
// Document into page-ordered raw text. OCR is not performed here.
package extractor

import (
	"context"
	"fmt"
	"os"

	"fjacquet/statement-ledger/internal/models"
)

// TextExtractor returns the page-ordered text of a document. A pageLimit of
// zero or less extracts every page.
//
//go:generate mockgen -destination=mocks/mock_extractor.go -source=extractor.go TextExtractor
type TextExtractor interface {
	Extract(ctx context.Context, doc models.Document, pageLimit int) (models.RawText, error)
}

// MediaTypeExtractor dispatches on the document's declared media type.
type MediaTypeExtractor struct {
	extractors map[models.MediaType]TextExtractor
}

// NewMediaTypeExtractor creates a dispatcher for plain text and PDF documents.
func NewMediaTypeExtractor(text, pdf TextExtractor) *MediaTypeExtractor {
	return &MediaTypeExtractor{
		extractors: map[models.MediaType]TextExtractor{
			models.MediaTypeText: text,
			models.MediaTypePDF:  pdf,
		},
	}
}

// Extract implements TextExtractor.
func (e *MediaTypeExtractor) Extract(ctx context.Context, doc models.Document, pageLimit int) (models.RawText, error) {
	ex, ok := e.extractors[doc.MediaType]
	if !ok || ex == nil {
		return models.RawText{}, fmt.Errorf("unsupported media type %q for %s", doc.MediaType, doc.Name)
	}
	return ex.Extract(ctx, doc, pageLimit)
}

// readDocument returns the document bytes from Content or Path.
func readDocument(doc models.Document) ([]byte, error) {
	if doc.Content != nil {
		return doc.Content, nil
	}
	if doc.Path == "" {
		return nil, fmt.Errorf("document %s has no content", doc.Name)
	}
	data, err := os.ReadFile(doc.Path) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", doc.Name, err)
	}
	return data, nil
}

// limitPages applies pageLimit and reports whether pages were dropped.
func limitPages(pages []string, pageLimit int) ([]string, bool) {
	if pageLimit > 0 && len(pages) > pageLimit {
		return pages[:pageLimit], true
	}
	return pages, false
}

// MockExtractor implements TextExtractor for testing purposes.
// It returns predefined text per document name, or an error.
type MockExtractor struct {
	Texts  map[string]string
	Errors map[string]error
	Calls  []string
}

// NewMockExtractor creates a new MockExtractor with the given texts.
func NewMockExtractor(texts map[string]string) *MockExtractor {
	return &MockExtractor{Texts: texts, Errors: map[string]error{}}
}

// Extract returns the predefined text or error for doc.Name.
func (m *MockExtractor) Extract(ctx context.Context, doc models.Document, pageLimit int) (models.RawText, error) {
	m.Calls = append(m.Calls, doc.Name)
	if err := ctx.Err(); err != nil {
		return models.RawText{}, err
	}
	if err, ok := m.Errors[doc.Name]; ok && err != nil {
		return models.RawText{}, err
	}
	text, ok := m.Texts[doc.Name]
	if !ok {
		return models.RawText{}, fmt.Errorf("no mock text for %s", doc.Name)
	}
	return models.RawText{Document: doc.Name, Pages: []string{text}, PageCount: 1}, nil
}
