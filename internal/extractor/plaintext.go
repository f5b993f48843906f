package extractor

import (
	"context"
	"strings"
	"unicode/utf8"

	"fjacquet/statement-ledger/internal/models"
)

// PlainTextExtractor reads text/plain documents. Form feeds separate pages.
type PlainTextExtractor struct{}

// NewPlainTextExtractor creates a new PlainTextExtractor instance.
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

// Extract implements TextExtractor.
func (e *PlainTextExtractor) Extract(ctx context.Context, doc models.Document, pageLimit int) (models.RawText, error) {
	if err := ctx.Err(); err != nil {
		return models.RawText{}, err
	}
	data, err := readDocument(doc)
	if err != nil {
		return models.RawText{}, err
	}

	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, " ")
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	pages, truncated := limitPages(strings.Split(text, "\f"), pageLimit)
	return models.RawText{
		Document:  doc.Name,
		Pages:     pages,
		PageCount: len(pages),
		Truncated: truncated,
	}, nil
}
