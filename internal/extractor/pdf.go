package extractor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"unicode"

	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"

	"github.com/ledongthuc/pdf"
)

// minReadableChars is the least amount of text accepted from a PDF.
const minReadableChars = 50

// PDFExtractor reads application/pdf documents with ledongthuc/pdf, falling
// back to the pdftotext command when the library yields no readable text.
type PDFExtractor struct {
	logger       logging.Logger
	pdftotextBin string
}

// NewPDFExtractor creates a new PDFExtractor instance.
func NewPDFExtractor(logger logging.Logger) *PDFExtractor {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &PDFExtractor{logger: logger, pdftotextBin: "pdftotext"}
}

// Extract implements TextExtractor.
func (e *PDFExtractor) Extract(ctx context.Context, doc models.Document, pageLimit int) (models.RawText, error) {
	if err := ctx.Err(); err != nil {
		return models.RawText{}, err
	}
	data, err := readDocument(doc)
	if err != nil {
		return models.RawText{}, err
	}

	pages, total, libErr := extractWithLibrary(data, pageLimit)
	if libErr == nil && isReadableText(pages) {
		return newRawText(doc.Name, pages, total, pageLimit), nil
	}

	e.logger.WithFields(
		logging.Field{Key: logging.FieldDocument, Value: doc.Name},
		logging.Field{Key: logging.FieldError, Value: fmt.Sprint(libErr)},
	).Debug("PDF library produced no readable text, trying pdftotext")

	pages, total, popplerErr := e.extractWithPdftotext(ctx, doc, data, pageLimit)
	if popplerErr == nil && isReadableText(pages) {
		return newRawText(doc.Name, pages, total, pageLimit), nil
	}

	if libErr != nil {
		return models.RawText{}, fmt.Errorf("PDF text extraction failed: %w", libErr)
	}
	return models.RawText{}, fmt.Errorf("no readable text could be extracted from %s; the file may be image-based or scanned", doc.Name)
}

func newRawText(name string, pages []string, total, pageLimit int) models.RawText {
	return models.RawText{
		Document:  name,
		Pages:     pages,
		PageCount: len(pages),
		Truncated: pageLimit > 0 && total > pageLimit,
	}
}

// extractWithLibrary joins the words of each row, page by page.
func extractWithLibrary(data []byte, pageLimit int) (pages []string, total int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, 0, err
	}
	total = r.NumPage()
	if total == 0 {
		return nil, 0, fmt.Errorf("PDF has no pages")
	}

	last := total
	if pageLimit > 0 && pageLimit < total {
		last = pageLimit
	}
	for i := 1; i <= last; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		rows, rowErr := page.GetTextByRow()
		if rowErr != nil {
			pages = append(pages, "")
			continue
		}
		var lines []string
		for _, row := range rows {
			parts := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages, total, nil
}

// extractWithPdftotext runs poppler's pdftotext one page at a time.
func (e *PDFExtractor) extractWithPdftotext(ctx context.Context, doc models.Document, data []byte, pageLimit int) ([]string, int, error) {
	bin, err := exec.LookPath(e.pdftotextBin)
	if err != nil {
		return nil, 0, fmt.Errorf("pdftotext not available: %w", err)
	}

	path := doc.Path
	if path == "" || doc.Content != nil {
		tmp, err := os.CreateTemp("", "statement-*.pdf")
		if err != nil {
			return nil, 0, fmt.Errorf("error creating temp file: %w", err)
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.Write(data); err != nil {
			_ = tmp.Close()
			return nil, 0, fmt.Errorf("error writing temp file: %w", err)
		}
		if err := tmp.Close(); err != nil {
			return nil, 0, fmt.Errorf("error closing temp file: %w", err)
		}
		path = tmp.Name()
	}

	total := countPages(ctx, path)
	last := total
	if pageLimit > 0 && pageLimit < total {
		last = pageLimit
	}

	var pages []string
	for i := 1; i <= last; i++ {
		n := strconv.Itoa(i)
		out, err := exec.CommandContext(ctx, bin, "-layout", "-f", n, "-l", n, path, "-").Output() // #nosec G204 -- fixed binary, file path argument
		if err != nil {
			return nil, 0, fmt.Errorf("pdftotext failed on page %d: %w", i, err)
		}
		pages = append(pages, strings.TrimSpace(string(out)))
	}
	return pages, total, nil
}

// countPages asks pdfinfo for the page count, defaulting to one.
func countPages(ctx context.Context, path string) int {
	out, err := exec.CommandContext(ctx, "pdfinfo", path).Output() // #nosec G204 -- fixed binary, file path argument
	if err != nil {
		return 1
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "Pages:") {
			if n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:"))); err == nil && n > 0 {
				return n
			}
		}
	}
	return 1
}

// textQuality returns the share of printable ASCII and common currency runes.
func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if (r >= 0x20 && r < 0x7f) || unicode.IsSpace(r) || strings.ContainsRune("£€", r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// isReadableText requires some text that is mostly not binary garbage.
func isReadableText(pages []string) bool {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n >= minReadableChars && textQuality(pages) > 0.6
}
