package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MediaType is the declared type of a submitted document.
type MediaType string

const (
	MediaTypePDF  MediaType = "application/pdf"
	MediaTypeText MediaType = "text/plain"
)

// Document is a submitted input file. Either Path or Content carries the bytes.
type Document struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	MediaType MediaType `json:"media_type"`
	Path      string    `json:"path,omitempty"`
	Content   []byte    `json:"-"`
}

// MediaTypeForName maps a file extension onto a supported media type.
func MediaTypeForName(name string) (MediaType, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MediaTypePDF, nil
	case ".txt", ".text":
		return MediaTypeText, nil
	default:
		return "", fmt.Errorf("unsupported document type: %s", name)
	}
}

// NewDocumentFromFile stats path and builds a Document for it.
func NewDocumentFromFile(path string) (Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Document{}, fmt.Errorf("error reading document %s: %w", path, err)
	}
	if info.IsDir() {
		return Document{}, fmt.Errorf("document %s is a directory", path)
	}
	mediaType, err := MediaTypeForName(path)
	if err != nil {
		return Document{}, err
	}
	return Document{
		Name:      filepath.Base(path),
		Size:      info.Size(),
		MediaType: mediaType,
		Path:      path,
	}, nil
}

// NewTextDocument builds an in-memory plain text Document.
func NewTextDocument(name, text string) Document {
	return Document{
		Name:      name,
		Size:      int64(len(text)),
		MediaType: MediaTypeText,
		Content:   []byte(text),
	}
}

// RawText is the page-ordered text of one Document as produced by the
// text-extraction collaborator.
type RawText struct {
	Document  string
	Pages     []string
	PageCount int
	// Truncated is set when a page limit cut the extraction short.
	Truncated bool
}

// Text returns all pages joined by newlines.
func (r RawText) Text() string {
	return strings.Join(r.Pages, "\n")
}

// EffectivePageCount never returns less than one.
func (r RawText) EffectivePageCount() int {
	if r.PageCount < 1 {
		return 1
	}
	return r.PageCount
}
