package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaTypeForName(t *testing.T) {
	tests := []struct {
		name    string
		want    MediaType
		wantErr bool
	}{
		{"statement.pdf", MediaTypePDF, false},
		{"STATEMENT.PDF", MediaTypePDF, false},
		{"export.txt", MediaTypeText, false},
		{"photo.png", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MediaTypeForName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewDocumentFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "march.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello statement"), 0600))

	doc, err := NewDocumentFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "march.txt", doc.Name)
	assert.Equal(t, int64(15), doc.Size)
	assert.Equal(t, MediaTypeText, doc.MediaType)
	assert.Equal(t, path, doc.Path)

	_, err = NewDocumentFromFile(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)

	_, err = NewDocumentFromFile(dir)
	assert.Error(t, err)
}

func TestRawText(t *testing.T) {
	raw := RawText{Pages: []string{"page one", "page two"}, PageCount: 2}
	assert.Equal(t, "page one\npage two", raw.Text())
	assert.Equal(t, 2, raw.EffectivePageCount())

	assert.Equal(t, 1, RawText{}.EffectivePageCount())
}

func TestNewTextDocument(t *testing.T) {
	doc := NewTextDocument("inline.txt", "abc")
	assert.Equal(t, MediaTypeText, doc.MediaType)
	assert.Equal(t, int64(3), doc.Size)
	assert.Equal(t, []byte("abc"), doc.Content)
}
