package parsererror

import (
	"errors"
	"fmt"
)

// Batch submission level errors. These are the only errors surfaced to the caller as blocking.
var (
	ErrNoDocuments      = errors.New("no documents supplied")
	ErrNoValidDocuments = errors.New("no document passed validation")
	ErrBatchCancelled   = errors.New("batch cancelled")
)

// ExtractionError wraps a failure of the text-extraction collaborator for one document.
type ExtractionError struct {
	Document string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("text extraction failed for %s: %v", e.Document, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ParseError represents an error during parsing
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError represents a document rejected by the validator.
type ValidationError struct {
	Document string
	Kind     string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s (%s): %s", e.Document, e.Kind, e.Reason)
}

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Key, e.Reason)
}
