// Package validator decides whether extracted text is a genuine financial
// statement before it enters the pipeline.
package validator

import (
	"fmt"
	"strings"

	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"
)

// DefaultMinTextLength is the shortest text worth analysing.
const DefaultMinTextLength = 50

// Messages
const (
	msgHighConfidence   = "Valid bank statement detected"
	msgMediumConfidence = "Document appears to be a bank statement"
	msgLowConfidence    = "Document may be a bank statement"
	msgWrongDocument    = "Document does not appear to be a bank statement"
	msgInsufficientText = "Insufficient text extracted from document"
	msgAnalysisFailed   = "Document analysis failed"

	warnLowConfidence   = "Few statement markers were found; extracted results may be unreliable"
	suggestWrongDoc     = "Please upload a genuine bank statement showing dates, balances and account details"
	suggestInsufficient = "The document may be scanned or empty; try a clearer copy or a text-based PDF"
)

// MetadataExtractor is the collaborator invoked on valid documents.
type MetadataExtractor interface {
	Extract(rawText, fileName string) *models.StatementMetadata
}

// Validator scores text against banking keyword, date and currency densities.
type Validator struct {
	logger        logging.Logger
	extractor     MetadataExtractor
	counter       *counter
	thresholds    Thresholds
	minTextLength int
}

// NewValidator creates a validator. extractor may be nil, in which case no metadata is embedded.
func NewValidator(logger logging.Logger, extractor MetadataExtractor, vocab models.Vocabulary, thresholds Thresholds) *Validator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Validator{
		logger:        logger,
		extractor:     extractor,
		counter:       newCounter(vocab),
		thresholds:    thresholds,
		minTextLength: DefaultMinTextLength,
	}
}

// SetMinTextLength changes the minimum viable text length. Non-positive values are ignored.
func (v *Validator) SetMinTextLength(n int) {
	if n > 0 {
		v.minTextLength = n
	}
}

// ValidateRaw validates an extraction result using its page count.
func (v *Validator) ValidateRaw(raw models.RawText) models.ValidationResult {
	return v.Validate(raw.Text(), raw.Document, raw.EffectivePageCount())
}

// Validate classifies rawText. It never returns an error and never panics:
// internal failures become an analysis_error result.
func (v *Validator) Validate(rawText, fileName string, pageCount int) (result models.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.WithFields(
				logging.Field{Key: logging.FieldDocument, Value: fileName},
				logging.Field{Key: logging.FieldError, Value: fmt.Sprint(r)},
			).Error("Document analysis panicked")
			result = models.ValidationResult{
				Document:   fileName,
				Kind:       models.KindAnalysisError,
				Confidence: models.ConfidenceNone,
				Message:    fmt.Sprintf("%s: %v", msgAnalysisFailed, r),
				Counters:   result.Counters,
			}
		}
	}()

	if len(strings.TrimSpace(rawText)) < v.minTextLength {
		result = models.ValidationResult{
			Document:   fileName,
			Kind:       models.KindAnalysisError,
			Confidence: models.ConfidenceNone,
			Message:    msgInsufficientText,
			Suggestion: suggestInsufficient,
		}
		v.log(result)
		return result
	}

	result = v.classify(v.counter.measure(rawText, pageCount))
	result.Document = fileName
	if result.IsValid && v.extractor != nil {
		result.Metadata = v.extractor.Extract(rawText, fileName)
	}
	v.log(result)
	return result
}

// classify applies the decision policy in order.
func (v *Validator) classify(c models.HeuristicCounters) models.ValidationResult {
	t := v.thresholds
	result := models.ValidationResult{Counters: c, Kind: models.KindValidStatement, IsValid: true}

	switch {
	case c.BankingKeywords >= t.HighKeywords && c.Dates >= t.HighDates && c.Currency >= t.HighCurrency:
		result.Confidence = models.ConfidenceHigh
		result.Message = msgHighConfidence
	case c.BankingKeywords >= t.MediumKeywords && c.Dates >= t.MediumDates:
		result.Confidence = models.ConfidenceMedium
		result.Message = msgMediumConfidence
	case c.BankingKeywords < t.MediumKeywords && c.Dates < t.MediumDates:
		result.IsValid = false
		result.Kind = models.KindWrongDocument
		result.Confidence = models.ConfidenceNone
		result.Message = msgWrongDocument
		result.Suggestion = suggestWrongDoc
	default:
		result.Confidence = models.ConfidenceLow
		result.Message = msgLowConfidence
		result.Warning = warnLowConfidence
	}
	return result
}

func (v *Validator) log(result models.ValidationResult) {
	logger := v.logger.WithFields(
		logging.Field{Key: logging.FieldDocument, Value: result.Document},
		logging.Field{Key: "kind", Value: result.Kind},
		logging.Field{Key: logging.FieldConfidence, Value: result.Confidence},
		logging.Field{Key: "banking_keywords", Value: result.Counters.BankingKeywords},
		logging.Field{Key: "dates", Value: result.Counters.Dates},
		logging.Field{Key: "currency", Value: result.Counters.Currency},
	)
	if result.IsValid {
		logger.Info(result.Message)
	} else {
		logger.Warn(result.Message)
	}
}
