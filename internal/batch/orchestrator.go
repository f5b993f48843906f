// Package batch drives a set of statement documents through validation and
// processing, isolating per-document failures and merging the categorized
// transactions into one batch state.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fjacquet/statement-ledger/internal/extractor"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"
	"fjacquet/statement-ledger/internal/parsererror"

	"github.com/google/uuid"
)

// DefaultValidationPageLimit is the number of pages read for validation.
const DefaultValidationPageLimit = 3

// Validator classifies the text of a document.
type Validator interface {
	Validate(rawText, fileName string, pageCount int) models.ValidationResult
}

// MetadataExtractor derives statement-level metadata from text.
type MetadataExtractor interface {
	Extract(rawText, fileName string) *models.StatementMetadata
}

// TransactionParser turns statement text into transactions.
type TransactionParser interface {
	Parse(rawText, fileName string, meta *models.StatementMetadata) []models.Transaction
}

// Categorizer assigns a category to a transaction description.
type Categorizer interface {
	Categorize(description string) models.CategoryAssignment
}

// DocumentProgress is reported after a document reaches a terminal state.
type DocumentProgress struct {
	BatchID  string
	Document string
	Status   models.DocumentStatus
	Error    string
	Counters models.BatchCounters
}

// ProgressFunc receives progress notifications. It is called synchronously.
type ProgressFunc func(DocumentProgress)

// Orchestrator runs batches. Its collaborators are injected so each stage can
// be replaced in tests.
type Orchestrator struct {
	extractor   extractor.TextExtractor
	validator   Validator
	metadata    MetadataExtractor
	parser      TransactionParser
	categorizer Categorizer
	logger      logging.Logger

	pageLimit int
	progress  ProgressFunc
	now       func() time.Time
	newID     func() string

	mu sync.Mutex
}

// NewOrchestrator creates an Orchestrator from its stage collaborators.
func NewOrchestrator(
	ext extractor.TextExtractor,
	validator Validator,
	meta MetadataExtractor,
	parser TransactionParser,
	categorizer Categorizer,
	logger logging.Logger,
) *Orchestrator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Orchestrator{
		extractor:   ext,
		validator:   validator,
		metadata:    meta,
		parser:      parser,
		categorizer: categorizer,
		logger:      logger,
		pageLimit:   DefaultValidationPageLimit,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// SetValidationPageLimit sets how many pages are read for validation. Zero or
// negative values read the whole document.
func (o *Orchestrator) SetValidationPageLimit(n int) {
	o.pageLimit = n
}

// SetProgressFunc installs a progress callback.
func (o *Orchestrator) SetProgressFunc(fn ProgressFunc) {
	o.progress = fn
}

// SetClock overrides the time source.
func (o *Orchestrator) SetClock(now func() time.Time) {
	if now != nil {
		o.now = now
	}
}

// Submit registers documents for a new batch.
func (o *Orchestrator) Submit(docs []models.Document) (*models.BatchState, error) {
	if len(docs) == 0 {
		return nil, parsererror.ErrNoDocuments
	}
	state := models.NewBatchState(o.newID(), docs, o.now())
	o.logger.Info("Batch submitted",
		logging.Field{Key: logging.FieldBatchID, Value: state.ID},
		logging.Field{Key: logging.FieldCount, Value: len(docs)})
	return state, nil
}

// RunBatch submits, validates, and processes docs. On cancellation the partial
// state is returned together with the error. FinishedAt is set on every
// return that carries a state.
func (o *Orchestrator) RunBatch(ctx context.Context, docs []models.Document) (*models.BatchState, error) {
	state, err := o.Submit(docs)
	if err != nil {
		return nil, err
	}
	if err := o.Validate(ctx, state); err != nil {
		o.finish(state)
		return state, err
	}
	err = o.Process(ctx, state)
	o.finish(state)
	if err != nil {
		return state, err
	}
	c := state.Counters
	o.logger.Info("Batch finished",
		logging.Field{Key: logging.FieldBatchID, Value: state.ID},
		logging.Field{Key: "processed", Value: c.Processed},
		logging.Field{Key: "failed", Value: c.Failed},
		logging.Field{Key: "rejected", Value: c.Rejected},
		logging.Field{Key: logging.FieldCount, Value: state.TransactionCount()},
		logging.Field{Key: logging.FieldDuration, Value: state.FinishedAt.Sub(state.SubmittedAt).Milliseconds()})
	return state, nil
}

func (o *Orchestrator) finish(state *models.BatchState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if state.FinishedAt.IsZero() {
		state.FinishedAt = o.now()
	}
}

// setStatus moves rec to status. Every record mutation goes through o.mu.
func (o *Orchestrator) setStatus(rec *models.DocumentRecord, status models.DocumentStatus) {
	o.mu.Lock()
	rec.Status = status
	o.mu.Unlock()
}

// Validate moves every uploaded document to validated, validation_failed, or
// failed. Errors on one document never stop the others.
func (o *Orchestrator) Validate(ctx context.Context, state *models.BatchState) error {
	for _, rec := range state.Records {
		if err := o.checkCancelled(ctx, state); err != nil {
			return err
		}
		if rec.Status != models.StatusUploaded {
			continue
		}
		o.validateDocument(ctx, state, rec)
	}
	return nil
}

func (o *Orchestrator) validateDocument(ctx context.Context, state *models.BatchState, rec *models.DocumentRecord) {
	name := rec.Key
	o.setStatus(rec, models.StatusValidating)

	raw, err := o.extractor.Extract(ctx, rec.Document, o.pageLimit)
	if err != nil {
		o.fail(state, rec, models.StatusValidating, &parsererror.ExtractionError{Document: name, Err: err})
		return
	}
	o.logger.Debug("Validation text extracted",
		logging.Field{Key: logging.FieldDocument, Value: name},
		logging.Field{Key: logging.FieldPages, Value: raw.EffectivePageCount()},
		logging.Field{Key: "truncated", Value: raw.Truncated})

	result := o.validator.Validate(raw.Text(), name, raw.EffectivePageCount())

	if !result.IsValid {
		verr := &parsererror.ValidationError{Document: name, Kind: string(result.Kind), Reason: result.Message}
		o.mu.Lock()
		rec.Validation = &result
		rec.Status = models.StatusValidationFailed
		rec.Error = verr.Error()
		state.Counters.Rejected++
		o.mu.Unlock()
		o.logger.Warn("Document rejected",
			logging.Field{Key: logging.FieldBatchID, Value: state.ID},
			logging.Field{Key: logging.FieldDocument, Value: name},
			logging.Field{Key: logging.FieldReason, Value: result.Message})
		o.notify(state, rec)
		return
	}

	o.mu.Lock()
	rec.Validation = &result
	rec.Status = models.StatusValidated
	if !raw.Truncated {
		// Metadata from truncated text may miss later pages; processing re-extracts it.
		rec.Metadata = result.Metadata
		cached := raw
		rec.CachedText = &cached
	}
	state.Counters.Validated++
	o.mu.Unlock()
}

// Process runs every validated document through metadata extraction, parsing,
// and categorization, merging the output into state.
func (o *Orchestrator) Process(ctx context.Context, state *models.BatchState) error {
	if len(state.RecordsWithStatus(models.StatusValidated)) == 0 {
		return parsererror.ErrNoValidDocuments
	}
	for _, rec := range state.Records {
		if err := o.checkCancelled(ctx, state); err != nil {
			return err
		}
		if rec.Status != models.StatusValidated {
			continue
		}
		o.processDocument(ctx, state, rec)
	}
	return nil
}

func (o *Orchestrator) processDocument(ctx context.Context, state *models.BatchState, rec *models.DocumentRecord) {
	name := rec.Key
	stage := models.StatusProcessing
	defer func() {
		if r := recover(); r != nil {
			o.fail(state, rec, stage, fmt.Errorf("processing %s: %v", name, r))
		}
	}()

	o.setStatus(rec, stage)
	raw, err := o.fullText(ctx, rec)
	if err != nil {
		o.fail(state, rec, stage, &parsererror.ExtractionError{Document: name, Err: err})
		return
	}

	stage = models.StatusAnalyzing
	o.setStatus(rec, stage)
	text := raw.Text()
	meta := rec.Metadata
	if meta == nil {
		meta = o.metadata.Extract(text, name)
	}

	txs := o.parser.Parse(text, name, meta)
	stats := newStats(name, meta)
	categorized := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		tx = tx.WithCategory(o.categorizer.Categorize(tx.Description))
		if tx.Category.IsCategorized() {
			stats.Categorized++
		} else {
			stats.Uncategorized++
		}
		categorized = append(categorized, tx)
	}
	stats.TotalTransactions = len(categorized)

	o.mu.Lock()
	for _, tx := range categorized {
		state.AddTransaction(tx)
	}
	rec.Metadata = meta
	rec.Stats = stats
	rec.CachedText = nil
	rec.Status = models.StatusCompleted
	state.Counters.Processed++
	o.mu.Unlock()

	o.logger.Info("Document processed",
		logging.Field{Key: logging.FieldBatchID, Value: state.ID},
		logging.Field{Key: logging.FieldDocument, Value: name},
		logging.Field{Key: logging.FieldCount, Value: stats.TotalTransactions},
		logging.Field{Key: "categorized", Value: stats.Categorized})
	o.notify(state, rec)
}

// fullText returns the cached validation text or extracts the whole document.
func (o *Orchestrator) fullText(ctx context.Context, rec *models.DocumentRecord) (models.RawText, error) {
	o.mu.Lock()
	cached := rec.CachedText
	o.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}
	return o.extractor.Extract(ctx, rec.Document, 0)
}

func newStats(name string, meta *models.StatementMetadata) *models.DocumentProcessingStats {
	stats := &models.DocumentProcessingStats{Document: name, Status: models.StatsSuccess}
	if meta != nil {
		stats.Period = meta.PeriodText()
		stats.AccountNumber = meta.AccountNumber
		stats.IBAN = meta.IBAN
		stats.Currency = meta.Currency
		stats.OpeningBalance = meta.OpeningBalance
		stats.ClosingBalance = meta.ClosingBalance
	}
	return stats
}

// fail marks rec failed. stage is the status it failed in.
func (o *Orchestrator) fail(state *models.BatchState, rec *models.DocumentRecord, stage models.DocumentStatus, err error) {
	o.mu.Lock()
	rec.Status = models.StatusFailed
	rec.Error = err.Error()
	rec.CachedText = nil
	rec.Stats = &models.DocumentProcessingStats{
		Document: rec.Key,
		Status:   models.StatsFailed,
		Error:    err.Error(),
	}
	state.Counters.Failed++
	o.mu.Unlock()

	o.logger.WithError(err).Error("Document failed",
		logging.Field{Key: logging.FieldBatchID, Value: state.ID},
		logging.Field{Key: logging.FieldDocument, Value: rec.Key},
		logging.Field{Key: logging.FieldStage, Value: string(stage)})
	o.notify(state, rec)
}

func (o *Orchestrator) checkCancelled(ctx context.Context, state *models.BatchState) error {
	if err := ctx.Err(); err != nil {
		o.mu.Lock()
		state.Cancelled = true
		state.FinishedAt = o.now()
		o.mu.Unlock()
		o.logger.Warn("Batch cancelled",
			logging.Field{Key: logging.FieldBatchID, Value: state.ID},
			logging.Field{Key: "processed", Value: state.Counters.Processed})
		return fmt.Errorf("%w: %v", parsererror.ErrBatchCancelled, err)
	}
	return nil
}

func (o *Orchestrator) notify(state *models.BatchState, rec *models.DocumentRecord) {
	if o.progress == nil {
		return
	}
	o.progress(DocumentProgress{
		BatchID:  state.ID,
		Document: rec.Key,
		Status:   rec.Status,
		Error:    rec.Error,
		Counters: state.Counters,
	})
}
