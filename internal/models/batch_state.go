package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentStatus is the per-document pipeline state.
type DocumentStatus string

const (
	StatusUploaded         DocumentStatus = "uploaded"
	StatusValidating       DocumentStatus = "validating"
	StatusValidated        DocumentStatus = "validated"
	StatusValidationFailed DocumentStatus = "validation_failed"
	StatusProcessing       DocumentStatus = "processing"
	StatusAnalyzing        DocumentStatus = "analyzing"
	StatusCompleted        DocumentStatus = "completed"
	StatusFailed           DocumentStatus = "failed"
)

// IsTerminal reports whether no further transition is possible.
func (s DocumentStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusValidationFailed:
		return true
	default:
		return false
	}
}

// StatsStatus is the outcome recorded in DocumentProcessingStats.
type StatsStatus string

const (
	StatsSuccess StatsStatus = "success"
	StatsFailed  StatsStatus = "failed"
)

// DocumentProcessingStats aggregates the processing outcome of one document.
type DocumentProcessingStats struct {
	Document          string          `json:"document"`
	TotalTransactions int             `json:"total_transactions"`
	Categorized       int             `json:"categorized"`
	Uncategorized     int             `json:"uncategorized"`
	Status            StatsStatus     `json:"status"`
	Error             string          `json:"error,omitempty"`
	Period            string          `json:"period,omitempty"`
	AccountNumber     string          `json:"account_number,omitempty"`
	IBAN              string          `json:"iban,omitempty"`
	Currency          string          `json:"currency,omitempty"`
	OpeningBalance    decimal.Decimal `json:"opening_balance"`
	ClosingBalance    decimal.Decimal `json:"closing_balance"`
}

// DocumentRecord tracks one submitted document through the batch.
type DocumentRecord struct {
	// Key identifies the document within its batch. It is the document name,
	// suffixed with _2, _3... when another document already uses that name.
	Key        string
	Document   Document
	Status     DocumentStatus
	Validation *ValidationResult
	Metadata   *StatementMetadata
	Stats      *DocumentProcessingStats
	Error      string

	// CachedText holds the validation-time extraction when it covered the whole document.
	CachedText *RawText
}

// BatchCounters are the running counters visible for progress reporting.
type BatchCounters struct {
	Uploaded  int `json:"uploaded"`
	Validated int `json:"validated"`
	Rejected  int `json:"rejected"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// BatchState is the whole state of one batch run.
type BatchState struct {
	ID          string
	SubmittedAt time.Time
	FinishedAt  time.Time
	Records     []*DocumentRecord
	Counters    BatchCounters

	// Categories maps a category label onto its transactions in arrival order.
	Categories map[string][]Transaction
	// CategoryOrder lists category labels in first-seen order.
	CategoryOrder []string
	Uncategorized []Transaction
	Cancelled     bool
}

// NewBatchState creates an empty state with every document marked uploaded.
func NewBatchState(id string, docs []Document, now time.Time) *BatchState {
	state := &BatchState{
		ID:          id,
		SubmittedAt: now,
		Records:     make([]*DocumentRecord, 0, len(docs)),
		Categories:  make(map[string][]Transaction),
	}
	used := make(map[string]bool, len(docs))
	for _, doc := range docs {
		key := uniqueKey(doc.Name, used)
		used[key] = true
		state.Records = append(state.Records, &DocumentRecord{Key: key, Document: doc, Status: StatusUploaded})
	}
	state.Counters.Uploaded = len(docs)
	return state
}

func uniqueKey(name string, used map[string]bool) string {
	if !used[name] {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 2; ; n++ {
		key := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if !used[key] {
			return key
		}
	}
}

// AddTransaction appends a categorized transaction to its bucket.
func (b *BatchState) AddTransaction(tx Transaction) {
	if tx.Category == nil || !tx.Category.IsCategorized() {
		b.Uncategorized = append(b.Uncategorized, tx)
		return
	}
	name := tx.Category.Category
	if _, ok := b.Categories[name]; !ok {
		b.CategoryOrder = append(b.CategoryOrder, name)
	}
	b.Categories[name] = append(b.Categories[name], tx)
}

// AllTransactions returns every output transaction, category buckets first in
// first-seen order and then the uncategorized bucket.
func (b *BatchState) AllTransactions() []Transaction {
	all := make([]Transaction, 0, b.TransactionCount())
	for _, name := range b.CategoryOrder {
		all = append(all, b.Categories[name]...)
	}
	return append(all, b.Uncategorized...)
}

// TransactionCount returns the number of transactions across all buckets.
func (b *BatchState) TransactionCount() int {
	total := len(b.Uncategorized)
	for _, txs := range b.Categories {
		total += len(txs)
	}
	return total
}

// TransactionsFor returns the output transactions of the document with the
// given record key in bucket order.
func (b *BatchState) TransactionsFor(key string) []Transaction {
	var out []Transaction
	for _, tx := range b.AllTransactions() {
		if tx.SourceDocument == key {
			out = append(out, tx)
		}
	}
	return out
}

// Stats returns the per-document stats of every document that reached processing.
func (b *BatchState) Stats() []DocumentProcessingStats {
	var stats []DocumentProcessingStats
	for _, rec := range b.Records {
		if rec.Stats != nil {
			stats = append(stats, *rec.Stats)
		}
	}
	return stats
}

// RecordsWithStatus returns the records currently in the given status.
func (b *BatchState) RecordsWithStatus(status DocumentStatus) []*DocumentRecord {
	var out []*DocumentRecord
	for _, rec := range b.Records {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out
}

// IsFinished reports whether every document reached a terminal state.
func (b *BatchState) IsFinished() bool {
	for _, rec := range b.Records {
		if !rec.Status.IsTerminal() {
			return false
		}
	}
	return true
}

// Partition counts records per status. Once the batch is finished the counts
// sum to the number of submitted documents.
func (b *BatchState) Partition() map[DocumentStatus]int {
	counts := make(map[DocumentStatus]int)
	for _, rec := range b.Records {
		counts[rec.Status]++
	}
	return counts
}
