package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single dated movement of funds parsed from a statement.
// Amount and Balance are always absolute values; direction lives in IsDebit.
type Transaction struct {
	// SourceDocument is the batch record key of the originating document.
	SourceDocument string          `json:"source_document"`
	Date           time.Time       `json:"date"`
	ValueDate      time.Time       `json:"value_date"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	IsDebit        bool            `json:"is_debit"`
	Balance        decimal.Decimal `json:"balance"`
	Currency       string          `json:"currency"`

	// Denormalized statement fields
	AccountNumber  string          `json:"account_number,omitempty"`
	IBAN           string          `json:"iban,omitempty"`
	Period         string          `json:"period,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	ExtractedAt    time.Time       `json:"extracted_at"`

	// Metadata is shared with every other transaction of the same document and must not be mutated.
	Metadata *StatementMetadata  `json:"-"`
	Category *CategoryAssignment `json:"category,omitempty"`
}

// DedupKey identifies a transaction within one document by date, description and amount.
func (t Transaction) DedupKey() string {
	return fmt.Sprintf("%s|%s|%s", t.Date.Format("2006-01-02"), t.Description, t.Amount.String())
}

// SignedAmount returns the amount with its direction applied.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.IsDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// DirectionLabel returns "DEBIT" or "CREDIT".
func (t Transaction) DirectionLabel() string {
	if t.IsDebit {
		return "DEBIT"
	}
	return "CREDIT"
}

// CategoryName returns the assigned category or UNCATEGORIZED when none is attached.
func (t Transaction) CategoryName() string {
	if t.Category == nil {
		return CategoryUncategorized
	}
	return t.Category.Category
}

// WithCategory returns a copy of the transaction carrying the given assignment.
func (t Transaction) WithCategory(assignment CategoryAssignment) Transaction {
	t.Category = &assignment
	return t
}

// StampMetadata copies the statement fields onto the transaction and keeps a
// reference to the shared metadata.
func (t *Transaction) StampMetadata(meta *StatementMetadata) {
	if meta == nil {
		return
	}
	t.Metadata = meta
	t.Currency = meta.Currency
	t.AccountNumber = meta.AccountNumber
	t.IBAN = meta.IBAN
	t.Period = meta.PeriodText()
	t.OpeningBalance = meta.OpeningBalance
	t.ClosingBalance = meta.ClosingBalance
	t.ExtractedAt = meta.ExtractedAt
}
