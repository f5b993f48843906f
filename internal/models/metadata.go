package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementPeriod is the date range a statement covers.
type StatementPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// Text is the formatted "DD/MM/YYYY to DD/MM/YYYY" form.
	Text string `json:"text"`
}

// StatementMetadata holds the structured fields extracted from one Document.
// It is immutable once built and shared read-only by every Transaction of the
// same Document. Empty strings and a nil Period mean "not found".
type StatementMetadata struct {
	FileName       string           `json:"file_name"`
	Period         *StatementPeriod `json:"period,omitempty"`
	AccountNumber  string           `json:"account_number,omitempty"`
	IBAN           string           `json:"iban,omitempty"`
	Currency       string           `json:"currency"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	ClosingBalance decimal.Decimal  `json:"closing_balance"`
	ExtractedAt    time.Time        `json:"extracted_at"`
}

// PeriodText returns the formatted period or an empty string.
func (m *StatementMetadata) PeriodText() string {
	if m == nil || m.Period == nil {
		return ""
	}
	return m.Period.Text
}
