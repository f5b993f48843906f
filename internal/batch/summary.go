package batch

import (
	"fmt"
	"time"

	"fjacquet/statement-ledger/internal/dateutils"
	"fjacquet/statement-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// DateRange represents a date range with start and end dates
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String returns the range in statement notation, or "" when either end is unknown.
func (dr DateRange) String() string {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ""
	}
	return dateutils.FormatPeriod(dr.Start, dr.End)
}

// Merge returns the smallest range covering both, comparing by calendar day.
// Zero bounds are ignored.
func (dr DateRange) Merge(other DateRange) DateRange {
	merged := dr
	if !other.Start.IsZero() && (merged.Start.IsZero() || dateutils.CompareDates(other.Start, merged.Start) < 0) {
		merged.Start = other.Start
	}
	if !other.End.IsZero() && (merged.End.IsZero() || dateutils.CompareDates(other.End, merged.End) > 0) {
		merged.End = other.End
	}
	return merged
}

// CategoryTotal is the per-category slice of a batch summary.
type CategoryTotal struct {
	Category string          `json:"category"`
	Count    int             `json:"count"`
	Debits   decimal.Decimal `json:"debits"`
	Credits  decimal.Decimal `json:"credits"`
}

// BatchSummary is a read-only digest of a finished batch.
type BatchSummary struct {
	BatchID           string          `json:"batch_id"`
	Documents         int             `json:"documents"`
	Completed         int             `json:"completed"`
	Failed            int             `json:"failed"`
	Rejected          int             `json:"rejected"`
	SuccessRate       float64         `json:"success_rate"`
	TotalTransactions int             `json:"total_transactions"`
	Categorized       int             `json:"categorized"`
	Uncategorized     int             `json:"uncategorized"`
	Categories        []CategoryTotal `json:"categories"`
	TotalDebits       decimal.Decimal `json:"total_debits"`
	TotalCredits      decimal.Decimal `json:"total_credits"`
	OpeningBalance    decimal.Decimal `json:"opening_balance"`
	ClosingBalance    decimal.Decimal `json:"closing_balance"`
	Coverage          DateRange       `json:"-"`
	Cancelled         bool            `json:"cancelled"`
}

// String renders a one-line digest for CLI output.
func (s BatchSummary) String() string {
	return fmt.Sprintf("batch %s: %d/%d documents completed (%.0f%%), %d failed, %d rejected, %d transactions (%d uncategorized)",
		s.BatchID, s.Completed, s.Documents, s.SuccessRate*100, s.Failed, s.Rejected,
		s.TotalTransactions, s.Uncategorized)
}

// Summarize derives a BatchSummary from state. Counts come from the records
// themselves so the summary stays consistent with the stored transactions.
func Summarize(state *models.BatchState) BatchSummary {
	summary := BatchSummary{
		BatchID:        state.ID,
		Documents:      len(state.Records),
		TotalDebits:    decimal.Zero,
		TotalCredits:   decimal.Zero,
		OpeningBalance: decimal.Zero,
		ClosingBalance: decimal.Zero,
		Cancelled:      state.Cancelled,
	}

	for _, rec := range state.Records {
		switch rec.Status {
		case models.StatusCompleted:
			summary.Completed++
			if rec.Stats != nil {
				summary.OpeningBalance = summary.OpeningBalance.Add(rec.Stats.OpeningBalance)
				summary.ClosingBalance = summary.ClosingBalance.Add(rec.Stats.ClosingBalance)
			}
			if rec.Metadata != nil && rec.Metadata.Period != nil {
				summary.Coverage = summary.Coverage.Merge(DateRange{
					Start: rec.Metadata.Period.Start,
					End:   rec.Metadata.Period.End,
				})
			}
		case models.StatusFailed:
			summary.Failed++
		case models.StatusValidationFailed:
			summary.Rejected++
		}
	}
	if summary.Documents > 0 {
		summary.SuccessRate = float64(summary.Completed) / float64(summary.Documents)
	}

	for _, name := range state.CategoryOrder {
		summary.Categories = append(summary.Categories, total(name, state.Categories[name]))
	}
	if len(state.Uncategorized) > 0 {
		summary.Categories = append(summary.Categories, total(models.CategoryUncategorized, state.Uncategorized))
	}

	for _, ct := range summary.Categories {
		summary.TotalTransactions += ct.Count
		summary.TotalDebits = summary.TotalDebits.Add(ct.Debits)
		summary.TotalCredits = summary.TotalCredits.Add(ct.Credits)
	}
	summary.Uncategorized = len(state.Uncategorized)
	summary.Categorized = summary.TotalTransactions - summary.Uncategorized
	return summary
}

func total(name string, txs []models.Transaction) CategoryTotal {
	ct := CategoryTotal{Category: name, Count: len(txs), Debits: decimal.Zero, Credits: decimal.Zero}
	for _, tx := range txs {
		if tx.IsDebit {
			ct.Debits = ct.Debits.Add(tx.Amount)
		} else {
			ct.Credits = ct.Credits.Add(tx.Amount)
		}
	}
	return ct
}
