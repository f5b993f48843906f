// Package report renders a machine-readable run report for a finished batch.
package report

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fjacquet/statement-ledger/internal/batch"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"
)

// Supported report formats.
const (
	FormatJSON = "json"
	FormatXML  = "xml"
)

// DocumentEntry is the per-document line of a BatchReport.
type DocumentEntry struct {
	Name              string                `json:"name" xml:"name,attr"`
	Status            models.DocumentStatus `json:"status" xml:"status,attr"`
	Kind              models.ValidationKind `json:"kind,omitempty" xml:"kind,omitempty"`
	Confidence        models.Confidence     `json:"confidence,omitempty" xml:"confidence,omitempty"`
	Message           string                `json:"message,omitempty" xml:"message,omitempty"`
	Suggestion        string                `json:"suggestion,omitempty" xml:"suggestion,omitempty"`
	Period            string                `json:"period,omitempty" xml:"period,omitempty"`
	AccountNumber     string                `json:"account_number,omitempty" xml:"account_number,omitempty"`
	Currency          string                `json:"currency,omitempty" xml:"currency,omitempty"`
	TotalTransactions int                   `json:"total_transactions" xml:"total_transactions"`
	Uncategorized     int                   `json:"uncategorized" xml:"uncategorized"`
	Error             string                `json:"error,omitempty" xml:"error,omitempty"`
}

// CategoryEntry is the per-category line of a BatchReport.
type CategoryEntry struct {
	Category string `json:"category" xml:"name,attr"`
	Count    int    `json:"count" xml:"count"`
	Debits   string `json:"debits" xml:"debits"`
	Credits  string `json:"credits" xml:"credits"`
}

// BatchReport is the serializable digest of one batch run.
type BatchReport struct {
	XMLName       xml.Name        `json:"-" xml:"batch_report"`
	BatchID       string          `json:"batch_id" xml:"id,attr"`
	SubmittedAt   time.Time       `json:"submitted_at" xml:"submitted_at"`
	FinishedAt    time.Time       `json:"finished_at" xml:"finished_at"`
	Cancelled     bool            `json:"cancelled" xml:"cancelled"`
	SuccessRate   float64         `json:"success_rate" xml:"success_rate"`
	Coverage      string          `json:"coverage,omitempty" xml:"coverage,omitempty"`
	TotalDebits   string          `json:"total_debits" xml:"total_debits"`
	TotalCredits  string          `json:"total_credits" xml:"total_credits"`
	Documents     []DocumentEntry `json:"documents" xml:"documents>document"`
	Categories    []CategoryEntry `json:"categories" xml:"categories>category"`
	Uncategorized int             `json:"uncategorized" xml:"uncategorized"`
}

// NewBatchReport builds a report from a batch and its summary.
func NewBatchReport(state *models.BatchState, summary batch.BatchSummary) *BatchReport {
	r := &BatchReport{
		BatchID:       state.ID,
		SubmittedAt:   state.SubmittedAt,
		FinishedAt:    state.FinishedAt,
		Cancelled:     state.Cancelled,
		SuccessRate:   summary.SuccessRate,
		Coverage:      summary.Coverage.String(),
		TotalDebits:   summary.TotalDebits.StringFixed(2),
		TotalCredits:  summary.TotalCredits.StringFixed(2),
		Uncategorized: summary.Uncategorized,
	}

	for _, rec := range state.Records {
		entry := DocumentEntry{
			Name:   rec.Key,
			Status: rec.Status,
			Error:  rec.Error,
		}
		if v := rec.Validation; v != nil {
			entry.Kind = v.Kind
			entry.Confidence = v.Confidence
			entry.Message = v.Message
			entry.Suggestion = v.Suggestion
		}
		if m := rec.Metadata; m != nil {
			entry.Period = m.PeriodText()
			entry.AccountNumber = m.AccountNumber
			entry.Currency = m.Currency
		}
		if s := rec.Stats; s != nil {
			entry.TotalTransactions = s.TotalTransactions
			entry.Uncategorized = s.Uncategorized
		}
		r.Documents = append(r.Documents, entry)
	}

	for _, ct := range summary.Categories {
		r.Categories = append(r.Categories, CategoryEntry{
			Category: ct.Category,
			Count:    ct.Count,
			Debits:   ct.Debits.StringFixed(2),
			Credits:  ct.Credits.StringFixed(2),
		})
	}
	return r
}

// Generator renders batch reports in various formats.
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a new instance of Generator.
func NewGenerator(logger logging.Logger) *Generator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Generator{logger: logger}
}

// Generate renders report in the specified format (json or xml).
func (g *Generator) Generate(report *BatchReport, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return g.generateJSON(report)
	case FormatXML:
		return g.generateXML(report)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// WriteFile renders report into outDir/batch_report.<format> and returns the path.
func (g *Generator) WriteFile(report *BatchReport, format, outDir string) (string, error) {
	data, err := g.Generate(report, format)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(outDir, models.PermissionDirectory); err != nil {
		return "", fmt.Errorf("error creating output directory: %w", err)
	}
	path := filepath.Join(outDir, "batch_report."+format)
	if err := os.WriteFile(path, data, models.PermissionReportFile); err != nil {
		return "", fmt.Errorf("error writing report: %w", err)
	}
	g.logger.Debug("Batch report written",
		logging.Field{Key: logging.FieldOutputFile, Value: path},
		logging.Field{Key: logging.FieldBatchID, Value: report.BatchID})
	return path, nil
}

func (g *Generator) generateJSON(report *BatchReport) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return data, nil
}

func (g *Generator) generateXML(report *BatchReport) ([]byte, error) {
	data, err := xml.MarshalIndent(report, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal XML report")
		return nil, fmt.Errorf("failed to marshal XML report: %w", err)
	}
	return []byte(xml.Header + string(data)), nil
}
