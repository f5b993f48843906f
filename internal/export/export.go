// Package export writes a finished batch as tabular CSV reports: one summary
// table of statement metadata and one table of categorized transactions.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/statement-ledger/internal/dateutils"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"
	"fjacquet/statement-ledger/internal/parsererror"

	"github.com/gocarina/gocsv"
)

// Mode selects how documents are grouped into output artifacts.
type Mode string

const (
	// ModeSeparate writes one report pair per successfully processed document.
	ModeSeparate Mode = "separate"
	// ModeCombined writes a single report pair for the whole batch.
	ModeCombined Mode = "combined"
)

const (
	summarySuffix      = "_summary.csv"
	transactionsSuffix = "_transactions.csv"
	combinedBaseName   = "batch"
)

// ParseMode converts a configuration value into a Mode.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeSeparate:
		return ModeSeparate, nil
	case ModeCombined:
		return ModeCombined, nil
	default:
		return "", &parsererror.ConfigError{Key: "export.mode", Reason: fmt.Sprintf("unknown mode %q (must be 'separate' or 'combined')", value)}
	}
}

// Exporter turns a finished batch into report files and returns their paths.
type Exporter interface {
	Export(state *models.BatchState, mode Mode, outDir string) ([]string, error)
}

// SummaryRow is one line of the summary table.
type SummaryRow struct {
	Document          string `csv:"Document"`
	Period            string `csv:"Period"`
	AccountNumber     string `csv:"AccountNumber"`
	IBAN              string `csv:"IBAN"`
	Currency          string `csv:"Currency"`
	OpeningBalance    string `csv:"OpeningBalance"`
	ClosingBalance    string `csv:"ClosingBalance"`
	TotalTransactions int    `csv:"TotalTransactions"`
	Categorized       int    `csv:"Categorized"`
	Uncategorized     int    `csv:"Uncategorized"`
}

// TransactionRow is one line of the transactions table.
type TransactionRow struct {
	Document    string `csv:"Document"`
	Date        string `csv:"Date"`
	ValueDate   string `csv:"ValueDate"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Balance     string `csv:"Balance"`
	Category    string `csv:"Category"`
	Currency    string `csv:"Currency"`
	DebitCredit string `csv:"DebitCredit"`
}

// NewSummaryRow builds a summary line from per-document stats.
func NewSummaryRow(stats models.DocumentProcessingStats) SummaryRow {
	return SummaryRow{
		Document:          stats.Document,
		Period:            stats.Period,
		AccountNumber:     stats.AccountNumber,
		IBAN:              stats.IBAN,
		Currency:          stats.Currency,
		OpeningBalance:    stats.OpeningBalance.StringFixed(2),
		ClosingBalance:    stats.ClosingBalance.StringFixed(2),
		TotalTransactions: stats.TotalTransactions,
		Categorized:       stats.Categorized,
		Uncategorized:     stats.Uncategorized,
	}
}

// NewTransactionRow builds a transactions line.
func NewTransactionRow(tx models.Transaction) TransactionRow {
	return TransactionRow{
		Document:    tx.SourceDocument,
		Date:        dateutils.FormatStatementDate(tx.Date),
		ValueDate:   dateutils.FormatStatementDate(tx.ValueDate),
		Description: tx.Description,
		Amount:      tx.Amount.StringFixed(2),
		Balance:     tx.Balance.StringFixed(2),
		Category:    tx.CategoryName(),
		Currency:    tx.Currency,
		DebitCredit: tx.DirectionLabel(),
	}
}

// CSVExporter writes reports with gocsv.
type CSVExporter struct {
	delimiter rune
	logger    logging.Logger
}

// NewCSVExporter creates a CSVExporter. A zero delimiter means comma.
func NewCSVExporter(delimiter rune, logger logging.Logger) *CSVExporter {
	if delimiter == 0 {
		delimiter = ','
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &CSVExporter{delimiter: delimiter, logger: logger}
}

// Export writes the report files for every completed document of state.
func (e *CSVExporter) Export(state *models.BatchState, mode Mode, outDir string) ([]string, error) {
	if state == nil {
		return nil, fmt.Errorf("cannot export a nil batch")
	}
	if err := os.MkdirAll(outDir, models.PermissionDirectory); err != nil {
		return nil, fmt.Errorf("error creating output directory: %w", err)
	}

	completed := state.RecordsWithStatus(models.StatusCompleted)
	var written []string

	switch mode {
	case ModeCombined:
		summaries := make([]SummaryRow, 0, len(completed))
		for _, rec := range completed {
			if rec.Stats != nil {
				summaries = append(summaries, NewSummaryRow(*rec.Stats))
			}
		}
		files, err := e.writePair(outDir, combinedBaseName, summaries, transactionRows(state.AllTransactions()))
		if err != nil {
			return written, err
		}
		written = append(written, files...)

	case ModeSeparate:
		bases := make(map[string]bool, len(completed))
		for _, rec := range completed {
			if rec.Stats == nil {
				continue
			}
			base := BaseName(rec.Key)
			for n := 2; bases[base]; n++ {
				base = fmt.Sprintf("%s_%d", BaseName(rec.Key), n)
			}
			bases[base] = true
			rows := transactionRows(state.TransactionsFor(rec.Key))
			files, err := e.writePair(outDir, base, []SummaryRow{NewSummaryRow(*rec.Stats)}, rows)
			if err != nil {
				return written, err
			}
			written = append(written, files...)
		}

	default:
		return nil, &parsererror.ConfigError{Key: "export.mode", Reason: fmt.Sprintf("unknown mode %q", mode)}
	}

	e.logger.Info("Exported batch",
		logging.Field{Key: logging.FieldBatchID, Value: state.ID},
		logging.Field{Key: "mode", Value: string(mode)},
		logging.Field{Key: logging.FieldCount, Value: len(written)})
	return written, nil
}

func (e *CSVExporter) writePair(outDir, base string, summaries []SummaryRow, txs []TransactionRow) ([]string, error) {
	summaryPath := filepath.Join(outDir, base+summarySuffix)
	if err := e.writeRows(summaryPath, &summaries); err != nil {
		return nil, err
	}
	txPath := filepath.Join(outDir, base+transactionsSuffix)
	if err := e.writeRows(txPath, &txs); err != nil {
		return []string{summaryPath}, err
	}
	return []string{summaryPath, txPath}, nil
}

func (e *CSVExporter) writeRows(path string, rows interface{}) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, models.PermissionReportFile) // #nosec G302 -- report files are meant to be shared
	if err != nil {
		e.logger.WithError(err).Error("Failed to create CSV file",
			logging.Field{Key: logging.FieldOutputFile, Value: path})
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			e.logger.WithError(err).Warn("Failed to close file",
				logging.Field{Key: logging.FieldOutputFile, Value: path})
		}
	}()

	csvWriter := csv.NewWriter(file)
	csvWriter.Comma = e.delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		e.logger.WithError(err).Error("Failed to marshal rows to CSV",
			logging.Field{Key: logging.FieldOutputFile, Value: path})
		return fmt.Errorf("error writing CSV data: %w", err)
	}

	e.logger.Debug("Wrote CSV file", logging.Field{Key: logging.FieldOutputFile, Value: path})
	return nil
}

func transactionRows(txs []models.Transaction) []TransactionRow {
	rows := make([]TransactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, NewTransactionRow(tx))
	}
	return rows
}

// BaseName derives a file-system safe report prefix from a document name.
func BaseName(document string) string {
	base := filepath.Base(document)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, base)
	if base == "" || base == "." {
		return "document"
	}
	return base
}
