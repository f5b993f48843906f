// Package ingest runs a batch of statement documents through the pipeline and exports the result
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"fjacquet/statement-ledger/cmd/root"
	"fjacquet/statement-ledger/internal/batch"
	"fjacquet/statement-ledger/internal/container"
	"fjacquet/statement-ledger/internal/currencyutils"
	"fjacquet/statement-ledger/internal/export"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"
	"fjacquet/statement-ledger/internal/parsererror"
	"fjacquet/statement-ledger/internal/report"
	"fjacquet/statement-ledger/internal/validation"

	"github.com/spf13/cobra"
)

// Mode overrides export.mode for one run
var Mode string

// Cmd represents the ingest command
var Cmd = &cobra.Command{
	Use:   "ingest",
	Short: "Validate, parse and categorize a batch of statements",
	Long: `Ingest validates every input document, extracts statement metadata and
transactions from the valid ones, categorizes each transaction and writes CSV
summary and transaction reports to the output directory.

Directories contribute every supported file they contain. A document that fails
does not stop the others.

Example:
  statement-ledger ingest -i statements/ -i extra.pdf -o reports/ --mode combined`,
	RunE: ingestFunc,
}

func init() {
	Cmd.Flags().StringVarP(&Mode, "mode", "m", "", "Export mode: separate or combined (default from config)")
}

func ingestFunc(cmd *cobra.Command, args []string) error {
	inputs := append(append([]string{}, root.SharedFlags.Inputs...), args...)
	if len(inputs) == 0 || root.SharedFlags.Output == "" {
		return fmt.Errorf("input (-i) and output directory (-o) must be specified")
	}

	c := root.GetContainer()
	if c == nil {
		return fmt.Errorf("container not initialized")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	_, _, err := Run(ctx, c, inputs, root.SharedFlags.Output, Mode, cmd.OutOrStdout())
	return err
}

// Run executes one batch over inputs and exports it to outDir. It returns the
// batch summary and the written files. A cancelled batch still exports the
// documents completed before cancellation.
func Run(ctx context.Context, c *container.Container, inputs []string, outDir, mode string, out io.Writer) (batch.BatchSummary, []string, error) {
	cfg := c.GetConfig()
	logger := c.GetLogger()

	if mode == "" {
		mode = cfg.Export.Mode
	}
	if err := validation.IsValidExportMode(mode); err != nil {
		return batch.BatchSummary{}, nil, err
	}
	exportMode, err := export.ParseMode(mode)
	if err != nil {
		return batch.BatchSummary{}, nil, err
	}

	paths, err := validation.CollectDocuments(inputs, cfg.Ingest.AllowedExtensions)
	if err != nil {
		return batch.BatchSummary{}, nil, err
	}
	docs := make([]models.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := models.NewDocumentFromFile(path)
		if err != nil {
			return batch.BatchSummary{}, nil, err
		}
		docs = append(docs, doc)
	}

	if err := c.StartRuleWatcher(ctx); err != nil {
		logger.WithError(err).Warn("Rule watcher not started")
	}

	orchestrator := c.GetOrchestrator()
	orchestrator.SetProgressFunc(func(p batch.DocumentProgress) {
		done := p.Counters.Processed + p.Counters.Failed + p.Counters.Rejected
		logger.Info("Document finished",
			logging.Field{Key: logging.FieldDocument, Value: p.Document},
			logging.Field{Key: logging.FieldStatus, Value: string(p.Status)},
			logging.Field{Key: "progress", Value: fmt.Sprintf("%d/%d", done, p.Counters.Uploaded)})
	})

	state, runErr := orchestrator.RunBatch(ctx, docs)
	if state == nil {
		return batch.BatchSummary{}, nil, runErr
	}

	summary := batch.Summarize(state)
	printSummary(out, state, summary)

	if errors.Is(runErr, parsererror.ErrNoValidDocuments) {
		return summary, nil, runErr
	}

	files, err := c.GetExporter().Export(state, exportMode, outDir)
	if err != nil {
		return summary, files, fmt.Errorf("export failed: %w", err)
	}
	if format := cfg.Export.ReportFormat; format != "" {
		path, err := c.GetReportGenerator().WriteFile(report.NewBatchReport(state, summary), format, outDir)
		if err != nil {
			return summary, files, fmt.Errorf("report failed: %w", err)
		}
		files = append(files, path)
	}
	for _, f := range files {
		logger.Info("Report written", logging.Field{Key: logging.FieldOutputFile, Value: f})
	}
	return summary, files, runErr
}

func printSummary(out io.Writer, state *models.BatchState, summary batch.BatchSummary) {
	_, _ = fmt.Fprintln(out, summary.String())
	for _, rec := range state.Records {
		line := fmt.Sprintf("  %-40s %s", rec.Key, rec.Status)
		if rec.Stats != nil && rec.Stats.Status == models.StatsSuccess {
			line += fmt.Sprintf(" (%d transactions, %d uncategorized, closing %s)",
				rec.Stats.TotalTransactions, rec.Stats.Uncategorized,
				currencyutils.FormatAmount(rec.Stats.ClosingBalance, rec.Stats.Currency))
		} else if rec.Error != "" {
			line += ": " + rec.Error
		}
		_, _ = fmt.Fprintln(out, line)
	}
	if period := summary.Coverage.String(); period != "" {
		_, _ = fmt.Fprintf(out, "  coverage: %s\n", period)
	}
}
