// Package validate checks whether documents look like bank statements without processing them
package validate

import (
	"context"
	"fmt"
	"io"

	"fjacquet/statement-ledger/cmd/root"
	"fjacquet/statement-ledger/internal/container"
	"fjacquet/statement-ledger/internal/currencyutils"
	"fjacquet/statement-ledger/internal/models"
	"fjacquet/statement-ledger/internal/parsererror"
	"fjacquet/statement-ledger/internal/validation"

	"github.com/spf13/cobra"
)

// Cmd represents the validate command
var Cmd = &cobra.Command{
	Use:   "validate",
	Short: "Check whether documents are bank statements",
	Long: `Validate runs the statement heuristics over the first pages of each input
document and prints the verdict, confidence and the counters it was based on,
together with any statement metadata found.

Example:
  statement-ledger validate -i march.pdf -i recipe.txt`,
	RunE: validateFunc,
}

func validateFunc(cmd *cobra.Command, args []string) error {
	inputs := append(append([]string{}, root.SharedFlags.Inputs...), args...)
	if len(inputs) == 0 {
		return fmt.Errorf("at least one input (-i) must be specified")
	}
	c := root.GetContainer()
	if c == nil {
		return fmt.Errorf("container not initialized")
	}
	_, err := Run(cmd.Context(), c, inputs, cmd.OutOrStdout())
	return err
}

// Run validates every supported document under inputs and prints one report
// per document. Extraction failures are reported per document and do not stop
// the others.
func Run(ctx context.Context, c *container.Container, inputs []string, out io.Writer) ([]models.ValidationResult, error) {
	cfg := c.GetConfig()
	paths, err := validation.CollectDocuments(inputs, cfg.Ingest.AllowedExtensions)
	if err != nil {
		return nil, err
	}

	results := make([]models.ValidationResult, 0, len(paths))
	for _, path := range paths {
		doc, err := models.NewDocumentFromFile(path)
		if err != nil {
			return results, err
		}
		raw, err := c.GetExtractor().Extract(ctx, doc, cfg.Ingest.ValidationPageLimit)
		if err != nil {
			extractErr := &parsererror.ExtractionError{Document: doc.Name, Err: err}
			_, _ = fmt.Fprintf(out, "%s: %v\n", doc.Name, extractErr)
			continue
		}
		result := c.GetValidator().ValidateRaw(raw)
		printResult(out, result)
		results = append(results, result)
	}
	return results, nil
}

func printResult(out io.Writer, r models.ValidationResult) {
	_, _ = fmt.Fprintf(out, "%s: %s (valid=%t, confidence=%s)\n", r.Document, r.Kind, r.IsValid, r.Confidence)
	_, _ = fmt.Fprintf(out, "  %s\n", r.Message)
	if r.Warning != "" {
		_, _ = fmt.Fprintf(out, "  warning: %s\n", r.Warning)
	}
	if r.Suggestion != "" {
		_, _ = fmt.Fprintf(out, "  suggestion: %s\n", r.Suggestion)
	}
	_, _ = fmt.Fprintf(out, "  keywords=%d dates=%d currency=%d density=%.2f\n",
		r.Counters.BankingKeywords, r.Counters.Dates, r.Counters.Currency, r.Counters.TextDensity)

	m := r.Metadata
	if m == nil {
		return
	}
	if period := m.PeriodText(); period != "" {
		_, _ = fmt.Fprintf(out, "  period: %s\n", period)
	}
	if m.AccountNumber != "" {
		_, _ = fmt.Fprintf(out, "  account: %s\n", m.AccountNumber)
	}
	if m.IBAN != "" {
		_, _ = fmt.Fprintf(out, "  iban: %s\n", m.IBAN)
	}
	_, _ = fmt.Fprintf(out, "  balance: %s to %s\n",
		currencyutils.FormatAmount(m.OpeningBalance, m.Currency), currencyutils.FormatAmount(m.ClosingBalance, m.Currency))
}
