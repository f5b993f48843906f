package ingest_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/statement-ledger/cmd/ingest"
	"fjacquet/statement-ledger/internal/config"
	"fjacquet/statement-ledger/internal/container"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statement = `MCB BANK STATEMENT
Account Number: 000123456789   Currency: MUR
Statement period from 01/03/2022 to 31/03/2022
Opening balance: MUR 10,000.00
01/03/2022 01/03/2022 -250.00 9,750.00 Banking Subs Fee
05/03/2022 05/03/2022 1,000.00 10,750.00 Salary March
Closing balance: MUR 10,750.00`

const recipe = `Grandma's chocolate cake. Mix flour, sugar, butter and eggs in a large bowl,
then bake for forty minutes until golden. Serve warm with cream.`

func newContainer(t *testing.T) *container.Container {
	t.Helper()
	cfg := &config.Config{
		Log: config.LogConfig{Level: "info", Format: "text"},
		Ingest: config.IngestConfig{
			DefaultCurrency:     "MUR",
			MinTextLength:       50,
			ValidationPageLimit: 3,
			AllowedExtensions:   []string{".pdf", ".txt"},
		},
		Validation: config.ValidationConfig{
			HighKeywords: 3, HighDates: 3, HighCurrency: 1,
			MediumKeywords: 2, MediumDates: 2,
		},
		Categorization: config.CategorizationConfig{FuzzyThreshold: 0.6},
		Export:         config.ExportConfig{Mode: "separate", Delimiter: ","},
	}
	c, err := container.NewContainer(cfg, container.WithLogger(logging.NewMockLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func writeInputs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
	}
	return dir
}

func TestIngestCommand_Metadata(t *testing.T) {
	assert.Equal(t, "ingest", ingest.Cmd.Use)
	assert.Contains(t, ingest.Cmd.Long, "Example")
	assert.NotNil(t, ingest.Cmd.Flags().Lookup("mode"))
}

func TestRun_SeparateMode(t *testing.T) {
	in := writeInputs(t, map[string]string{
		"march.txt":  statement,
		"recipe.txt": recipe,
		"notes.md":   "ignored",
	})
	out := t.TempDir()
	var buf bytes.Buffer

	summary, files, err := ingest.Run(context.Background(), newContainer(t), []string{in}, out, "", &buf)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Documents)
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 1, summary.Rejected)
	assert.Equal(t, 2, summary.TotalTransactions)
	assert.Equal(t, []string{
		filepath.Join(out, "march_summary.csv"),
		filepath.Join(out, "march_transactions.csv"),
	}, files)
	for _, f := range files {
		assert.FileExists(t, f)
	}
	assert.Contains(t, buf.String(), "1/2 documents completed")
	assert.Contains(t, buf.String(), "closing MUR 10750.00)")
	assert.Contains(t, buf.String(), "recipe.txt")
	assert.Contains(t, buf.String(), "coverage: 01/03/2022 to 31/03/2022")
}

func TestRun_CombinedMode(t *testing.T) {
	in := writeInputs(t, map[string]string{"a.txt": statement, "b.txt": statement})
	out := t.TempDir()

	summary, files, err := ingest.Run(context.Background(), newContainer(t), []string{in}, out, "combined", &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Completed)
	assert.Equal(t, []string{
		filepath.Join(out, "batch_summary.csv"),
		filepath.Join(out, "batch_transactions.csv"),
	}, files)
}

func TestRun_SameNameInDifferentDirectories(t *testing.T) {
	a := writeInputs(t, map[string]string{"jan.txt": statement})
	b := writeInputs(t, map[string]string{"jan.txt": statement})
	out := t.TempDir()

	summary, files, err := ingest.Run(context.Background(), newContainer(t), []string{a, b}, out, "separate", &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Completed)
	assert.Equal(t, 4, summary.TotalTransactions)
	assert.Equal(t, []string{
		filepath.Join(out, "jan_summary.csv"),
		filepath.Join(out, "jan_transactions.csv"),
		filepath.Join(out, "jan_2_summary.csv"),
		filepath.Join(out, "jan_2_transactions.csv"),
	}, files)
}

func TestRun_WritesBatchReport(t *testing.T) {
	in := writeInputs(t, map[string]string{"march.txt": statement})
	out := t.TempDir()
	c := newContainer(t)
	c.GetConfig().Export.ReportFormat = "json"

	_, files, err := ingest.Run(context.Background(), c, []string{in}, out, "combined", &bytes.Buffer{})

	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, filepath.Join(out, "batch_report.json"), files[2])
	assert.FileExists(t, files[2])
}

func TestRun_NoValidDocuments(t *testing.T) {
	in := writeInputs(t, map[string]string{"recipe.txt": recipe})
	out := t.TempDir()

	_, files, err := ingest.Run(context.Background(), newContainer(t), []string{in}, out, "", &bytes.Buffer{})

	assert.ErrorIs(t, err, parsererror.ErrNoValidDocuments)
	assert.Empty(t, files)
}

func TestRun_InvalidInputs(t *testing.T) {
	c := newContainer(t)

	_, _, err := ingest.Run(context.Background(), c, []string{t.TempDir()}, t.TempDir(), "", &bytes.Buffer{})
	assert.ErrorContains(t, err, "no supported documents")

	in := writeInputs(t, map[string]string{"a.txt": statement})
	_, _, err = ingest.Run(context.Background(), c, []string{in}, t.TempDir(), "zip", &bytes.Buffer{})
	assert.ErrorContains(t, err, "unsupported export mode")
}
