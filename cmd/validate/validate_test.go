package validate_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/statement-ledger/cmd/validate"
	"fjacquet/statement-ledger/internal/config"
	"fjacquet/statement-ledger/internal/container"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"

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

func TestValidateCommand_Metadata(t *testing.T) {
	assert.Equal(t, "validate", validate.Cmd.Use)
	assert.Contains(t, validate.Cmd.Short, "bank statements")
	assert.NotNil(t, validate.Cmd.RunE)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "march.txt"), []byte(statement), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "recipe.txt"), []byte(recipe), 0600))
	var out bytes.Buffer

	results, err := validate.Run(context.Background(), newContainer(t), []string{dir}, &out)

	require.NoError(t, err)
	require.Len(t, results, 2)

	march := results[0]
	assert.Equal(t, "march.txt", march.Document)
	assert.True(t, march.IsValid)
	assert.Equal(t, models.KindValidStatement, march.Kind)
	require.NotNil(t, march.Metadata)
	assert.Equal(t, "000123456789", march.Metadata.AccountNumber)

	rec := results[1]
	assert.Equal(t, "recipe.txt", rec.Document)
	assert.False(t, rec.IsValid)
	assert.Equal(t, models.KindWrongDocument, rec.Kind)
	assert.Nil(t, rec.Metadata)

	text := out.String()
	assert.Contains(t, text, "march.txt: valid_statement (valid=true")
	assert.Contains(t, text, "account: 000123456789")
	assert.Contains(t, text, "balance: MUR 10000.00 to MUR 10750.00")
	assert.Contains(t, text, "recipe.txt: wrong_document (valid=false, confidence=none)")
}

func TestRun_NoDocuments(t *testing.T) {
	_, err := validate.Run(context.Background(), newContainer(t), []string{t.TempDir()}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "no supported documents")
}
