package report

import (
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/statement-ledger/internal/batch"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() *models.BatchState {
	now := time.Date(2022, 4, 1, 9, 0, 0, 0, time.UTC)
	state := models.NewBatchState("batch-1", []models.Document{
		models.NewTextDocument("march.txt", ""),
		models.NewTextDocument("recipe.txt", ""),
	}, now)

	march := state.Records[0]
	march.Status = models.StatusCompleted
	march.Validation = &models.ValidationResult{Document: "march.txt", IsValid: true, Kind: models.KindValidStatement, Confidence: models.ConfidenceHigh}
	march.Metadata = &models.StatementMetadata{
		FileName:      "march.txt",
		AccountNumber: "000123456789",
		Currency:      "MUR",
		Period: &models.StatementPeriod{
			Start: time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2022, 3, 31, 0, 0, 0, 0, time.UTC),
			Text:  "01/03/2022 to 31/03/2022",
		},
	}
	march.Stats = &models.DocumentProcessingStats{Document: "march.txt", TotalTransactions: 2, Categorized: 1, Uncategorized: 1, Status: models.StatsSuccess}

	recipe := state.Records[1]
	recipe.Status = models.StatusValidationFailed
	recipe.Validation = &models.ValidationResult{Document: "recipe.txt", Kind: models.KindWrongDocument, Confidence: models.ConfidenceNone, Message: "not a statement", Suggestion: "upload a statement"}

	state.AddTransaction(models.Transaction{SourceDocument: "march.txt", Description: "Banking Subs Fee", Amount: decimal.NewFromInt(250), IsDebit: true}.
		WithCategory(models.CategoryAssignment{Category: models.CategoryBankCharges, Keyword: "Banking Subs Fee", Confidence: models.ConfidenceHigh}))
	state.AddTransaction(models.Transaction{SourceDocument: "march.txt", Description: "Mystery", Amount: decimal.NewFromInt(40)}.
		WithCategory(models.Uncategorized()))
	state.FinishedAt = now.Add(time.Second)
	return state
}

func TestNewBatchReport(t *testing.T) {
	state := sampleState()
	r := NewBatchReport(state, batch.Summarize(state))

	assert.Equal(t, "batch-1", r.BatchID)
	assert.Equal(t, 0.5, r.SuccessRate)
	assert.Equal(t, "01/03/2022 to 31/03/2022", r.Coverage)
	assert.Equal(t, "250.00", r.TotalDebits)
	assert.Equal(t, "40.00", r.TotalCredits)
	assert.Equal(t, 1, r.Uncategorized)

	require.Len(t, r.Documents, 2)
	assert.Equal(t, DocumentEntry{
		Name:              "march.txt",
		Status:            models.StatusCompleted,
		Kind:              models.KindValidStatement,
		Confidence:        models.ConfidenceHigh,
		Period:            "01/03/2022 to 31/03/2022",
		AccountNumber:     "000123456789",
		Currency:          "MUR",
		TotalTransactions: 2,
		Uncategorized:     1,
	}, r.Documents[0])
	assert.Equal(t, models.KindWrongDocument, r.Documents[1].Kind)
	assert.Equal(t, "upload a statement", r.Documents[1].Suggestion)

	require.Len(t, r.Categories, 2)
	assert.Equal(t, CategoryEntry{Category: models.CategoryBankCharges, Count: 1, Debits: "250.00", Credits: "0.00"}, r.Categories[0])
	assert.Equal(t, models.CategoryUncategorized, r.Categories[1].Category)
}

func TestGenerator_Generate_JSON(t *testing.T) {
	state := sampleState()
	report := NewBatchReport(state, batch.Summarize(state))
	generator := NewGenerator(logging.NewMockLogger())

	data, err := generator.Generate(report, FormatJSON)
	require.NoError(t, err)

	var decoded BatchReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.BatchID, decoded.BatchID)
	assert.Equal(t, report.Documents, decoded.Documents)
	assert.Equal(t, report.Categories, decoded.Categories)
}

func TestGenerator_Generate_XML(t *testing.T) {
	state := sampleState()
	report := NewBatchReport(state, batch.Summarize(state))
	generator := NewGenerator(logging.NewMockLogger())

	data, err := generator.Generate(report, FormatXML)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), xml.Header))
	assert.Contains(t, string(data), `<batch_report id="batch-1">`)
	assert.Contains(t, string(data), `<document name="recipe.txt" status="validation_failed">`)

	var decoded BatchReport
	require.NoError(t, xml.Unmarshal(data, &decoded))
	assert.Equal(t, report.Documents, decoded.Documents)
}

func TestGenerator_Generate_UnsupportedFormat(t *testing.T) {
	generator := NewGenerator(nil)
	_, err := generator.Generate(&BatchReport{}, "yaml")
	assert.EqualError(t, err, "unsupported report format: yaml")
}

func TestGenerator_WriteFile(t *testing.T) {
	state := sampleState()
	out := filepath.Join(t.TempDir(), "reports")

	path, err := NewGenerator(nil).WriteFile(NewBatchReport(state, batch.Summarize(state)), FormatJSON, out)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "batch_report.json"), path)
	data, err := os.ReadFile(path) // #nosec G304 -- test temp file
	require.NoError(t, err)
	assert.Contains(t, string(data), `"batch_id": "batch-1"`)
}
