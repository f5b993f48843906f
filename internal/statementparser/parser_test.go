package statementparser

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cryptoRandIntn returns a random int in [0, n) using crypto/rand
func cryptoRandIntn(n int) int {
	if n <= 0 {
		return 0
	}
	result, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(result.Int64())
}

func testMetadata() *models.StatementMetadata {
	return &models.StatementMetadata{
		FileName:       "march.pdf",
		Period:         &models.StatementPeriod{Text: "01/03/2022 to 31/03/2022"},
		AccountNumber:  "000123456789",
		IBAN:           "MU17BOMM0101101030300200000MUR",
		Currency:       "MUR",
		OpeningBalance: decimal.RequireFromString("10000"),
		ClosingBalance: decimal.RequireFromString("9750"),
		ExtractedAt:    time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestParse_SingleRecord(t *testing.T) {
	p := NewParser(logging.NewMockLogger())
	meta := testMetadata()

	txs := p.Parse("01/03/2022 01/03/2022 -250.00 9,750.00 Banking Subs Fee", "march.pdf", meta)

	require.Len(t, txs, 1)
	tx := txs[0]
	assert.Equal(t, time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Equal(t, tx.Date, tx.ValueDate)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("250.00")))
	assert.True(t, tx.IsDebit)
	assert.True(t, tx.Balance.Equal(decimal.RequireFromString("9750.00")))
	assert.Equal(t, "Banking Subs Fee", tx.Description)
	assert.Equal(t, "march.pdf", tx.SourceDocument)

	assert.Same(t, meta, tx.Metadata)
	assert.Equal(t, "MUR", tx.Currency)
	assert.Equal(t, "000123456789", tx.AccountNumber)
	assert.Equal(t, "MU17BOMM0101101030300200000MUR", tx.IBAN)
	assert.Equal(t, "01/03/2022 to 31/03/2022", tx.Period)
	assert.True(t, tx.OpeningBalance.Equal(meta.OpeningBalance))
	assert.Nil(t, tx.Category)
}

func TestParse_MultipleRecordsWithEmbeddedNumbers(t *testing.T) {
	text := `Trans Date Value Date Amount Balance Description
01/03/2022 02/03/2022 1,500.00 11,500.00 Salary March ref 4411
  employer payroll
05/03/2022 05/03/2022 -75.50 11,424.50 JuicePro Transfer to 5123 4567
07/03/2022 07/03/2022 -1,200.00 10,224.50 CEB electricity bill`

	txs := NewParser(logging.NewMockLogger()).Parse(text, "doc.txt", testMetadata())
	require.Len(t, txs, 3)

	assert.Equal(t, "Salary March ref 4411 employer payroll", txs[0].Description)
	assert.False(t, txs[0].IsDebit)
	assert.Equal(t, time.Date(2022, 3, 2, 0, 0, 0, 0, time.UTC), txs[0].ValueDate)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("1500")))

	assert.Equal(t, "JuicePro Transfer to 5123 4567", txs[1].Description)
	assert.True(t, txs[1].IsDebit)
	assert.True(t, txs[1].Amount.Equal(decimal.RequireFromString("75.5")))

	assert.Equal(t, "CEB electricity bill", txs[2].Description)
	assert.True(t, txs[2].Amount.Equal(decimal.RequireFromString("1200")))
	assert.True(t, txs[2].Balance.Equal(decimal.RequireFromString("10224.5")))
}

func TestParse_RejectionFilters(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"header row", "01/03/2022 01/03/2022 0.00 0.00 Trans Date Value Date"},
		{"page furniture", "01/03/2022 01/03/2022 1.00 1.00 Statement Page 2 of 3"},
		{"account number line", "01/03/2022 01/03/2022 1.00 1.00 Account Number 12345"},
		{"balance forward", "01/03/2022 01/03/2022 0.00 500.00 BALANCE FORWARD"},
		{"unparseable amount", "01/03/2022 01/03/2022 ,,, 500.00 Something real"},
		{"short description", "01/03/2022 01/03/2022 5.00 500.00 ab"},
		{"empty description", "01/03/2022 01/03/2022 5.00 500.00 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(logging.NewMockLogger())
			result := p.ParseWithStats(tt.text, "doc.txt", testMetadata())
			assert.Empty(t, result.Transactions)
			assert.Equal(t, 1, result.Matched)
			assert.Equal(t, 1, result.Rejected)
		})
	}
}

func TestParse_ZeroTransactionsIsNotAnError(t *testing.T) {
	logger := logging.NewMockLogger()
	p := NewParser(logger)

	txs := p.Parse("Cover page\nNothing to see", "cover.pdf", testMetadata())
	assert.Empty(t, txs)
	assert.True(t, logger.HasEntry("WARN", "No transactions found in document"))
}

func TestParse_Deduplication(t *testing.T) {
	line := "01/03/2022 01/03/2022 -250.00 9,750.00 Banking Subs Fee\n"
	text := line + line + "01/03/2022 01/03/2022 -250.00 9,500.00 Banking  Subs\nFee\n"

	result := NewParser(logging.NewMockLogger()).ParseWithStats(text, "doc.txt", testMetadata())
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, 2, result.Duplicates)

	// One character of difference is a different transaction.
	text = line + "01/03/2022 01/03/2022 -250.00 9,750.00 Banking Subs Fea\n"
	assert.Len(t, NewParser(nil).Parse(text, "doc.txt", nil), 2)
}

func TestParse_MinusSignMarksDebit(t *testing.T) {
	txs := NewParser(nil).Parse("01/03/2022 01/03/2022 -0.00 100.00 Zero fee reversal", "doc.txt", nil)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].IsDebit)
	assert.True(t, txs[0].Amount.IsZero())
}

func TestParse_InvalidValueDateFallsBack(t *testing.T) {
	txs := NewParser(nil).Parse("01/03/2022 99/99/2022 10.00 100.00 Card purchase", "doc.txt", nil)
	require.Len(t, txs, 1)
	assert.Equal(t, txs[0].Date, txs[0].ValueDate)
}

func TestParse_CustomNoisePhrases(t *testing.T) {
	p := NewParser(nil)
	p.SetNoisePhrases([]string{"  Subtotal ", ""})

	text := "01/03/2022 01/03/2022 10.00 100.00 Subtotal for page\n02/03/2022 02/03/2022 10.00 90.00 Balance forward item"
	txs := p.Parse(text, "doc.txt", nil)
	require.Len(t, txs, 1)
	assert.Equal(t, "Balance forward item", txs[0].Description)
}

// Property: every emitted transaction has a non-negative amount, IsDebit mirrors
// the generated sign and no dedup key repeats within a document.
func TestProperty_AmountInvariantAndUniqueness(t *testing.T) {
	p := NewParser(nil)

	for i := 0; i < 50; i++ {
		t.Run(fmt.Sprintf("iteration_%d", i), func(t *testing.T) {
			var sb strings.Builder
			expectedDebit := make(map[string]bool)
			n := cryptoRandIntn(20) + 1
			for j := 0; j < n; j++ {
				cents := cryptoRandIntn(1000000)
				negative := cryptoRandIntn(2) == 0
				amount := fmt.Sprintf("%d.%02d", cents/100, cents%100)
				if negative {
					amount = "-" + amount
				}
				desc := fmt.Sprintf("Payment item %d", cryptoRandIntn(5))
				// repeat some lines verbatim to exercise dedup
				repeats := 1 + cryptoRandIntn(2)
				for r := 0; r < repeats; r++ {
					fmt.Fprintf(&sb, "%02d/03/2022 %02d/03/2022 %s 1,000.00 %s\n", j%28+1, j%28+1, amount, desc)
				}
				expectedDebit[fmt.Sprintf("%02d|%s|%s", j%28+1, desc, strings.TrimPrefix(amount, "-"))] = negative
			}

			txs := p.Parse(sb.String(), "doc.txt", nil)
			keys := make(map[string]bool)
			for _, tx := range txs {
				assert.False(t, tx.Amount.IsNegative())
				assert.False(t, keys[tx.DedupKey()], "duplicate %s", tx.DedupKey())
				keys[tx.DedupKey()] = true

				k := fmt.Sprintf("%02d|%s|%s", tx.Date.Day(), tx.Description, tx.Amount.StringFixed(2))
				if debit, ok := expectedDebit[k]; ok {
					assert.Equal(t, debit, tx.IsDebit, k)
				}
			}
		})
	}
}

func TestNormalizeDescription(t *testing.T) {
	assert.Equal(t, "Banking Subs Fee", NormalizeDescription("  Banking\n  Subs\t Fee  "))
	assert.Equal(t, "", NormalizeDescription(" \n "))
}
