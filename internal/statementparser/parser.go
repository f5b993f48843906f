// Package statementparser scans raw statement text for transaction records.
//
// A record is a run of transaction date, value date, signed amount and balance
// followed by a free-text description that extends to the next date token or
// the end of the text. The scan is global and non-overlapping.
package statementparser

import (
	"regexp"
	"strings"

	"fjacquet/statement-ledger/internal/currencyutils"
	"fjacquet/statement-ledger/internal/dateutils"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// MinDescriptionLength is the shortest normalized description that is kept.
const MinDescriptionLength = 3

// DefaultNoisePhrases mark table headers and page furniture captured as records.
var DefaultNoisePhrases = []string{
	"trans date",
	"statement page",
	"account number",
	"balance forward",
}

var recordHeader = regexp.MustCompile(
	`(` + dateutils.DatePattern + `)\s+(` + dateutils.DatePattern + `)\s+(-?[\d,]+\.?\d*)\s+([\d,]+\.?\d*)\s*`,
)

// Result carries the parsed transactions plus scan diagnostics.
type Result struct {
	Transactions []models.Transaction
	Matched      int
	Rejected     int
	Duplicates   int
}

// Parser turns raw statement text into deduplicated Transactions.
type Parser struct {
	logger       logging.Logger
	noisePhrases []string
}

// NewParser creates a parser using DefaultNoisePhrases.
func NewParser(logger logging.Logger) *Parser {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Parser{logger: logger, noisePhrases: DefaultNoisePhrases}
}

// SetNoisePhrases replaces the structural phrases used to reject header matches.
func (p *Parser) SetNoisePhrases(phrases []string) {
	lowered := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		if phrase = strings.ToLower(strings.TrimSpace(phrase)); phrase != "" {
			lowered = append(lowered, phrase)
		}
	}
	p.noisePhrases = lowered
}

// Parse returns the transactions found in rawText, stamped with meta.
// Finding no transaction is not an error.
func (p *Parser) Parse(rawText, fileName string, meta *models.StatementMetadata) []models.Transaction {
	return p.ParseWithStats(rawText, fileName, meta).Transactions
}

// ParseWithStats is Parse with match, rejection and duplicate counts.
func (p *Parser) ParseWithStats(rawText, fileName string, meta *models.StatementMetadata) Result {
	var result Result
	seen := make(map[string]bool)

	for _, rec := range scanRecords(rawText) {
		result.Matched++

		tx, reason := p.buildTransaction(rec, fileName)
		if reason != "" {
			result.Rejected++
			p.logger.WithFields(
				logging.Field{Key: logging.FieldDocument, Value: fileName},
				logging.Field{Key: logging.FieldReason, Value: reason},
			).Debug("Skipping transaction candidate")
			continue
		}

		key := tx.DedupKey()
		if seen[key] {
			result.Duplicates++
			continue
		}
		seen[key] = true

		tx.StampMetadata(meta)
		result.Transactions = append(result.Transactions, tx)
	}

	fields := []logging.Field{
		{Key: logging.FieldDocument, Value: fileName},
		{Key: logging.FieldCount, Value: len(result.Transactions)},
		{Key: "rejected", Value: result.Rejected},
		{Key: "duplicates", Value: result.Duplicates},
	}
	if len(result.Transactions) == 0 {
		p.logger.WithFields(fields...).Warn("No transactions found in document")
	} else {
		p.logger.WithFields(fields...).Debug("Parsed transactions")
	}
	return result
}

// record is one raw five-field match.
type record struct {
	transDate   string
	valueDate   string
	amount      string
	balance     string
	description string
}

func scanRecords(text string) []record {
	var records []record
	pos := 0
	for pos < len(text) {
		loc := recordHeader.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		headerEnd := pos + loc[1]
		descEnd := dateutils.NextDateIndex(text, headerEnd)
		if descEnd < 0 {
			descEnd = len(text)
		}
		group := func(i int) string { return text[pos+loc[2*i] : pos+loc[2*i+1]] }
		records = append(records, record{
			transDate:   group(1),
			valueDate:   group(2),
			amount:      group(3),
			balance:     group(4),
			description: text[headerEnd:descEnd],
		})
		pos = descEnd
	}
	return records
}

// buildTransaction converts a raw record, returning a non-empty reason when it must be rejected.
func (p *Parser) buildTransaction(rec record, fileName string) (models.Transaction, string) {
	description := NormalizeDescription(rec.description)
	lower := strings.ToLower(description)
	for _, phrase := range p.noisePhrases {
		if strings.Contains(lower, phrase) {
			return models.Transaction{}, "structural phrase: " + phrase
		}
	}

	amount, err := currencyutils.ParseAmount(rec.amount)
	if err != nil {
		return models.Transaction{}, "unparseable amount: " + rec.amount
	}
	if len(description) < MinDescriptionLength {
		return models.Transaction{}, "description too short"
	}

	date, err := dateutils.ParseStatementDate(rec.transDate)
	if err != nil {
		return models.Transaction{}, "invalid transaction date: " + rec.transDate
	}
	valueDate, err := dateutils.ParseStatementDate(rec.valueDate)
	if err != nil {
		valueDate = date
	}

	balance, err := currencyutils.ParseAmount(rec.balance)
	if err != nil {
		p.logger.WithFields(
			logging.Field{Key: logging.FieldDocument, Value: fileName},
			logging.Field{Key: "balance", Value: rec.balance},
		).Debug("Unparseable balance, using zero")
		balance = decimal.Zero
	}

	return models.Transaction{
		SourceDocument: fileName,
		Date:           date,
		ValueDate:      valueDate,
		Description:    description,
		Amount:         amount.Abs(),
		IsDebit:        amount.IsNegative() || currencyutils.HasMinusSign(rec.amount),
		Balance:        balance.Abs(),
	}, ""
}

// NormalizeDescription collapses whitespace and newlines to single spaces and trims.
func NormalizeDescription(description string) string {
	return strings.Join(strings.Fields(description), " ")
}
