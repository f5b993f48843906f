// Package metadata extracts structured statement fields from raw document text.
package metadata

import (
	"regexp"
	"strings"
	"time"

	"fjacquet/statement-ledger/internal/currencyutils"
	"fjacquet/statement-ledger/internal/dateutils"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is applied when the text names no currency.
const DefaultCurrency = "MUR"

// Extractor pulls period, account, IBAN, currency and balances out of raw text.
// It never fails: fields that cannot be found keep their zero value.
type Extractor struct {
	logger          logging.Logger
	defaultCurrency string
	now             func() time.Time
}

// NewExtractor creates a metadata extractor. An empty defaultCurrency falls back to DefaultCurrency.
func NewExtractor(logger logging.Logger, defaultCurrency string) *Extractor {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	defaultCurrency = currencyutils.NormalizeCurrency(defaultCurrency)
	if defaultCurrency == "" {
		defaultCurrency = DefaultCurrency
	}
	return &Extractor{logger: logger, defaultCurrency: defaultCurrency, now: time.Now}
}

// SetClock overrides the extraction timestamp source.
func (e *Extractor) SetClock(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// Extract builds the StatementMetadata of one document.
func (e *Extractor) Extract(rawText, fileName string) *models.StatementMetadata {
	meta := &models.StatementMetadata{
		FileName:       fileName,
		Period:         findPeriod(rawText),
		AccountNumber:  firstSubmatch(accountPatterns, rawText),
		IBAN:           findIBAN(rawText),
		Currency:       DetectCurrency(rawText),
		OpeningBalance: findBalance(openingBalancePatterns, rawText),
		ClosingBalance: findBalance(closingBalancePatterns, rawText),
		ExtractedAt:    e.now(),
	}
	if meta.Currency == "" {
		meta.Currency = e.defaultCurrency
	}

	e.logger.WithFields(
		logging.Field{Key: logging.FieldDocument, Value: fileName},
		logging.Field{Key: "period", Value: meta.PeriodText()},
		logging.Field{Key: "account_number", Value: meta.AccountNumber},
		logging.Field{Key: "currency", Value: meta.Currency},
	).Debug("Extracted statement metadata")

	return meta
}

// DetectCurrency returns the explicit "currency:" code, else MUR when the token
// appears in the text, else an empty string.
func DetectCurrency(text string) string {
	if m := currencyPattern.FindStringSubmatch(text); m != nil {
		if code := currencyutils.NormalizeCurrency(m[1]); code != "" {
			return code
		}
	}
	if currencyMURPattern.MatchString(text) {
		return "MUR"
	}
	return ""
}

func findPeriod(text string) *models.StatementPeriod {
	for _, re := range periodPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		start, err := dateutils.ParseStatementDate(m[1])
		if err != nil {
			continue
		}
		end, err := dateutils.ParseStatementDate(m[2])
		if err != nil {
			continue
		}
		return &models.StatementPeriod{
			Start: start,
			End:   end,
			Text:  m[1] + " to " + m[2],
		}
	}
	return nil
}

func findIBAN(text string) string {
	m := ibanPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

func findBalance(patterns []*regexp.Regexp, text string) decimal.Decimal {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		amount, err := currencyutils.ParseAmount(m[1])
		if err != nil {
			continue
		}
		return amount
	}
	return decimal.Zero
}

func firstSubmatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}
