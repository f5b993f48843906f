package validator

import (
	"regexp"
	"strings"
	"unicode"

	"fjacquet/statement-ledger/internal/dateutils"
	"fjacquet/statement-ledger/internal/models"
)

// Thresholds drive the decision policy. The defaults are empirical calibration points.
type Thresholds struct {
	HighKeywords   int
	HighDates      int
	HighCurrency   int
	MediumKeywords int
	MediumDates    int
}

// DefaultThresholds returns the 3/3/1 high and 2/2 medium thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighKeywords:   3,
		HighDates:      3,
		HighCurrency:   1,
		MediumKeywords: 2,
		MediumDates:    2,
	}
}

// counter measures a text against a vocabulary.
type counter struct {
	keywords []string
	currency *regexp.Regexp
}

func newCounter(vocab models.Vocabulary) *counter {
	c := &counter{}
	seen := make(map[string]bool)
	for _, kw := range vocab.BankingKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		c.keywords = append(c.keywords, kw)
	}
	c.currency = currencyRegex(vocab.CurrencyIndicators)
	return c
}

// currencyRegex builds one alternation. Alphanumeric indicators are bounded by
// word boundaries, symbols are matched literally.
func currencyRegex(indicators []string) *regexp.Regexp {
	var parts []string
	for _, ind := range indicators {
		ind = strings.TrimSpace(ind)
		if ind == "" {
			continue
		}
		quoted := regexp.QuoteMeta(ind)
		if isWordToken(ind) {
			quoted = `\b` + quoted + `\b`
		}
		parts = append(parts, quoted)
	}
	if len(parts) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(parts, "|") + `)`)
}

func isWordToken(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func (c *counter) measure(text string, pageCount int) models.HeuristicCounters {
	lower := strings.ToLower(text)
	counters := models.HeuristicCounters{Dates: dateutils.CountDates(text)}
	for _, kw := range c.keywords {
		if strings.Contains(lower, kw) {
			counters.BankingKeywords++
		}
	}
	if c.currency != nil {
		counters.Currency = len(c.currency.FindAllStringIndex(text, -1))
	}
	if pageCount < 1 {
		pageCount = 1
	}
	counters.TextDensity = float64(len(text)) / float64(pageCount)
	return counters
}
