package metadata

import (
	"regexp"

	"fjacquet/statement-ledger/internal/dateutils"
)

const (
	datePart   = `(` + dateutils.DatePattern + `)`
	amountPart = `\s*:?\s*(?:[A-Za-z]{3}\.?\s*|Rs\.?\s*|[$€£]\s*)?(-?[\d,]+(?:\.\d+)?)`
)

// Candidate patterns per field, in priority order. First match wins.
var (
	periodPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)statement\s+date\s*:?\s*from\s+` + datePart + `\s+to\s+` + datePart),
		regexp.MustCompile(`(?i)from\s+` + datePart + `\s+to\s+` + datePart),
		regexp.MustCompile(`(?i)period\s*:?\s*` + datePart + `\s*(?:-|–|—|to)\s*` + datePart),
	}

	accountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)account\s+(?:number|no\.?)\s*:?\s*(\d[\d-]{3,}\d)`),
		regexp.MustCompile(`(?i)account\s*:?\s*(\d{10,})`),
		regexp.MustCompile(`(?i)a/c\s*(?:no\.?)?\s*:?\s*(\d{10,})`),
	}

	ibanPattern = regexp.MustCompile(`(?i)\b(MU\d{2}[A-Z0-9]{10,30})\b`)

	currencyPattern    = regexp.MustCompile(`(?i)currency\s*:?\s*([A-Za-z]{3})\b`)
	currencyMURPattern = regexp.MustCompile(`(?i)\bmur\b`)

	openingBalancePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:opening|beginning)\s+balance` + amountPart),
		regexp.MustCompile(`(?i)balance\s+brought\s+forward` + amountPart),
		regexp.MustCompile(`(?i)(?:previous|last)\s+balance` + amountPart),
		regexp.MustCompile(`(?i)\bb/f\b` + amountPart),
	}

	closingBalancePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:closing|ending|final)\s+balance` + amountPart),
		regexp.MustCompile(`(?i)balance\s+carried\s+forward` + amountPart),
		regexp.MustCompile(`(?i)(?:current|new)\s+balance` + amountPart),
		regexp.MustCompile(`(?i)\bc/f\b` + amountPart),
	}
)
