// Package dateutils provides the statement date operations used throughout the application.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayoutStatement is the DD/MM/YYYY layout statements print dates in.
const DateLayoutStatement = "02/01/2006"

// DatePattern matches a DD/MM/YYYY date token.
const DatePattern = `\d{2}/\d{2}/\d{4}`

var dateRegex = regexp.MustCompile(DatePattern)

// ParseStatementDate parses a DD/MM/YYYY date. Surrounding whitespace is ignored.
func ParseStatementDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateLayoutStatement, strings.TrimSpace(dateStr))
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
	}
	return t, nil
}

// FormatStatementDate formats a date as DD/MM/YYYY, or returns an empty string for the zero time.
func FormatStatementDate(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return date.Format(DateLayoutStatement)
}

// FormatPeriod renders a statement period as "DD/MM/YYYY to DD/MM/YYYY".
func FormatPeriod(start, end time.Time) string {
	return FormatStatementDate(start) + " to " + FormatStatementDate(end)
}

// CountDates returns the number of DD/MM/YYYY shaped substrings in text.
func CountDates(text string) int {
	return len(dateRegex.FindAllStringIndex(text, -1))
}

// NextDateIndex returns the offset of the first date token at or after from, or -1.
func NextDateIndex(text string, from int) int {
	if from >= len(text) {
		return -1
	}
	loc := dateRegex.FindStringIndex(text[from:])
	if loc == nil {
		return -1
	}
	return from + loc[0]
}

// CompareDates orders two dates by calendar day, ignoring time of day and
// location. It returns -1, 0 or 1.
func CompareDates(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC).Compare(time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC))
}
