// Package currencyutils provides common currency and decimal operations used throughout the application.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountPattern matches a decimal number with optional sign and comma thousands separators.
const AmountPattern = `-?[\d,]+\.?\d*`

var currencyCodeRegex = regexp.MustCompile(`^[A-Za-z]{3}$`)

// ParseAmount parses an amount token after stripping comma thousands separators.
// "10,500.00" parses as 10500.00 and "-250.00" as -250.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	cleaned := StandardizeAmount(amountStr)
	if cleaned == "" || cleaned == "-" {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': empty", amountStr)
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// StandardizeAmount removes whitespace and comma thousands separators.
func StandardizeAmount(amountStr string) string {
	amountStr = strings.TrimSpace(amountStr)
	amountStr = strings.ReplaceAll(amountStr, ",", "")
	return strings.ReplaceAll(amountStr, " ", "")
}

// HasMinusSign reports whether the raw amount token carries a literal minus.
func HasMinusSign(amountStr string) bool {
	return strings.Contains(amountStr, "-")
}

// NormalizeCurrency upper-cases a 3-letter currency code, returning "" when it is not one.
func NormalizeCurrency(code string) string {
	code = strings.TrimSpace(code)
	if !currencyCodeRegex.MatchString(code) {
		return ""
	}
	return strings.ToUpper(code)
}

// FormatAmount renders amount with two decimals behind its currency symbol,
// or behind the upper-cased code when no symbol is known: "€1234.56",
// "MUR 1234.56". An empty currency yields the bare number.
func FormatAmount(amount decimal.Decimal, currency string) string {
	value := amount.StringFixed(2)
	code := strings.ToUpper(strings.TrimSpace(currency))
	switch code {
	case "":
		return value
	case "EUR":
		return "€" + value
	case "USD":
		return "$" + value
	case "GBP":
		return "£" + value
	}
	return code + " " + value
}
