package utils

import (
	"strings"

	"github.com/finkit/currency_rates_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// separators returns the thousands and decimal separators for a display format.
func separators(format domain.DisplayFormat) (string, string) {
	switch format {
	case domain.FormatDotComma:
		return ".", ","
	case domain.FormatSpaceComma:
		return " ", ","
	case domain.FormatSpaceDot:
		return " ", "."
	default: // domain.FormatCommaDot
		return ",", "."
	}
}

// FormatAmount renders an amount per the currency's decimal places and
// display format.
// Example: 1234567.891 with 2 places and COMMA_DOT returns "1,234,567.89"
// Example: 1234567.891 with 2 places and SPACE_COMMA returns "1 234 567,89"
func FormatAmount(amount decimal.Decimal, currency domain.Currency) string {
	thousands, point := separators(currency.DisplayFormat)

	fixed := amount.StringFixed(int32(currency.DecimalPlaces))

	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart := fixed
	fracPart := ""
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		intPart, fracPart = fixed[:i], fixed[i+1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(thousands)
		}
		b.WriteRune(d)
	}
	if fracPart != "" {
		b.WriteString(point)
		b.WriteString(fracPart)
	}
	return b.String()
}

// FormatWithPrecision rounds an amount to the given number of decimal places
// without any grouping.
func FormatWithPrecision(amount decimal.Decimal, decimalPlaces int) string {
	return amount.Round(int32(decimalPlaces)).String()
}
