package domain

import "github.com/shopspring/decimal"

// DisplayFormat is a display-only tag describing how amounts in a currency
// should be grouped and punctuated. It never affects rate arithmetic.
type DisplayFormat string

const (
	FormatCommaDot   DisplayFormat = "COMMA_DOT"   // 1,234,567.89
	FormatDotComma   DisplayFormat = "DOT_COMMA"   // 1.234.567,89
	FormatSpaceComma DisplayFormat = "SPACE_COMMA" // 1 234 567,89
	FormatSpaceDot   DisplayFormat = "SPACE_DOT"   // 1 234 567.89
)

// ValidDisplayFormat reports whether f is one of the known format tags.
func ValidDisplayFormat(f DisplayFormat) bool {
	switch f {
	case FormatCommaDot, FormatDotComma, FormatSpaceComma, FormatSpaceDot:
		return true
	}
	return false
}

// Currency is one currency of a company. ConversionRate means
// "1 unit of the company's default currency equals ConversionRate units of
// this currency". Exactly one currency per company is the default, and the
// default's rate is always exactly 1.
type Currency struct {
	CurrencyID     string          `json:"currencyID"` // Primary Key (e.g., UUID)
	CompanyID      string          `json:"companyID"`  // FK -> companies.company_id
	Code           string          `json:"code"`       // ISO 4217-like, unique per company (e.g., "USD")
	ConversionRate decimal.Decimal `json:"conversionRate"`
	IsDefault      bool            `json:"isDefault"`
	DecimalPlaces  int             `json:"decimalPlaces"` // Display metadata only
	DisplayFormat  DisplayFormat   `json:"displayFormat"` // Display metadata only
	IsActive       bool            `json:"isActive"`      // Inactive currencies are excluded from resolution
	AuditFields
}
