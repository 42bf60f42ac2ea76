package models

import "github.com/shopspring/decimal"

// Currency represents a currency row scoped to a company.
// Note: Rate columns use NUMERIC and a precise decimal type like github.com/shopspring/decimal
type Currency struct {
	CurrencyID     string          `json:"currencyID"` // Primary Key (e.g., UUID)
	CompanyID      string          `json:"companyID"`  // FK -> companies.company_id
	Code           string          `json:"code"`       // Unique per company (e.g., "USD")
	ConversionRate decimal.Decimal `json:"conversionRate"`
	IsDefault      bool            `json:"isDefault"`
	DecimalPlaces  int             `json:"decimalPlaces"`
	DisplayFormat  string          `json:"displayFormat"`
	IsActive       bool            `json:"isActive"`
	AuditFields
}
