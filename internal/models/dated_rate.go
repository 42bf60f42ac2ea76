package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DatedRate stores a dated override of a currency's static conversion rate.
// Unique key: (company_id, currency_code, start_date).
type DatedRate struct {
	DatedRateID    string          `json:"datedRateID"` // Primary Key (e.g., UUID)
	CompanyID      string          `json:"companyID"`   // FK -> companies.company_id
	CurrencyCode   string          `json:"currencyCode"`
	StartDate      time.Time       `json:"startDate"`
	ConversionRate decimal.Decimal `json:"conversionRate"`
	AuditFields
}
