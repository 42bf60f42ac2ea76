package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DatedRate is a time-dated override of a currency's static conversion rate.
// It is effective from StartDate (inclusive) until the next later StartDate
// recorded for the same currency (exclusive), or indefinitely if none.
// (company, currency code, start date) is unique. The default currency never
// has dated rates; its rate is implicitly 1 for all dates.
type DatedRate struct {
	DatedRateID    string          `json:"datedRateID"` // Primary Key (e.g., UUID)
	CompanyID      string          `json:"companyID"`   // FK -> companies.company_id
	CurrencyCode   string          `json:"currencyCode"`
	StartDate      time.Time       `json:"startDate"` // Calendar date, UTC midnight
	ConversionRate decimal.Decimal `json:"conversionRate"`
	AuditFields
}

// EffectiveDateRange is one contiguous period derived from the distinct start
// dates of a currency's dated rates, for display/audit purposes. EndDate is
// nil for the open-ended last range.
type EffectiveDateRange struct {
	StartDate time.Time       `json:"startDate"`
	EndDate   *time.Time      `json:"endDate,omitempty"` // Day before the next range's start; nil if open-ended
	Rate      decimal.Decimal `json:"rate"`
}
