package dto

import (
	"time"

	"github.com/finkit/currency_rates_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EffectiveRateResponse is the resolved rate of one currency at a date.
type EffectiveRateResponse struct {
	CurrencyCode string          `json:"currencyCode"`
	AsOf         string          `json:"asOf"`
	Rate         decimal.Decimal `json:"rate"`
}

// ConvertResponse is the result of converting an amount between two currencies.
type ConvertResponse struct {
	Amount           decimal.Decimal `json:"amount"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	AsOf             string          `json:"asOf"`
	Result           decimal.Decimal `json:"result"`
	Formatted        string          `json:"formatted,omitempty"`
}

// DateRangeResponse is one effective period of a currency's dated history.
type DateRangeResponse struct {
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate,omitempty"` // Empty for the open-ended last range
	Rate      decimal.Decimal `json:"rate"`
}

// ToDateRangeResponse converts domain date ranges to response DTOs.
func ToDateRangeResponse(ranges []domain.EffectiveDateRange) []DateRangeResponse {
	res := make([]DateRangeResponse, len(ranges))
	for i, rg := range ranges {
		out := DateRangeResponse{
			StartDate: rg.StartDate.Format(DateLayout),
			Rate:      rg.Rate,
		}
		if rg.EndDate != nil {
			out.EndDate = rg.EndDate.Format(DateLayout)
		}
		res[i] = out
	}
	return res
}

// ParseDate parses a wire-format calendar date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return domain.DateOnly(t), nil
}
