package dto

import (
	"time"

	"github.com/finkit/currency_rates_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// SetDatedRateRequest upserts one dated rate for a currency.
type SetDatedRateRequest struct {
	StartDate      string          `json:"startDate" binding:"required,datetime=2006-01-02"`
	ConversionRate decimal.Decimal `json:"conversionRate" binding:"required"`
}

// BulkSetDatedRatesRequest records one start date with a rate per currency.
// The whole batch is rejected if any (currency, start date) pair already has a
// recorded rate.
type BulkSetDatedRatesRequest struct {
	StartDate string                     `json:"startDate" binding:"required,datetime=2006-01-02"`
	Rates     map[string]decimal.Decimal `json:"rates" binding:"required,min=1"`
}

// DatedRateResponse defines the data returned for a dated rate.
type DatedRateResponse struct {
	DatedRateID    string          `json:"datedRateID"`
	CurrencyCode   string          `json:"currencyCode"`
	StartDate      string          `json:"startDate"`
	ConversionRate decimal.Decimal `json:"conversionRate"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy  string          `json:"lastUpdatedBy"`
}

// ToDatedRateResponse converts a domain.DatedRate to DatedRateResponse DTO
func ToDatedRateResponse(r *domain.DatedRate) DatedRateResponse {
	return DatedRateResponse{
		DatedRateID:    r.DatedRateID,
		CurrencyCode:   r.CurrencyCode,
		StartDate:      r.StartDate.Format(DateLayout),
		ConversionRate: r.ConversionRate,
		CreatedAt:      r.CreatedAt,
		CreatedBy:      r.CreatedBy,
		LastUpdatedAt:  r.LastUpdatedAt,
		LastUpdatedBy:  r.LastUpdatedBy,
	}
}

// ListDatedRatesResponse is a page of dated rates plus the token for the next page.
type ListDatedRatesResponse struct {
	Rates         []DatedRateResponse `json:"rates"`
	NextPageToken string              `json:"nextPageToken,omitempty"`
}

// ToListDatedRateResponse converts a slice of domain.DatedRate to response DTOs
func ToListDatedRateResponse(rates []domain.DatedRate) []DatedRateResponse {
	res := make([]DatedRateResponse, len(rates))
	for i, r := range rates {
		res[i] = ToDatedRateResponse(&r)
	}
	return res
}
