package dto

import (
	"time"

	"github.com/finkit/currency_rates_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AddCurrencyRequest defines the data needed to add a currency to a company.
// The first currency added for a company becomes the default regardless of the
// supplied rate.
type AddCurrencyRequest struct {
	Code           string          `json:"code" binding:"required,uppercase,len=3"`
	ConversionRate decimal.Decimal `json:"conversionRate" binding:"required"`
	DecimalPlaces  int             `json:"decimalPlaces" binding:"gte=0"`
	DisplayFormat  string          `json:"displayFormat" binding:"required,displayformat"`
}

// UpdateCurrencyRequest defines editable currency fields. Nil fields are left
// unchanged. The static rate is only editable on non-default currencies.
type UpdateCurrencyRequest struct {
	ConversionRate *decimal.Decimal `json:"conversionRate"`
	DecimalPlaces  *int             `json:"decimalPlaces" binding:"omitempty,gte=0"`
	DisplayFormat  *string          `json:"displayFormat" binding:"omitempty,displayformat"`
	IsActive       *bool            `json:"isActive"`
}

// ChangeDefaultCurrencyRequest selects the currency to promote to default.
type ChangeDefaultCurrencyRequest struct {
	Code string `json:"code" binding:"required,uppercase,len=3"`
}

// ChangeDefaultCurrencyResult reports the outcome of a default-currency change.
type ChangeDefaultCurrencyResult struct {
	DefaultCurrencyCode string `json:"defaultCurrencyCode"`
	AlreadyDefault      bool   `json:"alreadyDefault"`
	CurrenciesRebased   int    `json:"currenciesRebased"`
	DatedRatesRewritten int    `json:"datedRatesRewritten"`
}

// CurrencyResponse defines the data returned for a currency.
type CurrencyResponse struct {
	CurrencyID     string          `json:"currencyID"`
	CompanyID      string          `json:"companyID"`
	Code           string          `json:"code"`
	ConversionRate decimal.Decimal `json:"conversionRate"`
	IsDefault      bool            `json:"isDefault"`
	DecimalPlaces  int             `json:"decimalPlaces"`
	DisplayFormat  string          `json:"displayFormat"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy  string          `json:"lastUpdatedBy"`
}

// ToCurrencyResponse converts a domain.Currency to CurrencyResponse DTO
func ToCurrencyResponse(c *domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		CurrencyID:     c.CurrencyID,
		CompanyID:      c.CompanyID,
		Code:           c.Code,
		ConversionRate: c.ConversionRate,
		IsDefault:      c.IsDefault,
		DecimalPlaces:  c.DecimalPlaces,
		DisplayFormat:  string(c.DisplayFormat),
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
		CreatedBy:      c.CreatedBy,
		LastUpdatedAt:  c.LastUpdatedAt,
		LastUpdatedBy:  c.LastUpdatedBy,
	}
}

// ToListCurrencyResponse converts a slice of domain.Currency to response DTOs
func ToListCurrencyResponse(currencies []domain.Currency) []CurrencyResponse {
	res := make([]CurrencyResponse, len(currencies))
	for i, curr := range currencies {
		res[i] = ToCurrencyResponse(&curr)
	}
	return res
}
