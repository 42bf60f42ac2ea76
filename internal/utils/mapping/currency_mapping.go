package mapping

import (
	"github.com/finkit/currency_rates_app/internal/core/domain"
	"github.com/finkit/currency_rates_app/internal/models"
)

// ToModelCurrency converts a domain.Currency to models.Currency.
func ToModelCurrency(c domain.Currency) models.Currency {
	return models.Currency{
		CurrencyID:     c.CurrencyID,
		CompanyID:      c.CompanyID,
		Code:           c.Code,
		ConversionRate: c.ConversionRate,
		IsDefault:      c.IsDefault,
		DecimalPlaces:  c.DecimalPlaces,
		DisplayFormat:  string(c.DisplayFormat),
		IsActive:       c.IsActive,
		AuditFields:    ToModelAuditFields(c.AuditFields),
	}
}

// ToDomainCurrency converts a models.Currency to domain.Currency.
func ToDomainCurrency(c models.Currency) domain.Currency {
	return domain.Currency{
		CurrencyID:     c.CurrencyID,
		CompanyID:      c.CompanyID,
		Code:           c.Code,
		ConversionRate: c.ConversionRate,
		IsDefault:      c.IsDefault,
		DecimalPlaces:  c.DecimalPlaces,
		DisplayFormat:  domain.DisplayFormat(c.DisplayFormat),
		IsActive:       c.IsActive,
		AuditFields:    ToDomainAuditFields(c.AuditFields),
	}
}

// ToDomainCurrencySlice converts a slice of models.Currency to domain currencies.
func ToDomainCurrencySlice(mcs []models.Currency) []domain.Currency {
	dcs := make([]domain.Currency, len(mcs))
	for i, mc := range mcs {
		dcs[i] = ToDomainCurrency(mc)
	}
	return dcs
}
