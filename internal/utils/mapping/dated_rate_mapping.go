package mapping

import (
	"github.com/finkit/currency_rates_app/internal/core/domain"
	"github.com/finkit/currency_rates_app/internal/models"
)

// ToModelDatedRate converts a domain.DatedRate to models.DatedRate.
func ToModelDatedRate(r domain.DatedRate) models.DatedRate {
	return models.DatedRate{
		DatedRateID:    r.DatedRateID,
		CompanyID:      r.CompanyID,
		CurrencyCode:   r.CurrencyCode,
		StartDate:      r.StartDate,
		ConversionRate: r.ConversionRate,
		AuditFields:    ToModelAuditFields(r.AuditFields),
	}
}

// ToDomainDatedRate converts a models.DatedRate to domain.DatedRate.
func ToDomainDatedRate(r models.DatedRate) domain.DatedRate {
	return domain.DatedRate{
		DatedRateID:    r.DatedRateID,
		CompanyID:      r.CompanyID,
		CurrencyCode:   r.CurrencyCode,
		StartDate:      r.StartDate,
		ConversionRate: r.ConversionRate,
		AuditFields:    ToDomainAuditFields(r.AuditFields),
	}
}

// ToDomainDatedRateSlice converts a slice of models.DatedRate to domain dated rates.
func ToDomainDatedRateSlice(mrs []models.DatedRate) []domain.DatedRate {
	drs := make([]domain.DatedRate, len(mrs))
	for i, mr := range mrs {
		drs[i] = ToDomainDatedRate(mr)
	}
	return drs
}
