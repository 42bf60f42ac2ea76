package mapping

import (
	"github.com/finkit/currency_rates_app/internal/core/domain"
	"github.com/finkit/currency_rates_app/internal/models"
)

// ToModelCompany converts a domain.Company to models.Company.
func ToModelCompany(c domain.Company) models.Company {
	return models.Company{
		CompanyID:           c.CompanyID,
		Name:                c.Name,
		DefaultCurrencyCode: c.DefaultCurrencyCode,
		IsActive:            c.IsActive,
		AuditFields:         ToModelAuditFields(c.AuditFields),
	}
}

// ToDomainCompany converts a models.Company to domain.Company.
func ToDomainCompany(c models.Company) domain.Company {
	return domain.Company{
		CompanyID:           c.CompanyID,
		Name:                c.Name,
		DefaultCurrencyCode: c.DefaultCurrencyCode,
		IsActive:            c.IsActive,
		AuditFields:         ToDomainAuditFields(c.AuditFields),
	}
}
