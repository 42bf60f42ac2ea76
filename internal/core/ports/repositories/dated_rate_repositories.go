package repositories

import (
	"context"
	"time"

	"github.com/finkit/currency_rates_app/internal/core/domain"
)

// DatedRateReader defines read operations for dated conversion rates
type DatedRateReader interface {
	// FindDatedRate retrieves the dated rate for a (currency, start date)
	// pair, or apperrors.ErrNotFound if none is recorded.
	FindDatedRate(ctx context.Context, companyID, currencyCode string, startDate time.Time) (*domain.DatedRate, error)

	// ListDatedRates retrieves a company's dated rates sorted by start_date
	// ascending. currencyCode narrows the result to one currency when non-nil.
	ListDatedRates(ctx context.Context, companyID string, currencyCode *string) ([]domain.DatedRate, error)
}

// DatedRateWriter defines write operations for dated conversion rates
type DatedRateWriter interface {
	// UpsertDatedRate inserts or overwrites the rate at (company, currency, start date).
	UpsertDatedRate(ctx context.Context, rate domain.DatedRate) error

	// DeleteDatedRatesForCurrency removes every dated rate of one currency.
	DeleteDatedRatesForCurrency(ctx context.Context, companyID, currencyCode string) error
}

// DatedRateRepositoryFacade combines all dated-rate repository interfaces
type DatedRateRepositoryFacade interface {
	DatedRateReader
	DatedRateWriter
}
