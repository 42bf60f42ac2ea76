package repositories

import (
	"context"

	"github.com/finkit/currency_rates_app/internal/core/domain"
)

// CurrencyReader defines read operations for currency data
type CurrencyReader interface {
	// FindCurrencyByCode retrieves a company's currency by its code.
	FindCurrencyByCode(ctx context.Context, companyID, code string) (*domain.Currency, error)

	// FindDefaultCurrency retrieves the company's currency flagged is_default,
	// or apperrors.ErrNotFound if the company has none.
	FindDefaultCurrency(ctx context.Context, companyID string) (*domain.Currency, error)

	// ListCurrencies retrieves all currencies of a company, default first,
	// then by code.
	ListCurrencies(ctx context.Context, companyID string) ([]domain.Currency, error)
}

// CurrencyWriter defines write operations for currency data
type CurrencyWriter interface {
	// SaveCurrency persists a new currency. A duplicate (company, code)
	// surfaces as apperrors.ErrDuplicate.
	SaveCurrency(ctx context.Context, currency domain.Currency) error

	// UpdateCurrency rewrites an existing currency row (rate, default flag,
	// display metadata, active flag).
	UpdateCurrency(ctx context.Context, currency domain.Currency) error

	// DeleteCurrency removes a currency row.
	DeleteCurrency(ctx context.Context, companyID, code string) error
}

// CurrencyRepositoryFacade combines all currency-related repository interfaces
type CurrencyRepositoryFacade interface {
	CurrencyReader
	CurrencyWriter
}
