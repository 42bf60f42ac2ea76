package services

import (
	"context"
	"time"

	"github.com/finkit/currency_rates_app/internal/core/domain"
	"github.com/finkit/currency_rates_app/internal/dto"
	"github.com/shopspring/decimal"
)

// CurrencyReaderSvc defines read operations for currency data
type CurrencyReaderSvc interface {
	// GetCurrencyByCode retrieves a company's currency by its code.
	GetCurrencyByCode(ctx context.Context, companyID, code string) (*domain.Currency, error)

	// ListCurrencies retrieves all currencies of a company, default first.
	ListCurrencies(ctx context.Context, companyID string) ([]domain.Currency, error)

	// ListDatedRates retrieves a company's dated rates sorted by start date,
	// optionally narrowed to one currency.
	ListDatedRates(ctx context.Context, companyID string, currencyCode *string) ([]domain.DatedRate, error)
}

// CurrencyWriterSvc defines the mutating operations of the rate engine.
// All of them are serialized per company and atomic: either every row write
// of a call commits, or none does.
type CurrencyWriterSvc interface {
	// AddCurrency adds a currency to a company. The company's first currency
	// becomes the default with rate 1 regardless of the supplied rate.
	AddCurrency(ctx context.Context, companyID string, req dto.AddCurrencyRequest, creatorUserID string) (*domain.Currency, error)

	// UpdateCurrency edits a currency's static rate (non-default only) and
	// display metadata.
	UpdateCurrency(ctx context.Context, companyID, code string, req dto.UpdateCurrencyRequest, updaterUserID string) (*domain.Currency, error)

	// RemoveCurrency deletes a non-default currency and all its dated rates.
	RemoveCurrency(ctx context.Context, companyID, code string, removerUserID string) error

	// SetDatedRate upserts one dated rate for a non-default currency.
	SetDatedRate(ctx context.Context, companyID, code string, startDate time.Time, rate decimal.Decimal, userID string) (*domain.DatedRate, error)

	// BulkSetDatedRates records rates for several currencies at one start date.
	// If any (currency, start date) pair already has a recorded rate, the whole
	// batch is rejected with apperrors.BulkRateConflictError and nothing is written.
	BulkSetDatedRates(ctx context.Context, companyID string, startDate time.Time, rates map[string]decimal.Decimal, userID string) ([]domain.DatedRate, error)

	// ChangeDefaultCurrency promotes a currency to default and rebases every
	// static and dated rate of the company so cross-rates are preserved.
	ChangeDefaultCurrency(ctx context.Context, companyID, newDefaultCode string, userID string) (*dto.ChangeDefaultCurrencyResult, error)
}

// CurrencySvcFacade combines all currency-related service interfaces
type CurrencySvcFacade interface {
	CurrencyReaderSvc
	CurrencyWriterSvc
}
