package services

import (
	"context"
	"time"

	"github.com/finkit/currency_rates_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RateResolverSvcFacade answers effective-rate questions. Read-only.
type RateResolverSvcFacade interface {
	// ResolveEffectiveRate returns the rate of a currency relative to the
	// company's default at asOf. The default currency resolves to 1
	// unconditionally. asOf nil means "today" per the injected clock.
	ResolveEffectiveRate(ctx context.Context, companyID, code string, asOf *time.Time) (decimal.Decimal, error)

	// Convert converts amount from one currency to another at asOf:
	// amount * rate(to) / rate(from). Fails with apperrors.ErrDivisionByZero
	// when the source currency resolves to a zero rate.
	Convert(ctx context.Context, companyID string, amount decimal.Decimal, fromCode, toCode string, asOf *time.Time) (decimal.Decimal, error)

	// EffectiveDateRanges returns the contiguous periods derived from a
	// currency's dated-rate start dates, for display/audit purposes.
	EffectiveDateRanges(ctx context.Context, companyID, code string) ([]domain.EffectiveDateRange, error)
}
