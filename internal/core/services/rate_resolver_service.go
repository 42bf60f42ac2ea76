package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/finkit/currency_rates_app/internal/apperrors"
	"github.com/finkit/currency_rates_app/internal/core/domain"
	portsrepo "github.com/finkit/currency_rates_app/internal/core/ports/repositories"
	portssvc "github.com/finkit/currency_rates_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// rateResolverService implements the RateResolverSvcFacade interface
type rateResolverService struct {
	BaseService
	currencyRepo  portsrepo.CurrencyReader
	datedRateRepo portsrepo.DatedRateReader
	clock         portssvc.Clock
}

// NewRateResolverService creates a new rate resolver with the provided dependencies
func NewRateResolverService(
	currencyRepo portsrepo.CurrencyReader,
	datedRateRepo portsrepo.DatedRateReader,
	clock portssvc.Clock,
) portssvc.RateResolverSvcFacade {
	return &rateResolverService{
		currencyRepo:  currencyRepo,
		datedRateRepo: datedRateRepo,
		clock:         clock,
	}
}

var _ portssvc.RateResolverSvcFacade = (*rateResolverService)(nil)

// ResolveEffectiveRate returns a currency's rate relative to the company's
// default at a date. The default currency is always 1. For other currencies
// the dated rate with the greatest start date not after asOf wins; with no
// such entry the static rate applies. Inactive currencies do not resolve.
func (s *rateResolverService) ResolveEffectiveRate(ctx context.Context, companyID, code string, asOf *time.Time) (decimal.Decimal, error) {
	at := s.asOfOrToday(asOf)

	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, companyID, code)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !currency.IsActive {
		return decimal.Decimal{}, fmt.Errorf("%w: currency %s is disabled", apperrors.ErrNotFound, code)
	}
	if currency.IsDefault {
		return one, nil
	}

	rates, err := s.datedRateRepo.ListDatedRates(ctx, companyID, &currency.Code)
	if err != nil {
		s.LogError(ctx, err, "Failed to load dated rates",
			slog.String("company_id", companyID),
			slog.String("currency_code", code))
		return decimal.Decimal{}, err
	}

	// rates come back sorted by start date ascending. Find the first entry
	// strictly after the lookup date; its predecessor governs.
	idx := sort.Search(len(rates), func(i int) bool {
		return rates[i].StartDate.After(at)
	})
	if idx == 0 {
		return currency.ConversionRate, nil
	}
	return rates[idx-1].ConversionRate, nil
}

// Convert converts an amount between two of the company's currencies at a
// date: amount * rate(to) / rate(from), both rates resolved against the
// company's default.
func (s *rateResolverService) Convert(ctx context.Context, companyID string, amount decimal.Decimal, fromCode, toCode string, asOf *time.Time) (decimal.Decimal, error) {
	if fromCode == toCode {
		return amount, nil
	}

	fromRate, err := s.ResolveEffectiveRate(ctx, companyID, fromCode, asOf)
	if err != nil {
		return decimal.Decimal{}, err
	}
	toRate, err := s.ResolveEffectiveRate(ctx, companyID, toCode, asOf)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if fromRate.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("%w: %s resolves to a zero rate", apperrors.ErrDivisionByZero, fromCode)
	}
	return amount.Mul(toRate).Div(fromRate), nil
}

// EffectiveDateRanges turns a currency's dated history into contiguous
// periods. Each range runs from its start date to the day before the next
// start date; the last range is open-ended. A currency with no dated rates
// yields a single open-ended range carrying its static rate.
func (s *rateResolverService) EffectiveDateRanges(ctx context.Context, companyID, code string) ([]domain.EffectiveDateRange, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, companyID, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find currency",
				slog.String("company_id", companyID),
				slog.String("currency_code", code))
		}
		return nil, err
	}

	rates, err := s.datedRateRepo.ListDatedRates(ctx, companyID, &currency.Code)
	if err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return []domain.EffectiveDateRange{{
			StartDate: time.Time{},
			Rate:      currency.ConversionRate,
		}}, nil
	}

	ranges := make([]domain.EffectiveDateRange, len(rates))
	for i, dr := range rates {
		ranges[i] = domain.EffectiveDateRange{
			StartDate: dr.StartDate,
			Rate:      dr.ConversionRate,
		}
		if i+1 < len(rates) {
			end := rates[i+1].StartDate.AddDate(0, 0, -1)
			ranges[i].EndDate = &end
		}
	}
	return ranges, nil
}

func (s *rateResolverService) asOfOrToday(asOf *time.Time) time.Time {
	if asOf != nil {
		return domain.DateOnly(*asOf)
	}
	return s.clock.Today()
}
