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
	"github.com/finkit/currency_rates_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// currencyService implements the CurrencySvcFacade interface: the currency
// catalog plus the rebase engine behind ChangeDefaultCurrency.
//
// Every mutating operation takes the company's lock, then runs its
// reads and writes in one store transaction. The lock keeps two writers on
// the same company from interleaving between the read of the currency set
// and the rewrite of it; the transaction keeps a failure from leaving the
// company half-rebased.
type currencyService struct {
	BaseService
	companyRepo   portsrepo.CompanyRepositoryFacade
	currencyRepo  portsrepo.CurrencyRepositoryFacade
	datedRateRepo portsrepo.DatedRateRepositoryFacade
	txManager     portsrepo.TxManager
	locks         *companyLock
}

// NewCurrencyService creates a new currency service with the provided dependencies.
func NewCurrencyService(
	companyRepo portsrepo.CompanyRepositoryFacade,
	currencyRepo portsrepo.CurrencyRepositoryFacade,
	datedRateRepo portsrepo.DatedRateRepositoryFacade,
	txManager portsrepo.TxManager,
) portssvc.CurrencySvcFacade {
	return &currencyService{
		companyRepo:   companyRepo,
		currencyRepo:  currencyRepo,
		datedRateRepo: datedRateRepo,
		txManager:     txManager,
		locks:         newCompanyLock(),
	}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

// GetCurrencyByCode retrieves a company's currency by its code.
func (s *currencyService) GetCurrencyByCode(ctx context.Context, companyID, code string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, companyID, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find currency by code",
				slog.String("company_id", companyID),
				slog.String("currency_code", code))
		}
		return nil, err
	}
	return currency, nil
}

// ListCurrencies retrieves all currencies of a company, default first.
func (s *currencyService) ListCurrencies(ctx context.Context, companyID string) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx, companyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list currencies", slog.String("company_id", companyID))
		return nil, err
	}
	if currencies == nil {
		return []domain.Currency{}, nil
	}
	return currencies, nil
}

// ListDatedRates retrieves a company's dated rates sorted by start date.
func (s *currencyService) ListDatedRates(ctx context.Context, companyID string, currencyCode *string) ([]domain.DatedRate, error) {
	rates, err := s.datedRateRepo.ListDatedRates(ctx, companyID, currencyCode)
	if err != nil {
		s.LogError(ctx, err, "Failed to list dated rates", slog.String("company_id", companyID))
		return nil, err
	}
	if rates == nil {
		return []domain.DatedRate{}, nil
	}
	return rates, nil
}

// AddCurrency adds a currency to a company. The first currency of a company is
// forced to be the default with rate 1 whatever rate the caller supplied.
func (s *currencyService) AddCurrency(ctx context.Context, companyID string, req dto.AddCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	if req.ConversionRate.IsNegative() {
		return nil, fmt.Errorf("%w: conversion rate must not be negative", apperrors.ErrValidation)
	}
	if !domain.ValidDisplayFormat(domain.DisplayFormat(req.DisplayFormat)) {
		return nil, fmt.Errorf("%w: unknown display format %q", apperrors.ErrValidation, req.DisplayFormat)
	}

	unlock := s.locks.Lock(companyID)
	defer unlock()

	now := time.Now()
	currency := domain.Currency{
		CurrencyID:     uuid.NewString(),
		CompanyID:      companyID,
		Code:           req.Code,
		ConversionRate: req.ConversionRate,
		DecimalPlaces:  req.DecimalPlaces,
		DisplayFormat:  domain.DisplayFormat(req.DisplayFormat),
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.companyRepo.FindCompanyByID(ctx, companyID); err != nil {
			return err
		}

		_, err := s.currencyRepo.FindDefaultCurrency(ctx, companyID)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			// First currency of the company: it anchors the rate system.
			currency.IsDefault = true
			currency.ConversionRate = one
		case err != nil:
			return err
		}

		if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
			return err
		}
		if currency.IsDefault {
			return s.companyRepo.UpdateDefaultCurrencyCode(ctx, companyID, currency.Code, creatorUserID)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to add currency",
				slog.String("company_id", companyID),
				slog.String("currency_code", req.Code))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Currency added",
		slog.String("company_id", companyID),
		slog.String("currency_code", currency.Code),
		slog.Bool("is_default", currency.IsDefault))
	return &currency, nil
}

// UpdateCurrency edits a currency's static rate and display metadata.
// The default currency's rate is pinned to 1 and cannot be edited here.
func (s *currencyService) UpdateCurrency(ctx context.Context, companyID, code string, req dto.UpdateCurrencyRequest, updaterUserID string) (*domain.Currency, error) {
	if req.ConversionRate != nil && req.ConversionRate.IsNegative() {
		return nil, fmt.Errorf("%w: conversion rate must not be negative", apperrors.ErrValidation)
	}
	if req.DisplayFormat != nil && !domain.ValidDisplayFormat(domain.DisplayFormat(*req.DisplayFormat)) {
		return nil, fmt.Errorf("%w: unknown display format %q", apperrors.ErrValidation, *req.DisplayFormat)
	}

	unlock := s.locks.Lock(companyID)
	defer unlock()

	var updated *domain.Currency
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		currency, err := s.currencyRepo.FindCurrencyByCode(ctx, companyID, code)
		if err != nil {
			return err
		}
		if req.ConversionRate != nil {
			if currency.IsDefault {
				return fmt.Errorf("%w: the default currency's rate is fixed at 1", apperrors.ErrValidation)
			}
			currency.ConversionRate = *req.ConversionRate
		}
		if req.DecimalPlaces != nil {
			currency.DecimalPlaces = *req.DecimalPlaces
		}
		if req.DisplayFormat != nil {
			currency.DisplayFormat = domain.DisplayFormat(*req.DisplayFormat)
		}
		if req.IsActive != nil {
			currency.IsActive = *req.IsActive
		}
		currency.LastUpdatedAt = time.Now()
		currency.LastUpdatedBy = updaterUserID

		if err := s.currencyRepo.UpdateCurrency(ctx, *currency); err != nil {
			return err
		}
		updated = currency
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Currency updated",
		slog.String("company_id", companyID),
		slog.String("currency_code", code))
	return updated, nil
}

// RemoveCurrency deletes a currency and cascades to its dated rates.
// The default currency cannot be removed.
func (s *currencyService) RemoveCurrency(ctx context.Context, companyID, code string, removerUserID string) error {
	unlock := s.locks.Lock(companyID)
	defer unlock()

	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		currency, err := s.currencyRepo.FindCurrencyByCode(ctx, companyID, code)
		if err != nil {
			return err
		}
		if currency.IsDefault {
			return fmt.Errorf("%w: the default currency cannot be removed", apperrors.ErrValidation)
		}
		if err := s.datedRateRepo.DeleteDatedRatesForCurrency(ctx, companyID, code); err != nil {
			return err
		}
		return s.currencyRepo.DeleteCurrency(ctx, companyID, code)
	})
	if err != nil {
		return err
	}

	s.LogInfo(ctx, "Currency removed",
		slog.String("company_id", companyID),
		slog.String("currency_code", code),
		slog.String("removed_by", removerUserID))
	return nil
}

// SetDatedRate upserts one dated rate. The default currency never carries
// dated rates; its rate is implicitly 1 for all dates.
func (s *currencyService) SetDatedRate(ctx context.Context, companyID, code string, startDate time.Time, rate decimal.Decimal, userID string) (*domain.DatedRate, error) {
	if rate.IsNegative() {
		return nil, fmt.Errorf("%w: conversion rate must not be negative", apperrors.ErrValidation)
	}
	startDate = domain.DateOnly(startDate)

	unlock := s.locks.Lock(companyID)
	defer unlock()

	var saved domain.DatedRate
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		currency, err := s.currencyRepo.FindCurrencyByCode(ctx, companyID, code)
		if err != nil {
			return err
		}
		if currency.IsDefault {
			return fmt.Errorf("%w: dated rates cannot be set on the default currency", apperrors.ErrValidation)
		}

		now := time.Now()
		saved = domain.DatedRate{
			DatedRateID:    uuid.NewString(),
			CompanyID:      companyID,
			CurrencyCode:   currency.Code,
			StartDate:      startDate,
			ConversionRate: rate,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		return s.datedRateRepo.UpsertDatedRate(ctx, saved)
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Dated rate set",
		slog.String("company_id", companyID),
		slog.String("currency_code", code),
		slog.Time("start_date", startDate))
	return &saved, nil
}

// BulkSetDatedRates records one start date with a rate per currency,
// all-or-nothing. Unlike SetDatedRate it refuses to overwrite: any pair that
// already has a recorded rate rejects the whole batch with the full conflict
// list, so previously recorded history is never silently replaced.
func (s *currencyService) BulkSetDatedRates(ctx context.Context, companyID string, startDate time.Time, rates map[string]decimal.Decimal, userID string) ([]domain.DatedRate, error) {
	if len(rates) == 0 {
		return nil, fmt.Errorf("%w: no rates supplied", apperrors.ErrValidation)
	}
	for code, rate := range rates {
		if rate.IsNegative() {
			return nil, fmt.Errorf("%w: conversion rate for %s must not be negative", apperrors.ErrValidation, code)
		}
	}
	startDate = domain.DateOnly(startDate)

	// Deterministic processing order.
	codes := make([]string, 0, len(rates))
	for code := range rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	unlock := s.locks.Lock(companyID)
	defer unlock()

	var saved []domain.DatedRate
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		saved = saved[:0]
		var conflicts []string
		for _, code := range codes {
			currency, err := s.currencyRepo.FindCurrencyByCode(ctx, companyID, code)
			if err != nil {
				return err
			}
			if currency.IsDefault {
				return fmt.Errorf("%w: dated rates cannot be set on the default currency %s", apperrors.ErrValidation, code)
			}
			_, err = s.datedRateRepo.FindDatedRate(ctx, companyID, code, startDate)
			switch {
			case err == nil:
				conflicts = append(conflicts, code)
			case !errors.Is(err, apperrors.ErrNotFound):
				return err
			}
		}
		if len(conflicts) > 0 {
			return &apperrors.BulkRateConflictError{
				StartDate: startDate.Format("2006-01-02"),
				Conflicts: conflicts,
			}
		}

		now := time.Now()
		for _, code := range codes {
			rate := domain.DatedRate{
				DatedRateID:    uuid.NewString(),
				CompanyID:      companyID,
				CurrencyCode:   code,
				StartDate:      startDate,
				ConversionRate: rates[code],
				AuditFields: domain.AuditFields{
					CreatedAt:     now,
					CreatedBy:     userID,
					LastUpdatedAt: now,
					LastUpdatedBy: userID,
				},
			}
			if err := s.datedRateRepo.UpsertDatedRate(ctx, rate); err != nil {
				return err
			}
			saved = append(saved, rate)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Bulk dated rates recorded",
		slog.String("company_id", companyID),
		slog.Time("start_date", startDate),
		slog.Int("count", len(saved)))
	return saved, nil
}

// ChangeDefaultCurrency promotes a currency to default and rebases the whole
// company so every cross-rate keeps the value it had just before the call.
//
// With r = the promoted currency's static rate relative to the old default:
//
//	Step A  every static rate is divided by r; the promoted currency becomes
//	        1/default, the old default's rate becomes 1/r.
//	Step B  the promoted currency's dated history is snapshotted by start
//	        date, then deleted (the default has no dated rates).
//	Step C  for every remaining distinct start date, the old default gains a
//	        dated rate 1/divisor and every other currency's dated rate at
//	        that date is divided by divisor, where divisor is the snapshot
//	        entry for the date if one was recorded, else r.
//	Step D  the company's recorded default code is updated.
//
// Dates with no dated rate for some currency need no new row: Step A already
// rebased the static rate the resolver falls back to.
func (s *currencyService) ChangeDefaultCurrency(ctx context.Context, companyID, newDefaultCode string, userID string) (*dto.ChangeDefaultCurrencyResult, error) {
	unlock := s.locks.Lock(companyID)
	defer unlock()

	var result dto.ChangeDefaultCurrencyResult
	err := s.txManager.WithinSerializableTx(ctx, func(ctx context.Context) error {
		result = dto.ChangeDefaultCurrencyResult{}

		newDefault, err := s.currencyRepo.FindCurrencyByCode(ctx, companyID, newDefaultCode)
		if err != nil {
			return err
		}
		if !newDefault.IsActive {
			return fmt.Errorf("%w: inactive currency %s cannot become the default", apperrors.ErrValidation, newDefaultCode)
		}

		currentDefault, err := s.currencyRepo.FindDefaultCurrency(ctx, companyID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if currentDefault != nil && currentDefault.Code == newDefault.Code {
			result.AlreadyDefault = true
			result.DefaultCurrencyCode = newDefault.Code
			return nil
		}

		// Captured before any mutation; everything below divides by it.
		r := newDefault.ConversionRate
		if r.IsZero() {
			return fmt.Errorf("%w: %s has a zero conversion rate", apperrors.ErrDivisionByZero, newDefaultCode)
		}

		now := time.Now()

		// Step A: static rates.
		currencies, err := s.currencyRepo.ListCurrencies(ctx, companyID)
		if err != nil {
			return err
		}
		for i := range currencies {
			curr := &currencies[i]
			if curr.Code == newDefault.Code {
				curr.ConversionRate = one
				curr.IsDefault = true
			} else {
				curr.ConversionRate = curr.ConversionRate.Div(r)
				curr.IsDefault = false
			}
			curr.LastUpdatedAt = now
			curr.LastUpdatedBy = userID
			if err := s.currencyRepo.UpdateCurrency(ctx, *curr); err != nil {
				return err
			}
		}
		result.CurrenciesRebased = len(currencies)

		// Step B: snapshot and clear the promoted currency's history.
		newDefaultHistory, err := s.datedRateRepo.ListDatedRates(ctx, companyID, &newDefault.Code)
		if err != nil {
			return err
		}
		snapshot := make(map[time.Time]decimal.Decimal, len(newDefaultHistory))
		for _, dr := range newDefaultHistory {
			snapshot[dr.StartDate] = dr.ConversionRate
		}
		if err := s.datedRateRepo.DeleteDatedRatesForCurrency(ctx, companyID, newDefault.Code); err != nil {
			return err
		}

		// Step C: rebase the remaining dated history.
		remaining, err := s.datedRateRepo.ListDatedRates(ctx, companyID, nil)
		if err != nil {
			return err
		}

		divisorAt := func(date time.Time) (decimal.Decimal, error) {
			divisor := r
			if snap, ok := snapshot[date]; ok {
				divisor = snap
			}
			if divisor.IsZero() {
				return decimal.Decimal{}, fmt.Errorf("%w: zero dated rate for %s at %s",
					apperrors.ErrDivisionByZero, newDefaultCode, date.Format("2006-01-02"))
			}
			return divisor, nil
		}

		if currentDefault != nil {
			// The old default loses its implicit 1: it needs an explicit
			// entry at every date the company has dated history for,
			// including dates only the promoted currency had recorded.
			seen := make(map[time.Time]bool)
			dates := make([]time.Time, 0, len(remaining)+len(snapshot))
			for _, dr := range remaining {
				if !seen[dr.StartDate] {
					seen[dr.StartDate] = true
					dates = append(dates, dr.StartDate)
				}
			}
			for date := range snapshot {
				if !seen[date] {
					seen[date] = true
					dates = append(dates, date)
				}
			}
			sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

			for _, date := range dates {
				divisor, err := divisorAt(date)
				if err != nil {
					return err
				}
				entry := domain.DatedRate{
					DatedRateID:    uuid.NewString(),
					CompanyID:      companyID,
					CurrencyCode:   currentDefault.Code,
					StartDate:      date,
					ConversionRate: one.Div(divisor),
					AuditFields: domain.AuditFields{
						CreatedAt:     now,
						CreatedBy:     userID,
						LastUpdatedAt: now,
						LastUpdatedBy: userID,
					},
				}
				if err := s.datedRateRepo.UpsertDatedRate(ctx, entry); err != nil {
					return err
				}
				result.DatedRatesRewritten++
			}
		}

		for _, dr := range remaining {
			if currentDefault != nil && dr.CurrencyCode == currentDefault.Code {
				continue
			}
			divisor, err := divisorAt(dr.StartDate)
			if err != nil {
				return err
			}
			dr.ConversionRate = dr.ConversionRate.Div(divisor)
			dr.LastUpdatedAt = now
			dr.LastUpdatedBy = userID
			if err := s.datedRateRepo.UpsertDatedRate(ctx, dr); err != nil {
				return err
			}
			result.DatedRatesRewritten++
		}

		// Step D: commit the new default on the company record.
		if err := s.companyRepo.UpdateDefaultCurrencyCode(ctx, companyID, newDefault.Code, userID); err != nil {
			return err
		}
		result.DefaultCurrencyCode = newDefault.Code
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to change default currency",
				slog.String("company_id", companyID),
				slog.String("new_default", newDefaultCode))
		}
		return nil, err
	}

	if result.AlreadyDefault {
		s.LogInfo(ctx, "Currency is already the default",
			slog.String("company_id", companyID),
			slog.String("currency_code", newDefaultCode))
	} else {
		s.LogInfo(ctx, "Default currency changed",
			slog.String("company_id", companyID),
			slog.String("new_default", newDefaultCode),
			slog.Int("currencies_rebased", result.CurrenciesRebased),
			slog.Int("dated_rates_rewritten", result.DatedRatesRewritten))
	}
	return &result, nil
}
