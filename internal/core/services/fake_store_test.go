package services_test

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/finkit/currency_rates_app/internal/apperrors"
	"github.com/finkit/currency_rates_app/internal/core/domain"
)

// fakeStore is an in-memory implementation of the repository facades and the
// transaction manager. The rebase engine reads whole row sets and rewrites
// them, so per-call mocks would just restate the implementation; a stateful
// store lets the tests assert on the end state instead.
//
// Transactions snapshot the maps and restore them when fn fails, which is
// enough to verify the all-or-nothing behavior of bulk writes.
type fakeStore struct {
	companies  map[string]domain.Company
	currencies map[string]domain.Currency  // companyID|code
	rates      map[string]domain.DatedRate // companyID|code|date
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		companies:  make(map[string]domain.Company),
		currencies: make(map[string]domain.Currency),
		rates:      make(map[string]domain.DatedRate),
	}
}

func ckey(companyID, code string) string {
	return companyID + "|" + code
}

func rkey(companyID, code string, date time.Time) string {
	return companyID + "|" + code + "|" + date.Format("2006-01-02")
}

// --- TxManager ---

func (s *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	companies := make(map[string]domain.Company, len(s.companies))
	for k, v := range s.companies {
		companies[k] = v
	}
	currencies := make(map[string]domain.Currency, len(s.currencies))
	for k, v := range s.currencies {
		currencies[k] = v
	}
	rates := make(map[string]domain.DatedRate, len(s.rates))
	for k, v := range s.rates {
		rates[k] = v
	}

	if err := fn(ctx); err != nil {
		s.companies = companies
		s.currencies = currencies
		s.rates = rates
		return err
	}
	return nil
}

func (s *fakeStore) WithinSerializableTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.WithinTx(ctx, fn)
}

// --- CompanyRepositoryFacade ---

func (s *fakeStore) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	company, ok := s.companies[companyID]
	if !ok {
		return nil, fmt.Errorf("%w: company %s", apperrors.ErrNotFound, companyID)
	}
	return &company, nil
}

func (s *fakeStore) SaveCompany(ctx context.Context, company domain.Company) error {
	if _, ok := s.companies[company.CompanyID]; ok {
		return fmt.Errorf("%w: company %s", apperrors.ErrDuplicate, company.CompanyID)
	}
	s.companies[company.CompanyID] = company
	return nil
}

func (s *fakeStore) UpdateDefaultCurrencyCode(ctx context.Context, companyID, currencyCode string, updatedBy string) error {
	company, ok := s.companies[companyID]
	if !ok {
		return fmt.Errorf("%w: company %s", apperrors.ErrNotFound, companyID)
	}
	company.DefaultCurrencyCode = currencyCode
	company.LastUpdatedBy = updatedBy
	s.companies[companyID] = company
	return nil
}

// --- CurrencyRepositoryFacade ---

func (s *fakeStore) FindCurrencyByCode(ctx context.Context, companyID, code string) (*domain.Currency, error) {
	currency, ok := s.currencies[ckey(companyID, code)]
	if !ok {
		return nil, fmt.Errorf("%w: currency %s for company %s", apperrors.ErrNotFound, code, companyID)
	}
	return &currency, nil
}

func (s *fakeStore) FindDefaultCurrency(ctx context.Context, companyID string) (*domain.Currency, error) {
	for _, currency := range s.currencies {
		if currency.CompanyID == companyID && currency.IsDefault {
			c := currency
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: default currency for company %s", apperrors.ErrNotFound, companyID)
}

func (s *fakeStore) ListCurrencies(ctx context.Context, companyID string) ([]domain.Currency, error) {
	var currencies []domain.Currency
	for _, currency := range s.currencies {
		if currency.CompanyID == companyID {
			currencies = append(currencies, currency)
		}
	}
	sort.Slice(currencies, func(i, j int) bool {
		if currencies[i].IsDefault != currencies[j].IsDefault {
			return currencies[i].IsDefault
		}
		return currencies[i].Code < currencies[j].Code
	})
	return currencies, nil
}

func (s *fakeStore) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	key := ckey(currency.CompanyID, currency.Code)
	if _, ok := s.currencies[key]; ok {
		return fmt.Errorf("%w: currency %s already exists for company %s", apperrors.ErrDuplicate, currency.Code, currency.CompanyID)
	}
	s.currencies[key] = currency
	return nil
}

func (s *fakeStore) UpdateCurrency(ctx context.Context, currency domain.Currency) error {
	key := ckey(currency.CompanyID, currency.Code)
	if _, ok := s.currencies[key]; !ok {
		return fmt.Errorf("%w: currency %s for company %s", apperrors.ErrNotFound, currency.Code, currency.CompanyID)
	}
	s.currencies[key] = currency
	return nil
}

func (s *fakeStore) DeleteCurrency(ctx context.Context, companyID, code string) error {
	key := ckey(companyID, code)
	if _, ok := s.currencies[key]; !ok {
		return fmt.Errorf("%w: currency %s for company %s", apperrors.ErrNotFound, code, companyID)
	}
	delete(s.currencies, key)
	return nil
}

// --- DatedRateRepositoryFacade ---

func (s *fakeStore) FindDatedRate(ctx context.Context, companyID, currencyCode string, startDate time.Time) (*domain.DatedRate, error) {
	rate, ok := s.rates[rkey(companyID, currencyCode, startDate)]
	if !ok {
		return nil, fmt.Errorf("%w: dated rate for %s at %s", apperrors.ErrNotFound, currencyCode, startDate.Format("2006-01-02"))
	}
	return &rate, nil
}

func (s *fakeStore) ListDatedRates(ctx context.Context, companyID string, currencyCode *string) ([]domain.DatedRate, error) {
	var rates []domain.DatedRate
	for _, rate := range s.rates {
		if rate.CompanyID != companyID {
			continue
		}
		if currencyCode != nil && rate.CurrencyCode != *currencyCode {
			continue
		}
		rates = append(rates, rate)
	}
	sort.Slice(rates, func(i, j int) bool {
		if !rates[i].StartDate.Equal(rates[j].StartDate) {
			return rates[i].StartDate.Before(rates[j].StartDate)
		}
		return rates[i].CurrencyCode < rates[j].CurrencyCode
	})
	return rates, nil
}

func (s *fakeStore) UpsertDatedRate(ctx context.Context, rate domain.DatedRate) error {
	s.rates[rkey(rate.CompanyID, rate.CurrencyCode, rate.StartDate)] = rate
	return nil
}

func (s *fakeStore) DeleteDatedRatesForCurrency(ctx context.Context, companyID, currencyCode string) error {
	for key, rate := range s.rates {
		if rate.CompanyID == companyID && rate.CurrencyCode == currencyCode {
			delete(s.rates, key)
		}
	}
	return nil
}

// fixedClock pins "today" for resolver tests.
type fixedClock struct {
	today time.Time
}

func (c fixedClock) Today() time.Time {
	return c.today
}
