package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finkit/currency_rates_app/internal/apperrors"
	"github.com/finkit/currency_rates_app/internal/core/domain"
	portssvc "github.com/finkit/currency_rates_app/internal/core/ports/services"
	"github.com/finkit/currency_rates_app/internal/core/services"
	"github.com/finkit/currency_rates_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const testUserID = "user-1"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// --- Test Suite ---
type CurrencyServiceTestSuite struct {
	suite.Suite
	store   *fakeStore
	service portssvc.CurrencySvcFacade
}

func (suite *CurrencyServiceTestSuite) SetupTest() {
	suite.store = newFakeStore()
	suite.service = services.NewCurrencyService(suite.store, suite.store, suite.store, suite.store)
}

func (suite *CurrencyServiceTestSuite) seedCompany(companyID string) {
	suite.store.companies[companyID] = domain.Company{
		CompanyID: companyID,
		Name:      "Test Co",
		IsActive:  true,
	}
}

func (suite *CurrencyServiceTestSuite) seedCurrency(companyID, code, rate string, isDefault bool) {
	suite.store.currencies[ckey(companyID, code)] = domain.Currency{
		CurrencyID:     uuid.NewString(),
		CompanyID:      companyID,
		Code:           code,
		ConversionRate: dec(rate),
		IsDefault:      isDefault,
		DecimalPlaces:  2,
		DisplayFormat:  domain.FormatCommaDot,
		IsActive:       true,
	}
	if isDefault {
		company := suite.store.companies[companyID]
		company.DefaultCurrencyCode = code
		suite.store.companies[companyID] = company
	}
}

func (suite *CurrencyServiceTestSuite) seedRate(companyID, code, date, rate string) {
	suite.store.rates[rkey(companyID, code, day(date))] = domain.DatedRate{
		DatedRateID:    uuid.NewString(),
		CompanyID:      companyID,
		CurrencyCode:   code,
		StartDate:      day(date),
		ConversionRate: dec(rate),
	}
}

func (suite *CurrencyServiceTestSuite) currency(companyID, code string) domain.Currency {
	currency, ok := suite.store.currencies[ckey(companyID, code)]
	suite.Require().True(ok, "currency %s missing", code)
	return currency
}

func (suite *CurrencyServiceTestSuite) datedRate(companyID, code, date string) domain.DatedRate {
	rate, ok := suite.store.rates[rkey(companyID, code, day(date))]
	suite.Require().True(ok, "dated rate %s@%s missing", code, date)
	return rate
}

func (suite *CurrencyServiceTestSuite) assertDecimalEqual(expected, actual decimal.Decimal, msgAndArgs ...any) {
	suite.True(expected.Sub(actual).Abs().LessThan(dec("0.000000000001")),
		"expected %s, got %s: %v", expected, actual, msgAndArgs)
}

// assertInvariants checks the structural invariants of one company: exactly
// one default currency, its rate is 1, and it carries no dated rates.
func (suite *CurrencyServiceTestSuite) assertInvariants(companyID string) {
	defaults := 0
	var defaultCode string
	for _, currency := range suite.store.currencies {
		if currency.CompanyID == companyID && currency.IsDefault {
			defaults++
			defaultCode = currency.Code
			suite.True(currency.ConversionRate.Equal(decimal.NewFromInt(1)),
				"default currency %s has rate %s", currency.Code, currency.ConversionRate)
		}
	}
	suite.Equal(1, defaults, "expected exactly one default currency")
	for _, rate := range suite.store.rates {
		if rate.CompanyID == companyID {
			suite.NotEqual(defaultCode, rate.CurrencyCode,
				"default currency %s has a dated rate at %s", defaultCode, rate.StartDate)
		}
	}
}

// --- AddCurrency ---

func (suite *CurrencyServiceTestSuite) TestAddCurrency_FirstBecomesDefault() {
	ctx := context.Background()
	suite.seedCompany("co-1")

	req := dto.AddCurrencyRequest{
		Code:           "USD",
		ConversionRate: dec("42"), // ignored for the first currency
		DecimalPlaces:  2,
		DisplayFormat:  string(domain.FormatCommaDot),
	}
	currency, err := suite.service.AddCurrency(ctx, "co-1", req, testUserID)

	suite.Require().NoError(err)
	suite.True(currency.IsDefault)
	suite.True(currency.ConversionRate.Equal(decimal.NewFromInt(1)))
	suite.Equal("USD", suite.store.companies["co-1"].DefaultCurrencyCode)
	suite.assertInvariants("co-1")
}

func (suite *CurrencyServiceTestSuite) TestAddCurrency_SecondKeepsRate() {
	ctx := context.Background()
	suite.seedCompany("co-1")
	suite.seedCurrency("co-1", "USD", "1", true)

	req := dto.AddCurrencyRequest{
		Code:           "EUR",
		ConversionRate: dec("0.9"),
		DecimalPlaces:  2,
		DisplayFormat:  string(domain.FormatDotComma),
	}
	currency, err := suite.service.AddCurrency(ctx, "co-1", req, testUserID)

	suite.Require().NoError(err)
	suite.False(currency.IsDefault)
	suite.True(currency.ConversionRate.Equal(dec("0.9")))
	suite.assertInvariants("co-1")
}

func (suite *CurrencyServiceTestSuite) TestAddCurrency_Duplicate() {
	ctx := context.Background()
	suite.seedCompany("co-1")
	suite.seedCurrency("co-1", "USD", "1", true)

	req := dto.AddCurrencyRequest{
		Code:           "USD",
		ConversionRate: dec("1"),
		DisplayFormat:  string(domain.FormatCommaDot),
	}
	_, err := suite.service.AddCurrency(ctx, "co-1", req, testUserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *CurrencyServiceTestSuite) TestAddCurrency_NegativeRate() {
	ctx := context.Background()
	suite.seedCompany("co-1")

	req := dto.AddCurrencyRequest{
		Code:           "EUR",
		ConversionRate: dec("-0.5"),
		DisplayFormat:  string(domain.FormatCommaDot),
	}
	_, err := suite.service.AddCurrency(ctx, "co-1", req, testUserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CurrencyServiceTestSuite) TestAddCurrency_CompanyNotFound() {
	ctx := context.Background()

	req := dto.AddCurrencyRequest{
		Code:           "EUR",
		ConversionRate: dec("0.9"),
		DisplayFormat:  string(domain.FormatCommaDot),
	}
	_, err := suite.service.AddCurrency(ctx, "missing", req, testUserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Empty(suite.store.currencies)
}

// --- UpdateCurrency / RemoveCurrency ---

func (suite *CurrencyServiceTestSuite) TestUpdateCurrency_DefaultRateRejected() {
	ctx := context.Background()
	suite.seedCompany("co-1")
	suite.seedCurrency("co-1", "USD", "1", true)

	rate := dec("2")
	_, err := suite.service.UpdateCurrency(ctx, "co-1", "USD", dto.UpdateCurrencyRequest{ConversionRate: &rate}, testUserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.True(suite.currency("co-1", "USD").ConversionRate.Equal(decimal.NewFromInt(1)))
}

func (suite *CurrencyServiceTestSuite) TestUpdateCurrency_NonDefaultRate() {
	ctx := context.Background()
	suite.seedCompany("co-1")
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "EUR", "0.9", false)

	rate := dec("0.95")
	updated, err := suite.service.UpdateCurrency(ctx, "co-1", "EUR", dto.UpdateCurrencyRequest{ConversionRate: &rate}, testUserID)

	suite.Require().NoError(err)
	suite.True(updated.ConversionRate.Equal(dec("0.95")))
	suite.assertInvariants("co-1")
}

func (suite *CurrencyServiceTestSuite) TestRemoveCurrency_DefaultRejected() {
	ctx := context.Background()
	suite.seedCompany("co-1")
	suite.seedCurrency("co-1", "USD", "1", true)

	err := suite.service.RemoveCurrency(ctx, "co-1", "USD", testUserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CurrencyServiceTestSuite) TestRemoveCurrency_CascadesDatedRates() {
	ctx := context.Background()
	suite.seedCompany("co-1")
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "EUR", "0.9", false)
	suite.seedRate("co-1", "EUR", "2024-01-01", "0.85")
	suite.seedRate("co-1", "EUR", "2024-02-01", "0.88")

	err := suite.service.RemoveCurrency(ctx, "co-1", "EUR", testUserID)

	suite.Require().NoError(err)
	suite.Empty(suite.store.rates)
	_, ok := suite.store.currencies[ckey("co-1", "EUR")]
	suite.False(ok)
}

// --- SetDatedRate / BulkSetDatedRates ---

func (suite *CurrencyServiceTestSuite) TestSetDatedRate_OnDefaultRejected() {
	ctx := context.Background()
	suite.seedCompany("co-1")
	suite.seedCurrency("co-1", "USD", "1", true)

	_, err := suite.service.SetDatedRate(ctx, "co-1", "USD", day("2024-01-01"), dec("1.5"), testUserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Empty(suite.store.rates)
}

func (suite *CurrencyServiceTestSuite) TestSetDatedRate_UpsertOverwrites() {
	ctx := context.Background()
	suite.seedCompany("co-1")
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "EUR", "0.9", false)

	_, err := suite.service.SetDatedRate(ctx, "co-1", "EUR", day("2024-01-01"), dec("0.85"), testUserID)
	suite.Require().NoError(err)

	_, err = suite.service.SetDatedRate(ctx, "co-1", "EUR", day("2024-01-01"), dec("0.87"), testUserID)
	suite.Require().NoError(err)

	suite.Len(suite.store.rates, 1)
	suite.True(suite.datedRate("co-1", "EUR", "2024-01-01").ConversionRate.Equal(dec("0.87")))
	suite.assertInvariants("co-1")
}

func (suite *CurrencyServiceTestSuite) TestBulkSetDatedRates_Success() {
	ctx := context.Background()
	suite.seedCompany("co-1")
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "EUR", "0.9", false)
	suite.seedCurrency("co-1", "GBP", "0.8", false)

	saved, err := suite.service.BulkSetDatedRates(ctx, "co-1", day("2024-03-01"), map[string]decimal.Decimal{
		"EUR": dec("0.92"),
		"GBP": dec("0.79"),
	}, testUserID)

	suite.Require().NoError(err)
	suite.Len(saved, 2)
	suite.True(suite.datedRate("co-1", "EUR", "2024-03-01").ConversionRate.Equal(dec("0.92")))
	suite.True(suite.datedRate("co-1", "GBP", "2024-03-01").ConversionRate.Equal(dec("0.79")))
	suite.assertInvariants("co-1")
}

func (suite *CurrencyServiceTestSuite) TestBulkSetDatedRates_ConflictRejectsAll() {
	ctx := context.Background()
	suite.seedCompany("co-1")
	suite.seedCurrency("co-1", "USD", "1", true)
	for _, code := range []string{"AAA", "BBB", "CCC", "DDD", "EEE"} {
		suite.seedCurrency("co-1", code, "2", false)
	}
	// CCC already has a rate recorded at the batch date.
	suite.seedRate("co-1", "CCC", "2024-03-01", "2.5")

	_, err := suite.service.BulkSetDatedRates(ctx, "co-1", day("2024-03-01"), map[string]decimal.Decimal{
		"AAA": dec("2.1"),
		"BBB": dec("2.2"),
		"CCC": dec("2.3"),
		"DDD": dec("2.4"),
		"EEE": dec("2.5"),
	}, testUserID)

	suite.Require().Error(err)
	var conflictErr *apperrors.BulkRateConflictError
	suite.Require().ErrorAs(err, &conflictErr)
	suite.Equal([]string{"CCC"}, conflictErr.Conflicts)
	suite.ErrorIs(err, apperrors.ErrDuplicate)

	// Nothing from the batch was persisted; the pre-existing rate is intact.
	suite.Len(suite.store.rates, 1)
	suite.True(suite.datedRate("co-1", "CCC", "2024-03-01").ConversionRate.Equal(dec("2.5")))
}

func (suite *CurrencyServiceTestSuite) TestBulkSetDatedRates_DefaultRejected() {
	ctx := context.Background()
	suite.seedCompany("co-1")
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "EUR", "0.9", false)

	_, err := suite.service.BulkSetDatedRates(ctx, "co-1", day("2024-03-01"), map[string]decimal.Decimal{
		"EUR": dec("0.92"),
		"USD": dec("1"),
	}, testUserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Empty(suite.store.rates)
}

// --- ChangeDefaultCurrency ---

func (suite *CurrencyServiceTestSuite) TestChangeDefaultCurrency_ExampleScenario() {
	ctx := context.Background()
	suite.seedCompany("co-1")
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "EUR", "0.9", false)
	suite.seedCurrency("co-1", "GBP", "0.8", false)
	suite.seedRate("co-1", "EUR", "2024-01-01", "0.85")

	result, err := suite.service.ChangeDefaultCurrency(ctx, "co-1", "EUR", testUserID)

	suite.Require().NoError(err)
	suite.False(result.AlreadyDefault)
	suite.Equal("EUR", result.DefaultCurrencyCode)

	eur := suite.currency("co-1", "EUR")
	suite.True(eur.IsDefault)
	suite.True(eur.ConversionRate.Equal(decimal.NewFromInt(1)))

	usd := suite.currency("co-1", "USD")
	suite.False(usd.IsDefault)
	suite.assertDecimalEqual(decimal.NewFromInt(1).Div(dec("0.9")), usd.ConversionRate)

	gbp := suite.currency("co-1", "GBP")
	suite.assertDecimalEqual(dec("0.8").Div(dec("0.9")), gbp.ConversionRate)

	// EUR's dated history is gone; USD gained the inverted override.
	for _, rate := range suite.store.rates {
		suite.NotEqual("EUR", rate.CurrencyCode)
	}
	usdOverride := suite.datedRate("co-1", "USD", "2024-01-01")
	suite.assertDecimalEqual(decimal.NewFromInt(1).Div(dec("0.85")), usdOverride.ConversionRate)

	suite.Equal("EUR", suite.store.companies["co-1"].DefaultCurrencyCode)
	suite.assertInvariants("co-1")
}

func (suite *CurrencyServiceTestSuite) TestChangeDefaultCurrency_DatedRatesRebased() {
	ctx := context.Background()
	suite.seedCompany("co-1")
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "EUR", "0.9", false)
	suite.seedCurrency("co-1", "GBP", "0.8", false)
	suite.seedRate("co-1", "EUR", "2024-01-01", "0.85")
	suite.seedRate("co-1", "GBP", "2024-01-01", "0.78")
	suite.seedRate("co-1", "GBP", "2024-02-01", "0.81")

	_, err := suite.service.ChangeDefaultCurrency(ctx, "co-1", "EUR", testUserID)
	suite.Require().NoError(err)

	// 2024-01-01 had a EUR snapshot entry, so it divides by 0.85; 2024-02-01
	// had none and falls back to the static factor 0.9.
	suite.assertDecimalEqual(dec("0.78").Div(dec("0.85")), suite.datedRate("co-1", "GBP", "2024-01-01").ConversionRate)
	suite.assertDecimalEqual(dec("0.81").Div(dec("0.9")), suite.datedRate("co-1", "GBP", "2024-02-01").ConversionRate)
	suite.assertDecimalEqual(decimal.NewFromInt(1).Div(dec("0.85")), suite.datedRate("co-1", "USD", "2024-01-01").ConversionRate)
	suite.assertDecimalEqual(decimal.NewFromInt(1).Div(dec("0.9")), suite.datedRate("co-1", "USD", "2024-02-01").ConversionRate)
	suite.assertInvariants("co-1")
}

func (suite *CurrencyServiceTestSuite) TestChangeDefaultCurrency_AlreadyDefault() {
	ctx := context.Background()
	suite.seedCompany("co-1")
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "EUR", "0.9", false)
	suite.seedRate("co-1", "EUR", "2024-01-01", "0.85")

	result, err := suite.service.ChangeDefaultCurrency(ctx, "co-1", "USD", testUserID)

	suite.Require().NoError(err)
	suite.True(result.AlreadyDefault)
	suite.Equal("USD", result.DefaultCurrencyCode)
	suite.True(suite.currency("co-1", "EUR").ConversionRate.Equal(dec("0.9")))
	suite.True(suite.datedRate("co-1", "EUR", "2024-01-01").ConversionRate.Equal(dec("0.85")))
}

func (suite *CurrencyServiceTestSuite) TestChangeDefaultCurrency_RoundTrip() {
	ctx := context.Background()
	suite.seedCompany("co-1")
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "EUR", "0.85", false)
	suite.seedCurrency("co-1", "GBP", "0.75", false)
	suite.seedRate("co-1", "EUR", "2024-01-01", "0.9")
	suite.seedRate("co-1", "GBP", "2024-01-01", "0.77")

	_, err := suite.service.ChangeDefaultCurrency(ctx, "co-1", "EUR", testUserID)
	suite.Require().NoError(err)
	suite.assertInvariants("co-1")

	_, err = suite.service.ChangeDefaultCurrency(ctx, "co-1", "USD", testUserID)
	suite.Require().NoError(err)
	suite.assertInvariants("co-1")

	suite.assertDecimalEqual(dec("0.85"), suite.currency("co-1", "EUR").ConversionRate)
	suite.assertDecimalEqual(dec("0.75"), suite.currency("co-1", "GBP").ConversionRate)
	suite.True(suite.currency("co-1", "USD").ConversionRate.Equal(decimal.NewFromInt(1)))
	suite.assertDecimalEqual(dec("0.9"), suite.datedRate("co-1", "EUR", "2024-01-01").ConversionRate)
	suite.assertDecimalEqual(dec("0.77"), suite.datedRate("co-1", "GBP", "2024-01-01").ConversionRate)
}

func (suite *CurrencyServiceTestSuite) TestChangeDefaultCurrency_CrossRatePreserved() {
	ctx := context.Background()
	suite.seedCompany("co-1")
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "EUR", "0.9", false)
	suite.seedCurrency("co-1", "GBP", "0.8", false)

	// GBP per EUR before the pivot.
	before := suite.currency("co-1", "GBP").ConversionRate.Div(suite.currency("co-1", "EUR").ConversionRate)

	_, err := suite.service.ChangeDefaultCurrency(ctx, "co-1", "EUR", testUserID)
	suite.Require().NoError(err)

	after := suite.currency("co-1", "GBP").ConversionRate.Div(suite.currency("co-1", "EUR").ConversionRate)
	suite.assertDecimalEqual(before, after)
}

func (suite *CurrencyServiceTestSuite) TestChangeDefaultCurrency_ZeroRate() {
	ctx := context.Background()
	suite.seedCompany("co-1")
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "XXX", "0", false)

	_, err := suite.service.ChangeDefaultCurrency(ctx, "co-1", "XXX", testUserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDivisionByZero)
	// No partial rebase.
	suite.True(suite.currency("co-1", "USD").IsDefault)
	suite.True(suite.currency("co-1", "USD").ConversionRate.Equal(decimal.NewFromInt(1)))
}

func (suite *CurrencyServiceTestSuite) TestChangeDefaultCurrency_InactiveRejected() {
	ctx := context.Background()
	suite.seedCompany("co-1")
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "EUR", "0.9", false)
	currency := suite.store.currencies[ckey("co-1", "EUR")]
	currency.IsActive = false
	suite.store.currencies[ckey("co-1", "EUR")] = currency

	_, err := suite.service.ChangeDefaultCurrency(ctx, "co-1", "EUR", testUserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CurrencyServiceTestSuite) TestChangeDefaultCurrency_NotFound() {
	ctx := context.Background()
	suite.seedCompany("co-1")
	suite.seedCurrency("co-1", "USD", "1", true)

	_, err := suite.service.ChangeDefaultCurrency(ctx, "co-1", "ZZZ", testUserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- Run Suite ---
func TestCurrencyService(t *testing.T) {
	suite.Run(t, new(CurrencyServiceTestSuite))
}
