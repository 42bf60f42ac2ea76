package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finkit/currency_rates_app/internal/apperrors"
	"github.com/finkit/currency_rates_app/internal/core/domain"
	portssvc "github.com/finkit/currency_rates_app/internal/core/ports/services"
	"github.com/finkit/currency_rates_app/internal/core/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite ---
type RateResolverServiceTestSuite struct {
	suite.Suite
	store   *fakeStore
	service portssvc.RateResolverSvcFacade
	today   time.Time
}

func (suite *RateResolverServiceTestSuite) SetupTest() {
	suite.store = newFakeStore()
	suite.today = day("2024-06-15")
	suite.service = services.NewRateResolverService(suite.store, suite.store, fixedClock{today: suite.today})
}

func (suite *RateResolverServiceTestSuite) seedCurrency(companyID, code, rate string, isDefault bool) {
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
}

func (suite *RateResolverServiceTestSuite) seedRate(companyID, code, date, rate string) {
	suite.store.rates[rkey(companyID, code, day(date))] = domain.DatedRate{
		DatedRateID:    uuid.NewString(),
		CompanyID:      companyID,
		CurrencyCode:   code,
		StartDate:      day(date),
		ConversionRate: dec(rate),
	}
}

// --- ResolveEffectiveRate ---

func (suite *RateResolverServiceTestSuite) TestResolve_DefaultIsAlwaysOne() {
	ctx := context.Background()
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedRate("co-1", "EUR", "2024-01-01", "0.85")

	rate, err := suite.service.ResolveEffectiveRate(ctx, "co-1", "USD", nil)

	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.NewFromInt(1)))
}

func (suite *RateResolverServiceTestSuite) TestResolve_StaticFallback() {
	ctx := context.Background()
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "EUR", "0.9", false)

	rate, err := suite.service.ResolveEffectiveRate(ctx, "co-1", "EUR", nil)

	suite.Require().NoError(err)
	suite.True(rate.Equal(dec("0.9")))
}

func (suite *RateResolverServiceTestSuite) TestResolve_PicksGreatestStartNotAfter() {
	ctx := context.Background()
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "EUR", "0.9", false)
	suite.seedRate("co-1", "EUR", "2024-01-01", "0.85")
	suite.seedRate("co-1", "EUR", "2024-03-01", "0.87")
	suite.seedRate("co-1", "EUR", "2024-09-01", "0.95")

	tests := []struct {
		name     string
		asOf     string
		expected string
	}{
		{"before any override", "2023-12-31", "0.9"},
		{"on the first start date", "2024-01-01", "0.85"},
		{"between overrides", "2024-02-15", "0.85"},
		{"on a later start date", "2024-03-01", "0.87"},
		{"after the last applicable", "2024-06-01", "0.87"},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			asOf := day(tt.asOf)
			rate, err := suite.service.ResolveEffectiveRate(ctx, "co-1", "EUR", &asOf)
			suite.Require().NoError(err)
			suite.True(rate.Equal(dec(tt.expected)), "expected %s, got %s", tt.expected, rate)
		})
	}
}

func (suite *RateResolverServiceTestSuite) TestResolve_NilAsOfUsesClock() {
	ctx := context.Background()
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "EUR", "0.9", false)
	// Effective exactly at the pinned "today"; a later one must not apply.
	suite.seedRate("co-1", "EUR", "2024-06-15", "0.88")
	suite.seedRate("co-1", "EUR", "2024-06-16", "0.99")

	rate, err := suite.service.ResolveEffectiveRate(ctx, "co-1", "EUR", nil)

	suite.Require().NoError(err)
	suite.True(rate.Equal(dec("0.88")))
}

func (suite *RateResolverServiceTestSuite) TestResolve_InactiveNotFound() {
	ctx := context.Background()
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "EUR", "0.9", false)
	currency := suite.store.currencies[ckey("co-1", "EUR")]
	currency.IsActive = false
	suite.store.currencies[ckey("co-1", "EUR")] = currency

	_, err := suite.service.ResolveEffectiveRate(ctx, "co-1", "EUR", nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *RateResolverServiceTestSuite) TestResolve_UnknownCurrency() {
	ctx := context.Background()
	suite.seedCurrency("co-1", "USD", "1", true)

	_, err := suite.service.ResolveEffectiveRate(ctx, "co-1", "ZZZ", nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- Convert ---

func (suite *RateResolverServiceTestSuite) TestConvert_ViaDefault() {
	ctx := context.Background()
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "EUR", "0.9", false)
	suite.seedCurrency("co-1", "GBP", "0.8", false)

	// 100 EUR -> GBP: 100 * 0.8 / 0.9
	result, err := suite.service.Convert(ctx, "co-1", dec("100"), "EUR", "GBP", nil)

	suite.Require().NoError(err)
	expected := dec("100").Mul(dec("0.8")).Div(dec("0.9"))
	suite.True(result.Equal(expected), "expected %s, got %s", expected, result)
}

func (suite *RateResolverServiceTestSuite) TestConvert_SameCurrency() {
	ctx := context.Background()
	suite.seedCurrency("co-1", "USD", "1", true)

	result, err := suite.service.Convert(ctx, "co-1", dec("42.5"), "USD", "USD", nil)

	suite.Require().NoError(err)
	suite.True(result.Equal(dec("42.5")))
}

func (suite *RateResolverServiceTestSuite) TestConvert_UsesDatedRates() {
	ctx := context.Background()
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "EUR", "0.9", false)
	suite.seedRate("co-1", "EUR", "2024-01-01", "0.85")

	asOf := day("2024-02-01")
	result, err := suite.service.Convert(ctx, "co-1", dec("10"), "USD", "EUR", &asOf)

	suite.Require().NoError(err)
	expected := dec("10").Mul(dec("0.85"))
	suite.True(result.Equal(expected), "expected %s, got %s", expected, result)
}

func (suite *RateResolverServiceTestSuite) TestConvert_ZeroSourceRate() {
	ctx := context.Background()
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "XXX", "0", false)

	_, err := suite.service.Convert(ctx, "co-1", dec("10"), "XXX", "USD", nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDivisionByZero)
}

// --- EffectiveDateRanges ---

func (suite *RateResolverServiceTestSuite) TestDateRanges_NoHistory() {
	ctx := context.Background()
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "EUR", "0.9", false)

	ranges, err := suite.service.EffectiveDateRanges(ctx, "co-1", "EUR")

	suite.Require().NoError(err)
	suite.Require().Len(ranges, 1)
	suite.Nil(ranges[0].EndDate)
	suite.True(ranges[0].Rate.Equal(dec("0.9")))
}

func (suite *RateResolverServiceTestSuite) TestDateRanges_ContiguousPeriods() {
	ctx := context.Background()
	suite.seedCurrency("co-1", "USD", "1", true)
	suite.seedCurrency("co-1", "EUR", "0.9", false)
	suite.seedRate("co-1", "EUR", "2024-01-01", "0.85")
	suite.seedRate("co-1", "EUR", "2024-03-01", "0.87")
	suite.seedRate("co-1", "EUR", "2024-05-01", "0.89")

	ranges, err := suite.service.EffectiveDateRanges(ctx, "co-1", "EUR")

	suite.Require().NoError(err)
	suite.Require().Len(ranges, 3)

	suite.Equal(day("2024-01-01"), ranges[0].StartDate)
	suite.Require().NotNil(ranges[0].EndDate)
	suite.Equal(day("2024-02-29"), *ranges[0].EndDate)
	suite.True(ranges[0].Rate.Equal(dec("0.85")))

	suite.Equal(day("2024-03-01"), ranges[1].StartDate)
	suite.Require().NotNil(ranges[1].EndDate)
	suite.Equal(day("2024-04-30"), *ranges[1].EndDate)

	// The last range is open-ended.
	suite.Equal(day("2024-05-01"), ranges[2].StartDate)
	suite.Nil(ranges[2].EndDate)
	suite.True(ranges[2].Rate.Equal(dec("0.89")))
}

// --- Run Suite ---
func TestRateResolverService(t *testing.T) {
	suite.Run(t, new(RateResolverServiceTestSuite))
}
