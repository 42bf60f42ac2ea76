package services_test

import (
	"context"
	"testing"

	"github.com/finkit/currency_rates_app/internal/apperrors"
	portssvc "github.com/finkit/currency_rates_app/internal/core/ports/services"
	"github.com/finkit/currency_rates_app/internal/core/services"
	"github.com/finkit/currency_rates_app/internal/dto"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite ---
type CompanyServiceTestSuite struct {
	suite.Suite
	store   *fakeStore
	service portssvc.CompanySvcFacade
}

func (suite *CompanyServiceTestSuite) SetupTest() {
	suite.store = newFakeStore()
	suite.service = services.NewCompanyService(suite.store)
}

func (suite *CompanyServiceTestSuite) TestCreateCompany_Success() {
	ctx := context.Background()

	company, err := suite.service.CreateCompany(ctx, dto.CreateCompanyRequest{Name: "Acme"}, testUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(company)
	suite.NotEmpty(company.CompanyID)
	suite.Equal("Acme", company.Name)
	suite.True(company.IsActive)
	suite.Empty(company.DefaultCurrencyCode, "a new company has no default currency yet")
	suite.Equal(testUserID, company.CreatedBy)

	stored, ok := suite.store.companies[company.CompanyID]
	suite.True(ok)
	suite.Equal("Acme", stored.Name)
}

func (suite *CompanyServiceTestSuite) TestGetCompanyByID_Success() {
	ctx := context.Background()
	created, err := suite.service.CreateCompany(ctx, dto.CreateCompanyRequest{Name: "Acme"}, testUserID)
	suite.Require().NoError(err)

	company, err := suite.service.GetCompanyByID(ctx, created.CompanyID)

	suite.Require().NoError(err)
	suite.Equal(created.CompanyID, company.CompanyID)
}

func (suite *CompanyServiceTestSuite) TestGetCompanyByID_NotFound() {
	ctx := context.Background()

	company, err := suite.service.GetCompanyByID(ctx, "missing")

	suite.Require().Error(err)
	suite.Nil(company)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- Run Suite ---
func TestCompanyService(t *testing.T) {
	suite.Run(t, new(CompanyServiceTestSuite))
}
