package services

import (
	portsrepo "github.com/finkit/currency_rates_app/internal/core/ports/repositories"
	portssvc "github.com/finkit/currency_rates_app/internal/core/ports/services"
)

// NewServiceContainer wires all application services from the repository
// provider. The rate resolver shares the repositories' read sides with the
// currency service and runs against the real clock.
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Company: NewCompanyService(repos.CompanyRepo),
		Currency: NewCurrencyService(
			repos.CompanyRepo,
			repos.CurrencyRepo,
			repos.DatedRateRepo,
			repos.TxManager,
		),
		RateResolver: NewRateResolverService(
			repos.CurrencyRepo,
			repos.DatedRateRepo,
			NewRealClock(),
		),
	}
}
