package pgsql

import (
	portsrepo "github.com/finkit/currency_rates_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires all pgsql repositories and the transaction
// manager on one shared pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		CompanyRepo:   NewPgxCompanyRepository(pool),
		CurrencyRepo:  NewPgxCurrencyRepository(pool),
		DatedRateRepo: NewPgxDatedRateRepository(pool),
		TxManager:     NewPgxTxManager(pool),
	}
}
