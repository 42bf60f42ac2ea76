package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finkit/currency_rates_app/internal/apperrors"
	"github.com/finkit/currency_rates_app/internal/core/domain"
	portsrepo "github.com/finkit/currency_rates_app/internal/core/ports/repositories"
	"github.com/finkit/currency_rates_app/internal/models"
	"github.com/finkit/currency_rates_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const datedRateColumns = `dated_rate_id, company_id, currency_code, start_date, conversion_rate, created_at, created_by, last_updated_at, last_updated_by`

type PgxDatedRateRepository struct {
	baseRepository
}

// NewPgxDatedRateRepository creates a new repository for dated conversion rates.
func NewPgxDatedRateRepository(pool *pgxpool.Pool) portsrepo.DatedRateRepositoryFacade {
	return &PgxDatedRateRepository{baseRepository{pool: pool}}
}

func scanDatedRate(row pgx.Row) (models.DatedRate, error) {
	var dr models.DatedRate
	err := row.Scan(
		&dr.DatedRateID,
		&dr.CompanyID,
		&dr.CurrencyCode,
		&dr.StartDate,
		&dr.ConversionRate,
		&dr.CreatedAt,
		&dr.CreatedBy,
		&dr.LastUpdatedAt,
		&dr.LastUpdatedBy,
	)
	return dr, err
}

// UpsertDatedRate inserts or overwrites the rate at (company, currency, start date).
func (r *PgxDatedRateRepository) UpsertDatedRate(ctx context.Context, rate domain.DatedRate) error {
	model := mapping.ToModelDatedRate(rate)
	query := `
		INSERT INTO dated_conversion_rates (` + datedRateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (company_id, currency_code, start_date) DO UPDATE SET
			conversion_rate = EXCLUDED.conversion_rate,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.querier(ctx).Exec(ctx, query,
		model.DatedRateID,
		model.CompanyID,
		model.CurrencyCode,
		model.StartDate,
		model.ConversionRate,
		model.CreatedAt,
		model.CreatedBy,
		model.LastUpdatedAt,
		model.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert dated rate for %s at %s: %w",
			model.CurrencyCode, model.StartDate.Format("2006-01-02"), err)
	}
	return nil
}

// FindDatedRate retrieves the dated rate for a (currency, start date) pair.
func (r *PgxDatedRateRepository) FindDatedRate(ctx context.Context, companyID, currencyCode string, startDate time.Time) (*domain.DatedRate, error) {
	query := `
		SELECT ` + datedRateColumns + `
		FROM dated_conversion_rates
		WHERE company_id = $1 AND currency_code = $2 AND start_date = $3;
	`
	model, err := scanDatedRate(r.querier(ctx).QueryRow(ctx, query, companyID, currencyCode, startDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: dated rate for %s at %s", apperrors.ErrNotFound,
				currencyCode, startDate.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("failed to find dated rate for %s: %w", currencyCode, err)
	}

	rate := mapping.ToDomainDatedRate(model)
	return &rate, nil
}

// ListDatedRates retrieves a company's dated rates sorted by start_date
// ascending, narrowed to one currency when currencyCode is non-nil.
func (r *PgxDatedRateRepository) ListDatedRates(ctx context.Context, companyID string, currencyCode *string) ([]domain.DatedRate, error) {
	query := `
		SELECT ` + datedRateColumns + `
		FROM dated_conversion_rates
		WHERE company_id = $1 AND ($2::text IS NULL OR currency_code = $2)
		ORDER BY start_date, currency_code;
	`
	rows, err := r.querier(ctx).Query(ctx, query, companyID, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query dated rates: %w", err)
	}
	defer rows.Close()

	rates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.DatedRate, error) {
		return scanDatedRate(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan dated rates: %w", err)
	}

	return mapping.ToDomainDatedRateSlice(rates), nil
}

// DeleteDatedRatesForCurrency removes every dated rate of one currency.
func (r *PgxDatedRateRepository) DeleteDatedRatesForCurrency(ctx context.Context, companyID, currencyCode string) error {
	query := `
		DELETE FROM dated_conversion_rates
		WHERE company_id = $1 AND currency_code = $2;
	`
	if _, err := r.querier(ctx).Exec(ctx, query, companyID, currencyCode); err != nil {
		return fmt.Errorf("failed to delete dated rates for %s: %w", currencyCode, err)
	}
	return nil
}
