package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finkit/currency_rates_app/internal/apperrors"
	"github.com/finkit/currency_rates_app/internal/core/domain"
	portsrepo "github.com/finkit/currency_rates_app/internal/core/ports/repositories"
	"github.com/finkit/currency_rates_app/internal/models"
	"github.com/finkit/currency_rates_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const currencyColumns = `currency_id, company_id, code, conversion_rate, is_default, decimal_places, display_format, is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxCurrencyRepository struct {
	baseRepository
}

// NewPgxCurrencyRepository creates a new repository for currency data.
func NewPgxCurrencyRepository(pool *pgxpool.Pool) portsrepo.CurrencyRepositoryFacade {
	return &PgxCurrencyRepository{baseRepository{pool: pool}}
}

func scanCurrency(row pgx.Row) (models.Currency, error) {
	var c models.Currency
	err := row.Scan(
		&c.CurrencyID,
		&c.CompanyID,
		&c.Code,
		&c.ConversionRate,
		&c.IsDefault,
		&c.DecimalPlaces,
		&c.DisplayFormat,
		&c.IsActive,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	return c, err
}

// SaveCurrency inserts a new currency row. A duplicate (company, code) pair
// maps to apperrors.ErrDuplicate.
func (r *PgxCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	model := mapping.ToModelCurrency(currency)
	query := `
		INSERT INTO currencies (` + currencyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.querier(ctx).Exec(ctx, query,
		model.CurrencyID,
		model.CompanyID,
		model.Code,
		model.ConversionRate,
		model.IsDefault,
		model.DecimalPlaces,
		model.DisplayFormat,
		model.IsActive,
		model.CreatedAt,
		model.CreatedBy,
		model.LastUpdatedAt,
		model.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: currency %s already exists for company %s", apperrors.ErrDuplicate, model.Code, model.CompanyID)
		}
		return fmt.Errorf("failed to save currency %s: %w", model.Code, err)
	}
	return nil
}

// FindCurrencyByCode retrieves a company's currency by its code.
func (r *PgxCurrencyRepository) FindCurrencyByCode(ctx context.Context, companyID, code string) (*domain.Currency, error) {
	query := `
		SELECT ` + currencyColumns + `
		FROM currencies
		WHERE company_id = $1 AND code = $2;
	`
	model, err := scanCurrency(r.querier(ctx).QueryRow(ctx, query, companyID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: currency %s for company %s", apperrors.ErrNotFound, code, companyID)
		}
		return nil, fmt.Errorf("failed to find currency by code %s: %w", code, err)
	}

	currency := mapping.ToDomainCurrency(model)
	return &currency, nil
}

// FindDefaultCurrency retrieves the company's currency flagged is_default.
func (r *PgxCurrencyRepository) FindDefaultCurrency(ctx context.Context, companyID string) (*domain.Currency, error) {
	query := `
		SELECT ` + currencyColumns + `
		FROM currencies
		WHERE company_id = $1 AND is_default;
	`
	model, err := scanCurrency(r.querier(ctx).QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: default currency for company %s", apperrors.ErrNotFound, companyID)
		}
		return nil, fmt.Errorf("failed to find default currency for company %s: %w", companyID, err)
	}

	currency := mapping.ToDomainCurrency(model)
	return &currency, nil
}

// ListCurrencies retrieves all currencies of a company, default first, then by code.
func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context, companyID string) ([]domain.Currency, error) {
	query := `
		SELECT ` + currencyColumns + `
		FROM currencies
		WHERE company_id = $1
		ORDER BY is_default DESC, code;
	`
	rows, err := r.querier(ctx).Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	currencies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Currency, error) {
		return scanCurrency(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan currencies: %w", err)
	}

	return mapping.ToDomainCurrencySlice(currencies), nil
}

// UpdateCurrency rewrites an existing currency row.
func (r *PgxCurrencyRepository) UpdateCurrency(ctx context.Context, currency domain.Currency) error {
	model := mapping.ToModelCurrency(currency)
	query := `
		UPDATE currencies
		SET conversion_rate = $3, is_default = $4, decimal_places = $5, display_format = $6, is_active = $7, last_updated_at = $8, last_updated_by = $9
		WHERE company_id = $1 AND code = $2;
	`
	tag, err := r.querier(ctx).Exec(ctx, query,
		model.CompanyID,
		model.Code,
		model.ConversionRate,
		model.IsDefault,
		model.DecimalPlaces,
		model.DisplayFormat,
		model.IsActive,
		model.LastUpdatedAt,
		model.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update currency %s: %w", model.Code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: currency %s for company %s", apperrors.ErrNotFound, model.Code, model.CompanyID)
	}
	return nil
}

// DeleteCurrency removes a currency row.
func (r *PgxCurrencyRepository) DeleteCurrency(ctx context.Context, companyID, code string) error {
	query := `
		DELETE FROM currencies
		WHERE company_id = $1 AND code = $2;
	`
	tag, err := r.querier(ctx).Exec(ctx, query, companyID, code)
	if err != nil {
		return fmt.Errorf("failed to delete currency %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: currency %s for company %s", apperrors.ErrNotFound, code, companyID)
	}
	return nil
}
