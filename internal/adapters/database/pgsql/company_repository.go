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

type PgxCompanyRepository struct {
	baseRepository
}

// NewPgxCompanyRepository creates a new repository for company data.
func NewPgxCompanyRepository(pool *pgxpool.Pool) portsrepo.CompanyRepositoryFacade {
	return &PgxCompanyRepository{baseRepository{pool: pool}}
}

// SaveCompany inserts a new company row.
func (r *PgxCompanyRepository) SaveCompany(ctx context.Context, company domain.Company) error {
	model := mapping.ToModelCompany(company)
	query := `
		INSERT INTO companies (company_id, name, default_currency_code, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8);
	`
	_, err := r.querier(ctx).Exec(ctx, query,
		model.CompanyID,
		model.Name,
		model.DefaultCurrencyCode,
		model.IsActive,
		model.CreatedAt,
		model.CreatedBy,
		model.LastUpdatedAt,
		model.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: company %s", apperrors.ErrDuplicate, model.CompanyID)
		}
		return fmt.Errorf("failed to save company %s: %w", model.CompanyID, err)
	}
	return nil
}

// FindCompanyByID retrieves a company by its ID.
func (r *PgxCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	query := `
		SELECT company_id, name, COALESCE(default_currency_code, ''), is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM companies
		WHERE company_id = $1;
	`
	var model models.Company
	err := r.querier(ctx).QueryRow(ctx, query, companyID).Scan(
		&model.CompanyID,
		&model.Name,
		&model.DefaultCurrencyCode,
		&model.IsActive,
		&model.CreatedAt,
		&model.CreatedBy,
		&model.LastUpdatedAt,
		&model.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: company %s", apperrors.ErrNotFound, companyID)
		}
		return nil, fmt.Errorf("failed to find company by ID %s: %w", companyID, err)
	}

	company := mapping.ToDomainCompany(model)
	return &company, nil
}

// UpdateDefaultCurrencyCode records the company's current default currency code.
func (r *PgxCompanyRepository) UpdateDefaultCurrencyCode(ctx context.Context, companyID, currencyCode string, updatedBy string) error {
	query := `
		UPDATE companies
		SET default_currency_code = $2, last_updated_at = $3, last_updated_by = $4
		WHERE company_id = $1;
	`
	tag, err := r.querier(ctx).Exec(ctx, query, companyID, currencyCode, time.Now(), updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update default currency for company %s: %w", companyID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: company %s", apperrors.ErrNotFound, companyID)
	}
	return nil
}
