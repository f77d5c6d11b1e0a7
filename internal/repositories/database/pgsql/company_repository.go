package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	portsrepo "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCompanyRepository struct {
	BaseRepository
}

var _ portsrepo.CompanyRepositoryFacade = (*PgxCompanyRepository)(nil)

// newPgxCompanyRepository creates a new repository for company data.
func newPgxCompanyRepository(pool *pgxpool.Pool) *PgxCompanyRepository {
	return &PgxCompanyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

const companyColumns = `company_id, name, tax_id, credit_limit, cutoff_day, grace_period_days, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanCompany(row pgx.Row) (*domain.Company, error) {
	var c domain.Company
	err := row.Scan(
		&c.CompanyID,
		&c.Name,
		&c.TaxID,
		&c.CreditLimit,
		&c.CutoffDay,
		&c.GracePeriodDays,
		&c.IsActive,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgxCompanyRepository) SaveCompany(ctx context.Context, company domain.Company) error {
	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		company.CompanyID,
		company.Name,
		company.TaxID,
		company.CreditLimit,
		company.CutoffDay,
		company.GracePeriodDays,
		company.IsActive,
		company.CreatedAt,
		company.CreatedBy,
		company.LastUpdatedAt,
		company.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: company %s", apperrors.ErrDuplicate, company.CompanyID)
		}
		return fmt.Errorf("failed to save company %s: %w", company.CompanyID, err)
	}
	return nil
}

func (r *PgxCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE company_id = $1;`
	company, err := scanCompany(r.Pool.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: company %s", apperrors.ErrNotFound, companyID)
		}
		return nil, fmt.Errorf("failed to find company %s: %w", companyID, err)
	}
	return company, nil
}

func (r *PgxCompanyRepository) ListCompanies(ctx context.Context, limit int, offset int) ([]domain.Company, error) {
	query := `
		SELECT ` + companyColumns + `
		FROM companies
		ORDER BY created_at, company_id
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := make([]domain.Company, 0)
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company row: %w", err)
		}
		companies = append(companies, *company)
	}
	return companies, rows.Err()
}

func (r *PgxCompanyRepository) UpdateCompany(ctx context.Context, company domain.Company) error {
	query := `
		UPDATE companies
		SET name = $2, tax_id = $3, credit_limit = $4, cutoff_day = $5, grace_period_days = $6,
			is_active = $7, last_updated_at = $8, last_updated_by = $9
		WHERE company_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		company.CompanyID,
		company.Name,
		company.TaxID,
		company.CreditLimit,
		company.CutoffDay,
		company.GracePeriodDays,
		company.IsActive,
		company.LastUpdatedAt,
		company.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update company %s: %w", company.CompanyID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: company %s", apperrors.ErrNotFound, company.CompanyID)
	}
	return nil
}

func (r *PgxCompanyRepository) DeactivateCompany(ctx context.Context, companyID string, userID string, now time.Time) error {
	query := `
		UPDATE companies
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE company_id = $1 AND is_active = TRUE;
	`
	tag, err := r.Pool.Exec(ctx, query, companyID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate company %s: %w", companyID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either missing or already inactive; disambiguate for the caller.
		var exists bool
		if err := r.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM companies WHERE company_id = $1)`, companyID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check company %s: %w", companyID, err)
		}
		if !exists {
			return fmt.Errorf("%w: company %s", apperrors.ErrNotFound, companyID)
		}
		return fmt.Errorf("%w: company %s is already inactive", apperrors.ErrValidation, companyID)
	}
	return nil
}
