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

type PgxProviderRepository struct {
	BaseRepository
}

var _ portsrepo.ProviderRepositoryFacade = (*PgxProviderRepository)(nil)

// newPgxProviderRepository creates a new repository for provider data.
func newPgxProviderRepository(pool *pgxpool.Pool) *PgxProviderRepository {
	return &PgxProviderRepository{BaseRepository: BaseRepository{Pool: pool}}
}

const providerColumns = `provider_id, name, tax_id, commission_rate, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanProvider(row pgx.Row) (*domain.Provider, error) {
	var p domain.Provider
	err := row.Scan(
		&p.ProviderID,
		&p.Name,
		&p.TaxID,
		&p.CommissionRate,
		&p.IsActive,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PgxProviderRepository) SaveProvider(ctx context.Context, provider domain.Provider) error {
	query := `
		INSERT INTO providers (` + providerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		provider.ProviderID,
		provider.Name,
		provider.TaxID,
		provider.CommissionRate,
		provider.IsActive,
		provider.CreatedAt,
		provider.CreatedBy,
		provider.LastUpdatedAt,
		provider.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: provider %s", apperrors.ErrDuplicate, provider.ProviderID)
		}
		return fmt.Errorf("failed to save provider %s: %w", provider.ProviderID, err)
	}
	return nil
}

func (r *PgxProviderRepository) FindProviderByID(ctx context.Context, providerID string) (*domain.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE provider_id = $1;`
	provider, err := scanProvider(r.Pool.QueryRow(ctx, query, providerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: provider %s", apperrors.ErrNotFound, providerID)
		}
		return nil, fmt.Errorf("failed to find provider %s: %w", providerID, err)
	}
	return provider, nil
}

func (r *PgxProviderRepository) ListProviders(ctx context.Context, limit int, offset int) ([]domain.Provider, error) {
	query := `
		SELECT ` + providerColumns + `
		FROM providers
		ORDER BY created_at, provider_id
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	defer rows.Close()

	providers := make([]domain.Provider, 0)
	for rows.Next() {
		provider, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan provider row: %w", err)
		}
		providers = append(providers, *provider)
	}
	return providers, rows.Err()
}

func (r *PgxProviderRepository) UpdateProvider(ctx context.Context, provider domain.Provider) error {
	query := `
		UPDATE providers
		SET name = $2, tax_id = $3, commission_rate = $4, is_active = $5,
			last_updated_at = $6, last_updated_by = $7
		WHERE provider_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		provider.ProviderID,
		provider.Name,
		provider.TaxID,
		provider.CommissionRate,
		provider.IsActive,
		provider.LastUpdatedAt,
		provider.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update provider %s: %w", provider.ProviderID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: provider %s", apperrors.ErrNotFound, provider.ProviderID)
	}
	return nil
}

func (r *PgxProviderRepository) DeactivateProvider(ctx context.Context, providerID string, userID string, now time.Time) error {
	query := `
		UPDATE providers
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE provider_id = $1 AND is_active = TRUE;
	`
	tag, err := r.Pool.Exec(ctx, query, providerID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate provider %s: %w", providerID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM providers WHERE provider_id = $1)`, providerID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check provider %s: %w", providerID, err)
		}
		if !exists {
			return fmt.Errorf("%w: provider %s", apperrors.ErrNotFound, providerID)
		}
		return fmt.Errorf("%w: provider %s is already inactive", apperrors.ErrValidation, providerID)
	}
	return nil
}
