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

type PgxRefinancingRepository struct {
	BaseRepository

	// Reused so the source flip and balance restore share the refinancing
	// creation transaction.
	documentRepo *PgxDocumentRepository
	employeeRepo *PgxEmployeeRepository
}

var _ portsrepo.RefinancingRepositoryFacade = (*PgxRefinancingRepository)(nil)

// newPgxRefinancingRepository creates a new repository for refinancings.
func newPgxRefinancingRepository(pool *pgxpool.Pool, documentRepo *PgxDocumentRepository, employeeRepo *PgxEmployeeRepository) *PgxRefinancingRepository {
	return &PgxRefinancingRepository{
		BaseRepository: BaseRepository{Pool: pool},
		documentRepo:   documentRepo,
		employeeRepo:   employeeRepo,
	}
}

const refinancingColumns = `refinancing_id, receivable_id, company_id, original_amount, paid, status, due_at, created_at, created_by, last_updated_at, last_updated_by`

func scanRefinancing(row pgx.Row) (*domain.Refinancing, error) {
	var r domain.Refinancing
	err := row.Scan(
		&r.RefinancingID,
		&r.ReceivableID,
		&r.CompanyID,
		&r.OriginalAmount,
		&r.Paid,
		&r.Status,
		&r.DueAt,
		&r.CreatedAt,
		&r.CreatedBy,
		&r.LastUpdatedAt,
		&r.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *PgxRefinancingRepository) FindRefinancingByID(ctx context.Context, refinancingID string) (*domain.Refinancing, error) {
	query := `SELECT ` + refinancingColumns + ` FROM refinancings WHERE refinancing_id = $1;`
	refinancing, err := scanRefinancing(r.Pool.QueryRow(ctx, query, refinancingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: refinancing %s", apperrors.ErrNotFound, refinancingID)
		}
		return nil, fmt.Errorf("failed to find refinancing %s: %w", refinancingID, err)
	}
	return refinancing, nil
}

func (r *PgxRefinancingRepository) FindRefinancingByReceivable(ctx context.Context, receivableID string) (*domain.Refinancing, error) {
	query := `SELECT ` + refinancingColumns + ` FROM refinancings WHERE receivable_id = $1;`
	refinancing, err := scanRefinancing(r.Pool.QueryRow(ctx, query, receivableID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no refinancing for receivable %s", apperrors.ErrNotFound, receivableID)
		}
		return nil, fmt.Errorf("failed to find refinancing for receivable %s: %w", receivableID, err)
	}
	return refinancing, nil
}

func (r *PgxRefinancingRepository) ListRefinancingsByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.Refinancing, error) {
	query := `
		SELECT ` + refinancingColumns + `
		FROM refinancings
		WHERE company_id = $1
		ORDER BY created_at DESC, refinancing_id
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list refinancings for company %s: %w", companyID, err)
	}
	defer rows.Close()

	refinancings := make([]domain.Refinancing, 0)
	for rows.Next() {
		refinancing, err := scanRefinancing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan refinancing row: %w", err)
		}
		refinancings = append(refinancings, *refinancing)
	}
	return refinancings, rows.Err()
}

func (r *PgxRefinancingRepository) CreateRefinancing(ctx context.Context, refinancing domain.Refinancing, employeeIDs []string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Flip the source first: the guarded transition re-verifies non-terminal
	// state, and a raced payment or void fails the whole creation.
	if err := r.documentRepo.UpdateReceivableStatusInTx(ctx, tx, refinancing.ReceivableID, domain.StatusRefinanced, refinancing.CreatedBy, refinancing.CreatedAt); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO refinancings (`+refinancingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`,
		refinancing.RefinancingID,
		refinancing.ReceivableID,
		refinancing.CompanyID,
		refinancing.OriginalAmount,
		refinancing.Paid,
		refinancing.Status,
		refinancing.DueAt,
		refinancing.CreatedAt,
		refinancing.CreatedBy,
		refinancing.LastUpdatedAt,
		refinancing.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// receivable_id carries a unique constraint: one refinancing per
			// source document.
			return fmt.Errorf("%w: receivable %s already refinanced", apperrors.ErrDuplicate, refinancing.ReceivableID)
		}
		return fmt.Errorf("failed to insert refinancing %s: %w", refinancing.RefinancingID, err)
	}

	if len(employeeIDs) > 0 {
		if err := r.employeeRepo.RestoreFullBalancesInTx(ctx, tx, employeeIDs, refinancing.CreatedBy, refinancing.CreatedAt); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

func (r *PgxRefinancingRepository) ApplyRefinancingPayment(ctx context.Context, payment domain.Payment) (*domain.Refinancing, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	refinancing, err := scanRefinancing(tx.QueryRow(ctx, `SELECT `+refinancingColumns+` FROM refinancings WHERE refinancing_id = $1 FOR UPDATE;`, payment.DocumentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: refinancing %s", apperrors.ErrNotFound, payment.DocumentID)
		}
		return nil, fmt.Errorf("failed to lock refinancing %s: %w", payment.DocumentID, err)
	}
	if err := refinancing.ApplyPayment(payment.Amount); err != nil {
		return nil, err
	}
	refinancing.LastUpdatedAt = payment.PaidAt
	refinancing.LastUpdatedBy = payment.RecordedBy

	_, err = tx.Exec(ctx, `
		UPDATE refinancings
		SET paid = $2, status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE refinancing_id = $1;
	`, refinancing.RefinancingID, refinancing.Paid, refinancing.Status, refinancing.LastUpdatedAt, refinancing.LastUpdatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to update refinancing %s: %w", refinancing.RefinancingID, err)
	}

	if err := insertPayment(ctx, tx, payment); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return refinancing, nil
}

func (r *PgxRefinancingRepository) UpdateRefinancingStatus(ctx context.Context, refinancingID string, status domain.RefinancingStatus, userID string, now time.Time) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE refinancings
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE refinancing_id = $1 AND status NOT IN ('PAID', 'WRITTEN_OFF');
	`, refinancingID, status, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update refinancing %s status: %w", refinancingID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: refinancing %s not transitionable to %s", apperrors.ErrConflict, refinancingID, status)
	}
	return nil
}
