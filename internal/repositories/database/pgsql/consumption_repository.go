package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	portsrepo "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/repositories"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxConsumptionRepository struct {
	BaseRepository
}

var _ portsrepo.ConsumptionRepositoryFacade = (*PgxConsumptionRepository)(nil)

// newPgxConsumptionRepository creates a new repository for the consumption journal.
func newPgxConsumptionRepository(pool *pgxpool.Pool) *PgxConsumptionRepository {
	return &PgxConsumptionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

const consumptionColumns = `consumption_id, sequence, employee_id, company_id, provider_id, amount, consumed_at, note, reversed, receivable_id, payable_id, created_at, created_by, last_updated_at, last_updated_by`

func scanConsumption(row pgx.Row) (*domain.Consumption, error) {
	var c domain.Consumption
	var receivableID, payableID sql.NullString
	err := row.Scan(
		&c.ConsumptionID,
		&c.Sequence,
		&c.EmployeeID,
		&c.CompanyID,
		&c.ProviderID,
		&c.Amount,
		&c.ConsumedAt,
		&c.Note,
		&c.Reversed,
		&receivableID,
		&payableID,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if receivableID.Valid {
		c.ReceivableID = &receivableID.String
	}
	if payableID.Valid {
		c.PayableID = &payableID.String
	}
	return &c, nil
}

func (r *PgxConsumptionRepository) ApplyDebit(ctx context.Context, consumption domain.Consumption, enforceLimit bool) (*domain.Consumption, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	// Lock the employee row. The guard below then reads committed state and
	// no raced debit can spend the same availability twice.
	var available decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT available_balance FROM employees WHERE employee_id = $1 FOR UPDATE;
	`, consumption.EmployeeID).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: employee %s", apperrors.ErrNotFound, consumption.EmployeeID)
		}
		return nil, fmt.Errorf("failed to lock employee %s: %w", consumption.EmployeeID, err)
	}

	if enforceLimit && consumption.Amount.GreaterThan(available) {
		return nil, &apperrors.InsufficientCreditError{
			EmployeeID: consumption.EmployeeID,
			Requested:  consumption.Amount,
			Available:  available,
		}
	}

	// sequence is a BIGSERIAL assigned by the database; it is the billing
	// tie-break for consumptions sharing a timestamp.
	err = tx.QueryRow(ctx, `
		INSERT INTO consumptions (consumption_id, employee_id, company_id, provider_id, amount, consumed_at, note, reversed, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, $9, $10, $11)
		RETURNING sequence;
	`,
		consumption.ConsumptionID,
		consumption.EmployeeID,
		consumption.CompanyID,
		consumption.ProviderID,
		consumption.Amount,
		consumption.ConsumedAt,
		consumption.Note,
		consumption.CreatedAt,
		consumption.CreatedBy,
		consumption.LastUpdatedAt,
		consumption.LastUpdatedBy,
	).Scan(&consumption.Sequence)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: consumption %s", apperrors.ErrDuplicate, consumption.ConsumptionID)
		}
		return nil, fmt.Errorf("failed to insert consumption %s: %w", consumption.ConsumptionID, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE employees
		SET available_balance = available_balance - $2, last_updated_at = $3, last_updated_by = $4
		WHERE employee_id = $1;
	`, consumption.EmployeeID, consumption.Amount, consumption.CreatedAt, consumption.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to debit employee %s: %w", consumption.EmployeeID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &consumption, nil
}

func (r *PgxConsumptionRepository) MarkReversed(ctx context.Context, consumption domain.Consumption, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Guarded flip: only an unbilled, non-reversed row qualifies. A raced
	// reversal or cutoff leaves zero rows affected.
	tag, err := tx.Exec(ctx, `
		UPDATE consumptions
		SET reversed = TRUE, last_updated_at = $2, last_updated_by = $3
		WHERE consumption_id = $1 AND reversed = FALSE AND receivable_id IS NULL;
	`, consumption.ConsumptionID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to reverse consumption %s: %w", consumption.ConsumptionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: consumption %s changed since read", apperrors.ErrConflict, consumption.ConsumptionID)
	}

	_, err = tx.Exec(ctx, `
		UPDATE employees
		SET available_balance = available_balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE employee_id = $1;
	`, consumption.EmployeeID, consumption.Amount, now, userID)
	if err != nil {
		return fmt.Errorf("failed to restore balance for employee %s: %w", consumption.EmployeeID, err)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxConsumptionRepository) FindConsumptionByID(ctx context.Context, consumptionID string) (*domain.Consumption, error) {
	query := `SELECT ` + consumptionColumns + ` FROM consumptions WHERE consumption_id = $1;`
	consumption, err := scanConsumption(r.Pool.QueryRow(ctx, query, consumptionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: consumption %s", apperrors.ErrNotFound, consumptionID)
		}
		return nil, fmt.Errorf("failed to find consumption %s: %w", consumptionID, err)
	}
	return consumption, nil
}

func (r *PgxConsumptionRepository) ListConsumptionsByEmployee(ctx context.Context, employeeID string, limit int, nextToken *string) ([]domain.Consumption, *string, error) {
	query := `
		SELECT ` + consumptionColumns + `
		FROM consumptions
		WHERE employee_id = $1
	`
	args := []any{employeeID}

	if nextToken != nil {
		cursorAt, cursorSeq, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
		}
		query += ` AND (consumed_at, sequence) < ($2, $3)`
		args = append(args, cursorAt, cursorSeq)
	}

	query += fmt.Sprintf(` ORDER BY consumed_at DESC, sequence DESC LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1)

	return r.queryConsumptionPage(ctx, query, args, limit)
}

func (r *PgxConsumptionRepository) ListUnbilledByCompany(ctx context.Context, companyID string, upTo time.Time, limit int, nextToken *string) ([]domain.Consumption, *string, error) {
	query := `
		SELECT ` + consumptionColumns + `
		FROM consumptions
		WHERE company_id = $1 AND reversed = FALSE AND receivable_id IS NULL AND consumed_at <= $2
	`
	args := []any{companyID, upTo}

	if nextToken != nil {
		cursorAt, cursorSeq, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
		}
		query += ` AND (consumed_at, sequence) > ($3, $4)`
		args = append(args, cursorAt, cursorSeq)
	}

	query += fmt.Sprintf(` ORDER BY consumed_at, sequence LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1)

	return r.queryConsumptionPage(ctx, query, args, limit)
}

func (r *PgxConsumptionRepository) ListUnbilledByEmployee(ctx context.Context, employeeID string, upTo time.Time, limit int, nextToken *string) ([]domain.Consumption, *string, error) {
	query := `
		SELECT ` + consumptionColumns + `
		FROM consumptions
		WHERE employee_id = $1 AND reversed = FALSE AND receivable_id IS NULL AND consumed_at <= $2
	`
	args := []any{employeeID, upTo}

	if nextToken != nil {
		cursorAt, cursorSeq, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
		}
		query += ` AND (consumed_at, sequence) > ($3, $4)`
		args = append(args, cursorAt, cursorSeq)
	}

	query += fmt.Sprintf(` ORDER BY consumed_at, sequence LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1)

	return r.queryConsumptionPage(ctx, query, args, limit)
}

func (r *PgxConsumptionRepository) ListUnbilledByProvider(ctx context.Context, providerID string, upTo time.Time, limit int, nextToken *string) ([]domain.Consumption, *string, error) {
	query := `
		SELECT ` + consumptionColumns + `
		FROM consumptions
		WHERE provider_id = $1 AND reversed = FALSE AND payable_id IS NULL AND consumed_at <= $2
	`
	args := []any{providerID, upTo}

	if nextToken != nil {
		cursorAt, cursorSeq, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
		}
		query += ` AND (consumed_at, sequence) > ($3, $4)`
		args = append(args, cursorAt, cursorSeq)
	}

	query += fmt.Sprintf(` ORDER BY consumed_at, sequence LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1)

	return r.queryConsumptionPage(ctx, query, args, limit)
}

// queryConsumptionPage fetches limit+1 rows to detect whether a further page
// exists, and encodes the resume token from the last returned row.
func (r *PgxConsumptionRepository) queryConsumptionPage(ctx context.Context, query string, args []any, limit int) ([]domain.Consumption, *string, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query consumptions: %w", err)
	}
	defer rows.Close()

	consumptions := make([]domain.Consumption, 0, limit)
	for rows.Next() {
		c, err := scanConsumption(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan consumption row: %w", err)
		}
		consumptions = append(consumptions, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var next *string
	if len(consumptions) > limit {
		consumptions = consumptions[:limit]
		last := consumptions[limit-1]
		token := pagination.EncodeCursor(last.ConsumedAt, last.Sequence)
		next = &token
	}
	return consumptions, next, nil
}
