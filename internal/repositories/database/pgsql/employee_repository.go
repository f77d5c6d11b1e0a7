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
	"github.com/shopspring/decimal"
)

type PgxEmployeeRepository struct {
	BaseRepository
}

var _ portsrepo.EmployeeRepositoryFacade = (*PgxEmployeeRepository)(nil)

// newPgxEmployeeRepository creates a new repository for employee data.
func newPgxEmployeeRepository(pool *pgxpool.Pool) *PgxEmployeeRepository {
	return &PgxEmployeeRepository{BaseRepository: BaseRepository{Pool: pool}}
}

const employeeColumns = `employee_id, company_id, name, document_number, allocated_limit, available_balance, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var e domain.Employee
	err := row.Scan(
		&e.EmployeeID,
		&e.CompanyID,
		&e.Name,
		&e.DocumentNumber,
		&e.AllocatedLimit,
		&e.AvailableBalance,
		&e.IsActive,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PgxEmployeeRepository) SaveEmployee(ctx context.Context, employee domain.Employee) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Lock the company row and re-check the pool inside the insert
	// transaction, so two raced creations cannot both pass a stale sum.
	var creditLimit decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT credit_limit FROM companies WHERE company_id = $1 FOR UPDATE;
	`, employee.CompanyID).Scan(&creditLimit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: company %s", apperrors.ErrNotFound, employee.CompanyID)
		}
		return fmt.Errorf("failed to lock company %s: %w", employee.CompanyID, err)
	}

	if !creditLimit.IsZero() && employee.AllocatedLimit.IsPositive() {
		var assigned decimal.Decimal
		err = tx.QueryRow(ctx, `
			SELECT COALESCE(SUM(allocated_limit), 0)
			FROM employees
			WHERE company_id = $1 AND is_active = TRUE;
		`, employee.CompanyID).Scan(&assigned)
		if err != nil {
			return fmt.Errorf("failed to sum allocated limits for company %s: %w", employee.CompanyID, err)
		}
		if assigned.Add(employee.AllocatedLimit).GreaterThan(creditLimit) {
			return &apperrors.CreditExceededError{
				CompanyID: employee.CompanyID,
				Requested: employee.AllocatedLimit,
				Available: creditLimit.Sub(assigned),
			}
		}
	}

	query := `
		INSERT INTO employees (` + employeeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = tx.Exec(ctx, query,
		employee.EmployeeID,
		employee.CompanyID,
		employee.Name,
		employee.DocumentNumber,
		employee.AllocatedLimit,
		employee.AvailableBalance,
		employee.IsActive,
		employee.CreatedAt,
		employee.CreatedBy,
		employee.LastUpdatedAt,
		employee.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: employee %s", apperrors.ErrDuplicate, employee.EmployeeID)
		}
		return fmt.Errorf("failed to save employee %s: %w", employee.EmployeeID, err)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxEmployeeRepository) FindEmployeeByID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE employee_id = $1;`
	employee, err := scanEmployee(r.Pool.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: employee %s", apperrors.ErrNotFound, employeeID)
		}
		return nil, fmt.Errorf("failed to find employee %s: %w", employeeID, err)
	}
	return employee, nil
}

func (r *PgxEmployeeRepository) ListEmployeesByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE company_id = $1
		ORDER BY created_at, employee_id
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees for company %s: %w", companyID, err)
	}
	defer rows.Close()

	employees := make([]domain.Employee, 0)
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee row: %w", err)
		}
		employees = append(employees, *employee)
	}
	return employees, rows.Err()
}

func (r *PgxEmployeeRepository) SumAllocatedLimits(ctx context.Context, companyID string, excludeEmployeeID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(allocated_limit), 0)
		FROM employees
		WHERE company_id = $1 AND is_active = TRUE AND ($2 = '' OR employee_id != $2);
	`
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, companyID, excludeEmployeeID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum allocated limits for company %s: %w", companyID, err)
	}
	return sum, nil
}

func (r *PgxEmployeeRepository) UpdateEmployee(ctx context.Context, employee domain.Employee) error {
	query := `
		UPDATE employees
		SET name = $2, document_number = $3, is_active = $4, last_updated_at = $5, last_updated_by = $6
		WHERE employee_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		employee.EmployeeID,
		employee.Name,
		employee.DocumentNumber,
		employee.IsActive,
		employee.LastUpdatedAt,
		employee.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update employee %s: %w", employee.EmployeeID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: employee %s", apperrors.ErrNotFound, employee.EmployeeID)
	}
	return nil
}

func (r *PgxEmployeeRepository) DeactivateEmployee(ctx context.Context, employeeID string, userID string, now time.Time) error {
	query := `
		UPDATE employees
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE employee_id = $1 AND is_active = TRUE;
	`
	tag, err := r.Pool.Exec(ctx, query, employeeID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate employee %s: %w", employeeID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM employees WHERE employee_id = $1)`, employeeID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check employee %s: %w", employeeID, err)
		}
		if !exists {
			return fmt.Errorf("%w: employee %s", apperrors.ErrNotFound, employeeID)
		}
		return fmt.Errorf("%w: employee %s is already inactive", apperrors.ErrValidation, employeeID)
	}
	return nil
}

func (r *PgxEmployeeRepository) AssignLimit(ctx context.Context, employeeID string, newLimit decimal.Decimal, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Lock the employee row, then the pool check runs against committed
	// state while no competing assignment can slip in between.
	var companyID string
	var allocated, available decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT company_id, allocated_limit, available_balance
		FROM employees
		WHERE employee_id = $1
		FOR UPDATE;
	`, employeeID).Scan(&companyID, &allocated, &available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: employee %s", apperrors.ErrNotFound, employeeID)
		}
		return fmt.Errorf("failed to lock employee %s: %w", employeeID, err)
	}

	var creditLimit decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT credit_limit FROM companies WHERE company_id = $1 FOR UPDATE;
	`, companyID).Scan(&creditLimit)
	if err != nil {
		return fmt.Errorf("failed to lock company %s: %w", companyID, err)
	}

	if !creditLimit.IsZero() {
		var assigned decimal.Decimal
		err = tx.QueryRow(ctx, `
			SELECT COALESCE(SUM(allocated_limit), 0)
			FROM employees
			WHERE company_id = $1 AND is_active = TRUE AND employee_id != $2;
		`, companyID, employeeID).Scan(&assigned)
		if err != nil {
			return fmt.Errorf("failed to sum allocated limits for company %s: %w", companyID, err)
		}
		if assigned.Add(newLimit).GreaterThan(creditLimit) {
			return &apperrors.CreditExceededError{
				CompanyID:  companyID,
				EmployeeID: employeeID,
				Requested:  newLimit,
				Available:  creditLimit.Sub(assigned),
			}
		}
	}

	// available = newLimit - consumed, where consumed = allocated - available.
	consumed := allocated.Sub(available)
	_, err = tx.Exec(ctx, `
		UPDATE employees
		SET allocated_limit = $2, available_balance = $3, last_updated_at = $4, last_updated_by = $5
		WHERE employee_id = $1;
	`, employeeID, newLimit, newLimit.Sub(consumed), now, userID)
	if err != nil {
		return fmt.Errorf("failed to assign limit for employee %s: %w", employeeID, err)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxEmployeeRepository) RestoreFullBalances(ctx context.Context, employeeIDs []string, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.RestoreFullBalancesInTx(ctx, tx, employeeIDs, userID, now); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// RestoreFullBalancesInTx runs the restore inside a caller-owned transaction.
// The refinancing repository uses it so the restore commits together with the
// source document flip.
func (r *PgxEmployeeRepository) RestoreFullBalancesInTx(ctx context.Context, tx pgx.Tx, employeeIDs []string, userID string, now time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE employees
		SET available_balance = allocated_limit, last_updated_at = $2, last_updated_by = $3
		WHERE employee_id = ANY($1);
	`, employeeIDs, now, userID)
	if err != nil {
		return fmt.Errorf("failed to restore employee balances: %w", err)
	}
	if int(tag.RowsAffected()) != len(employeeIDs) {
		return fmt.Errorf("%w: restored %d of %d employees", apperrors.ErrNotFound, tag.RowsAffected(), len(employeeIDs))
	}
	return nil
}
