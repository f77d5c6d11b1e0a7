package repositories

import (
	"context"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EmployeeReader defines read operations for employee data
type EmployeeReader interface {
	// FindEmployeeByID retrieves a specific employee by its unique identifier.
	FindEmployeeByID(ctx context.Context, employeeID string) (*domain.Employee, error)

	// ListEmployeesByCompany retrieves a paginated list of a company's employees.
	ListEmployeesByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.Employee, error)

	// SumAllocatedLimits returns the sum of allocated limits of a company's
	// active employees, excluding excludeEmployeeID when non-empty (used when
	// re-assigning that employee's own limit).
	SumAllocatedLimits(ctx context.Context, companyID string, excludeEmployeeID string) (decimal.Decimal, error)
}

// EmployeeWriter defines write operations for employee data
type EmployeeWriter interface {
	// SaveEmployee persists a new employee.
	SaveEmployee(ctx context.Context, employee domain.Employee) error

	// UpdateEmployee updates an existing employee's descriptive fields.
	UpdateEmployee(ctx context.Context, employee domain.Employee) error

	// DeactivateEmployee marks an employee as inactive.
	DeactivateEmployee(ctx context.Context, employeeID string, userID string, now time.Time) error
}

// EmployeeBalanceSupport defines the mutations on an employee's limit and
// balance. Implementations must serialize these per employee and re-verify
// the company pool under the lock, so a raced assignment can never push the
// sum of allocated limits past the company credit limit.
type EmployeeBalanceSupport interface {
	// AssignLimit commits a new allocated limit and recomputes the available
	// balance preserving the already-consumed amount. Returns ErrCreditExceeded
	// when the limit would overrun the company pool.
	AssignLimit(ctx context.Context, employeeID string, newLimit decimal.Decimal, userID string, now time.Time) error

	// RestoreFullBalances resets availableBalance = allocatedLimit for each
	// employee, without changing the allocated limit. Used by refinancing.
	RestoreFullBalances(ctx context.Context, employeeIDs []string, userID string, now time.Time) error
}

// EmployeeRepositoryFacade combines all employee-related repository interfaces.
type EmployeeRepositoryFacade interface {
	EmployeeReader
	EmployeeWriter
	EmployeeBalanceSupport
}
