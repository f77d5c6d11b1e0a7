package services

import (
	"context"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// EmployeeReaderSvc defines read operations for employee data
type EmployeeReaderSvc interface {
	// GetEmployeeByID retrieves a specific employee by its ID.
	GetEmployeeByID(ctx context.Context, employeeID string) (*domain.Employee, error)

	// ListEmployeesByCompany retrieves a paginated list of a company's employees.
	ListEmployeesByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.Employee, error)
}

// EmployeeWriterSvc defines write operations for employee master data
type EmployeeWriterSvc interface {
	// CreateEmployee persists a new employee with its initial allocated limit,
	// enforcing the company pool invariant.
	CreateEmployee(ctx context.Context, req dto.CreateEmployeeRequest, userID string) (*domain.Employee, error)

	// UpdateEmployee updates an employee's descriptive fields.
	UpdateEmployee(ctx context.Context, employeeID string, req dto.UpdateEmployeeRequest, userID string) (*domain.Employee, error)

	// DeactivateEmployee marks an employee as inactive, releasing its
	// allocated limit back to the company pool.
	DeactivateEmployee(ctx context.Context, employeeID string, userID string) error
}

// CreditAllocatorSvc is the credit allocation manager: it computes and
// enforces how much of a company's pool is assignable to an employee.
type CreditAllocatorSvc interface {
	// AvailableToAssign returns the unassigned remainder of the company pool.
	// excludeEmployeeID, when non-empty, excludes that employee's current
	// allocation (used when editing it). The second return is true when the
	// company pool is unlimited, in which case the amount is meaningless.
	AvailableToAssign(ctx context.Context, companyID string, excludeEmployeeID string) (decimal.Decimal, bool, error)

	// AssignLimit commits a new allocated limit for the employee and
	// recomputes its available balance preserving the consumed amount.
	// Fails with ErrCreditExceeded when the pool would be overrun.
	AssignLimit(ctx context.Context, employeeID string, newLimit decimal.Decimal, userID string) (*domain.Employee, error)

	// RestoreFullBalance resets the employee's available balance to its
	// allocated limit without changing the limit. Used by refinancing.
	RestoreFullBalance(ctx context.Context, employeeID string, userID string) error
}

// EmployeeSvcFacade combines all employee-related service interfaces.
type EmployeeSvcFacade interface {
	EmployeeReaderSvc
	EmployeeWriterSvc
	CreditAllocatorSvc
}
