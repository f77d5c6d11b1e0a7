package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	portsrepo "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type employeeRepository struct {
	store *Store
}

var _ portsrepo.EmployeeRepositoryFacade = (*employeeRepository)(nil)

func newEmployeeRepository(store *Store) *employeeRepository {
	return &employeeRepository{store: store}
}

func (r *employeeRepository) SaveEmployee(_ context.Context, employee domain.Employee) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.employees[employee.EmployeeID]; exists {
		return fmt.Errorf("%w: employee %s", apperrors.ErrDuplicate, employee.EmployeeID)
	}
	company, ok := r.store.companies[employee.CompanyID]
	if !ok {
		return fmt.Errorf("%w: company %s", apperrors.ErrNotFound, employee.CompanyID)
	}

	// The service pre-checked the pool against a snapshot; re-verify inside
	// the critical section so raced creations cannot oversubscribe together.
	if !company.Unlimited() && employee.AllocatedLimit.IsPositive() {
		assigned := r.sumAllocatedLimitsLocked(employee.CompanyID, "")
		if assigned.Add(employee.AllocatedLimit).GreaterThan(company.CreditLimit) {
			return &apperrors.CreditExceededError{
				CompanyID: employee.CompanyID,
				Requested: employee.AllocatedLimit,
				Available: company.CreditLimit.Sub(assigned),
			}
		}
	}

	r.store.employees[employee.EmployeeID] = employee
	return nil
}

func (r *employeeRepository) FindEmployeeByID(_ context.Context, employeeID string) (*domain.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	employee, ok := r.store.employees[employeeID]
	if !ok {
		return nil, fmt.Errorf("%w: employee %s", apperrors.ErrNotFound, employeeID)
	}
	return &employee, nil
}

func (r *employeeRepository) ListEmployeesByCompany(_ context.Context, companyID string, limit int, offset int) ([]domain.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	employees := make([]domain.Employee, 0)
	for _, e := range r.store.employees {
		if e.CompanyID == companyID {
			employees = append(employees, e)
		}
	}
	sort.Slice(employees, func(i, j int) bool {
		if !employees[i].CreatedAt.Equal(employees[j].CreatedAt) {
			return employees[i].CreatedAt.Before(employees[j].CreatedAt)
		}
		return employees[i].EmployeeID < employees[j].EmployeeID
	})
	return pageSlice(employees, limit, offset), nil
}

func (r *employeeRepository) SumAllocatedLimits(_ context.Context, companyID string, excludeEmployeeID string) (decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.sumAllocatedLimitsLocked(companyID, excludeEmployeeID), nil
}

// sumAllocatedLimitsLocked assumes the caller holds at least the read lock.
func (r *employeeRepository) sumAllocatedLimitsLocked(companyID string, excludeEmployeeID string) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range r.store.employees {
		if e.CompanyID != companyID || !e.IsActive || e.EmployeeID == excludeEmployeeID {
			continue
		}
		sum = sum.Add(e.AllocatedLimit)
	}
	return sum
}

func (r *employeeRepository) UpdateEmployee(_ context.Context, employee domain.Employee) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.employees[employee.EmployeeID]; !ok {
		return fmt.Errorf("%w: employee %s", apperrors.ErrNotFound, employee.EmployeeID)
	}
	r.store.employees[employee.EmployeeID] = employee
	return nil
}

func (r *employeeRepository) DeactivateEmployee(_ context.Context, employeeID string, userID string, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	employee, ok := r.store.employees[employeeID]
	if !ok {
		return fmt.Errorf("%w: employee %s", apperrors.ErrNotFound, employeeID)
	}
	if !employee.IsActive {
		return fmt.Errorf("%w: employee %s is already inactive", apperrors.ErrValidation, employeeID)
	}
	employee.IsActive = false
	employee.LastUpdatedAt = now
	employee.LastUpdatedBy = userID
	r.store.employees[employeeID] = employee
	return nil
}

func (r *employeeRepository) AssignLimit(_ context.Context, employeeID string, newLimit decimal.Decimal, userID string, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	employee, ok := r.store.employees[employeeID]
	if !ok {
		return fmt.Errorf("%w: employee %s", apperrors.ErrNotFound, employeeID)
	}

	// The service pre-checked the pool, but that check read a snapshot.
	// Re-verify here inside the critical section so raced assignments
	// cannot oversubscribe together.
	company, ok := r.store.companies[employee.CompanyID]
	if !ok {
		return fmt.Errorf("%w: company %s", apperrors.ErrNotFound, employee.CompanyID)
	}
	if !company.Unlimited() {
		assigned := r.sumAllocatedLimitsLocked(employee.CompanyID, employeeID)
		if assigned.Add(newLimit).GreaterThan(company.CreditLimit) {
			return &apperrors.CreditExceededError{
				CompanyID:  employee.CompanyID,
				EmployeeID: employeeID,
				Requested:  newLimit,
				Available:  company.CreditLimit.Sub(assigned),
			}
		}
	}

	// Preserve the consumed amount; a limit below it leaves the balance
	// negative until settlement restores it.
	consumed := employee.NetConsumed()
	employee.AllocatedLimit = newLimit
	employee.AvailableBalance = newLimit.Sub(consumed)
	employee.LastUpdatedAt = now
	employee.LastUpdatedBy = userID
	r.store.employees[employeeID] = employee
	return nil
}

func (r *employeeRepository) RestoreFullBalances(_ context.Context, employeeIDs []string, userID string, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.restoreFullBalancesLocked(employeeIDs, userID, now)
}

// restoreFullBalancesLocked assumes the caller holds the write lock.
func (r *employeeRepository) restoreFullBalancesLocked(employeeIDs []string, userID string, now time.Time) error {
	// Verify everything first so the restore is all-or-nothing.
	for _, id := range employeeIDs {
		if _, ok := r.store.employees[id]; !ok {
			return fmt.Errorf("%w: employee %s", apperrors.ErrNotFound, id)
		}
	}
	for _, id := range employeeIDs {
		employee := r.store.employees[id]
		employee.AvailableBalance = employee.AllocatedLimit
		employee.LastUpdatedAt = now
		employee.LastUpdatedBy = userID
		r.store.employees[id] = employee
	}
	return nil
}
