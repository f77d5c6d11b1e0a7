package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	portsrepo "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/repositories"
	portssvc "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/services"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// employeeService implements employee master data plus the credit allocation
// manager. Pool checks here give the caller a precise error up front; the
// repository re-verifies the invariant under the employee lock, so two raced
// assignments can never oversubscribe the pool together.
type employeeService struct {
	BaseService
	repo        portsrepo.EmployeeRepositoryFacade
	companyRepo portsrepo.CompanyReader
}

var _ portssvc.EmployeeSvcFacade = (*employeeService)(nil)

// NewEmployeeService creates a new employee service.
func NewEmployeeService(repo portsrepo.EmployeeRepositoryFacade, companyRepo portsrepo.CompanyReader) portssvc.EmployeeSvcFacade {
	return &employeeService{repo: repo, companyRepo: companyRepo}
}

func (s *employeeService) CreateEmployee(ctx context.Context, req dto.CreateEmployeeRequest, userID string) (*domain.Employee, error) {
	company, err := s.companyRepo.FindCompanyByID(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if !company.IsActive {
		return nil, fmt.Errorf("%w: company %s is inactive", apperrors.ErrValidation, req.CompanyID)
	}

	if !company.Unlimited() && req.AllocatedLimit.IsPositive() {
		assigned, err := s.repo.SumAllocatedLimits(ctx, req.CompanyID, "")
		if err != nil {
			s.LogError(ctx, err, "Failed to sum allocated limits", slog.String("company_id", req.CompanyID))
			return nil, err
		}
		available := company.CreditLimit.Sub(assigned)
		if req.AllocatedLimit.GreaterThan(available) {
			return nil, &apperrors.CreditExceededError{
				CompanyID: req.CompanyID,
				Requested: req.AllocatedLimit,
				Available: available,
			}
		}
	}

	now := time.Now()
	employee := domain.Employee{
		EmployeeID:       uuid.NewString(),
		CompanyID:        req.CompanyID,
		Name:             req.Name,
		DocumentNumber:   req.DocumentNumber,
		AllocatedLimit:   req.AllocatedLimit,
		AvailableBalance: req.AllocatedLimit, // Nothing consumed yet
		IsActive:         true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.repo.SaveEmployee(ctx, employee); err != nil {
		if !errors.Is(err, apperrors.ErrCreditExceeded) {
			s.LogError(ctx, err, "Failed to save employee", slog.String("employee_id", employee.EmployeeID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Employee created",
		slog.String("employee_id", employee.EmployeeID),
		slog.String("company_id", employee.CompanyID),
		slog.String("allocated_limit", employee.AllocatedLimit.String()))
	return &employee, nil
}

func (s *employeeService) GetEmployeeByID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	employee, err := s.repo.FindEmployeeByID(ctx, employeeID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find employee", slog.String("employee_id", employeeID))
		}
		return nil, err
	}
	return employee, nil
}

func (s *employeeService) ListEmployeesByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.Employee, error) {
	employees, err := s.repo.ListEmployeesByCompany(ctx, companyID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list employees", slog.String("company_id", companyID))
		return nil, err
	}
	if employees == nil {
		return []domain.Employee{}, nil
	}
	return employees, nil
}

func (s *employeeService) UpdateEmployee(ctx context.Context, employeeID string, req dto.UpdateEmployeeRequest, userID string) (*domain.Employee, error) {
	employee, err := s.repo.FindEmployeeByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		employee.Name = *req.Name
	}
	if req.DocumentNumber != nil {
		employee.DocumentNumber = *req.DocumentNumber
	}
	if req.IsActive != nil {
		employee.IsActive = *req.IsActive
	}
	employee.LastUpdatedAt = time.Now()
	employee.LastUpdatedBy = userID

	if err := s.repo.UpdateEmployee(ctx, *employee); err != nil {
		s.LogError(ctx, err, "Failed to update employee", slog.String("employee_id", employeeID))
		return nil, err
	}

	s.LogInfo(ctx, "Employee updated", slog.String("employee_id", employeeID))
	return employee, nil
}

func (s *employeeService) DeactivateEmployee(ctx context.Context, employeeID string, userID string) error {
	if err := s.repo.DeactivateEmployee(ctx, employeeID, userID, time.Now()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to deactivate employee", slog.String("employee_id", employeeID))
		}
		return err
	}
	s.LogInfo(ctx, "Employee deactivated", slog.String("employee_id", employeeID))
	return nil
}

func (s *employeeService) AvailableToAssign(ctx context.Context, companyID string, excludeEmployeeID string) (decimal.Decimal, bool, error) {
	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		return decimal.Zero, false, err
	}
	if company.Unlimited() {
		return decimal.Zero, true, nil
	}

	assigned, err := s.repo.SumAllocatedLimits(ctx, companyID, excludeEmployeeID)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum allocated limits", slog.String("company_id", companyID))
		return decimal.Zero, false, err
	}
	return company.CreditLimit.Sub(assigned), false, nil
}

func (s *employeeService) AssignLimit(ctx context.Context, employeeID string, newLimit decimal.Decimal, userID string) (*domain.Employee, error) {
	if newLimit.IsNegative() {
		return nil, fmt.Errorf("%w: allocated limit cannot be negative", apperrors.ErrValidation)
	}

	employee, err := s.repo.FindEmployeeByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	available, unlimited, err := s.AvailableToAssign(ctx, employee.CompanyID, employeeID)
	if err != nil {
		return nil, err
	}
	if !unlimited && newLimit.GreaterThan(available) {
		return nil, &apperrors.CreditExceededError{
			CompanyID:  employee.CompanyID,
			EmployeeID: employeeID,
			Requested:  newLimit,
			Available:  available,
		}
	}

	// The repository recomputes availableBalance = newLimit - netConsumed
	// under the employee lock. A limit below the consumed amount is allowed
	// and leaves the balance negative until settlement catches up.
	if err := s.repo.AssignLimit(ctx, employeeID, newLimit, userID, time.Now()); err != nil {
		if !errors.Is(err, apperrors.ErrCreditExceeded) {
			s.LogError(ctx, err, "Failed to assign limit", slog.String("employee_id", employeeID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Employee limit assigned",
		slog.String("employee_id", employeeID),
		slog.String("new_limit", newLimit.String()))
	return s.repo.FindEmployeeByID(ctx, employeeID)
}

func (s *employeeService) RestoreFullBalance(ctx context.Context, employeeID string, userID string) error {
	if err := s.repo.RestoreFullBalances(ctx, []string{employeeID}, userID, time.Now()); err != nil {
		s.LogError(ctx, err, "Failed to restore employee balance", slog.String("employee_id", employeeID))
		return err
	}
	s.LogInfo(ctx, "Employee balance restored", slog.String("employee_id", employeeID))
	return nil
}
