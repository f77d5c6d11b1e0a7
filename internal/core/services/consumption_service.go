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
)

const defaultConsumptionPageSize = 50

// consumptionService implements the consumption journal: debits, reversals
// and the unbilled feed consumed by the cutoff engine.
type consumptionService struct {
	BaseService
	repo         portsrepo.ConsumptionRepositoryFacade
	employeeRepo portsrepo.EmployeeReader
	companyRepo  portsrepo.CompanyReader
	providerRepo portsrepo.ProviderReader
}

var _ portssvc.ConsumptionSvcFacade = (*consumptionService)(nil)

// NewConsumptionService creates a new consumption service.
func NewConsumptionService(
	repo portsrepo.ConsumptionRepositoryFacade,
	employeeRepo portsrepo.EmployeeReader,
	companyRepo portsrepo.CompanyReader,
	providerRepo portsrepo.ProviderReader,
) portssvc.ConsumptionSvcFacade {
	return &consumptionService{
		repo:         repo,
		employeeRepo: employeeRepo,
		companyRepo:  companyRepo,
		providerRepo: providerRepo,
	}
}

func (s *consumptionService) Debit(ctx context.Context, req dto.DebitRequest, userID string) (*domain.Consumption, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: debit amount must be positive", apperrors.ErrValidation)
	}

	employee, err := s.employeeRepo.FindEmployeeByID(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !employee.IsActive {
		return nil, fmt.Errorf("%w: employee %s is inactive", apperrors.ErrValidation, req.EmployeeID)
	}

	company, err := s.companyRepo.FindCompanyByID(ctx, employee.CompanyID)
	if err != nil {
		return nil, err
	}
	if !company.IsActive {
		return nil, fmt.Errorf("%w: company %s is inactive", apperrors.ErrValidation, company.CompanyID)
	}

	provider, err := s.providerRepo.FindProviderByID(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}
	if !provider.IsActive {
		return nil, fmt.Errorf("%w: provider %s is inactive", apperrors.ErrValidation, req.ProviderID)
	}

	// Pre-check for a precise error message. The unlimited company pool
	// bypasses the balance guard entirely, consumption just accrues.
	enforceLimit := !company.Unlimited()
	if enforceLimit && req.Amount.GreaterThan(employee.AvailableBalance) {
		return nil, &apperrors.InsufficientCreditError{
			EmployeeID: req.EmployeeID,
			Requested:  req.Amount,
			Available:  employee.AvailableBalance,
		}
	}

	now := time.Now()
	consumedAt := now
	if req.ConsumedAt != nil {
		consumedAt = *req.ConsumedAt
	}

	consumption := domain.Consumption{
		ConsumptionID: uuid.NewString(),
		EmployeeID:    employee.EmployeeID,
		CompanyID:     employee.CompanyID,
		ProviderID:    provider.ProviderID,
		Amount:        req.Amount,
		ConsumedAt:    consumedAt,
		Note:          req.Note,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	// The repository decrements the balance and inserts the journal row in
	// one guarded step, so a raced debit surfaces here as
	// ErrInsufficientCredit rather than a negative balance.
	created, err := s.repo.ApplyDebit(ctx, consumption, enforceLimit)
	if err != nil {
		if !errors.Is(err, apperrors.ErrInsufficientCredit) {
			s.LogError(ctx, err, "Failed to apply debit",
				slog.String("employee_id", req.EmployeeID),
				slog.String("amount", req.Amount.String()))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Consumption debited",
		slog.String("consumption_id", created.ConsumptionID),
		slog.String("employee_id", created.EmployeeID),
		slog.String("provider_id", created.ProviderID),
		slog.String("amount", created.Amount.String()))
	return created, nil
}

func (s *consumptionService) Reverse(ctx context.Context, consumptionID string, userID string) (*domain.Consumption, error) {
	consumption, err := s.repo.FindConsumptionByID(ctx, consumptionID)
	if err != nil {
		return nil, err
	}
	if consumption.Reversed {
		return nil, fmt.Errorf("%w: consumption %s", apperrors.ErrAlreadyReversed, consumptionID)
	}
	if consumption.Billed() {
		// Once aggregated into a receivable the journal row is frozen;
		// corrections belong on the document, not here.
		return nil, fmt.Errorf("%w: consumption %s is on document %s", apperrors.ErrAlreadyBilled, consumptionID, *consumption.ReceivableID)
	}

	if err := s.repo.MarkReversed(ctx, *consumption, userID, time.Now()); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to reverse consumption", slog.String("consumption_id", consumptionID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Consumption reversed",
		slog.String("consumption_id", consumptionID),
		slog.String("amount", consumption.Amount.String()))
	return s.repo.FindConsumptionByID(ctx, consumptionID)
}

func (s *consumptionService) GetConsumptionByID(ctx context.Context, consumptionID string) (*domain.Consumption, error) {
	consumption, err := s.repo.FindConsumptionByID(ctx, consumptionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find consumption", slog.String("consumption_id", consumptionID))
		}
		return nil, err
	}
	return consumption, nil
}

func (s *consumptionService) ListConsumptionsByEmployee(ctx context.Context, employeeID string, params dto.ListConsumptionsParams) (*dto.ListConsumptionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultConsumptionPageSize
	}

	consumptions, next, err := s.repo.ListConsumptionsByEmployee(ctx, employeeID, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list consumptions", slog.String("employee_id", employeeID))
		return nil, err
	}

	return &dto.ListConsumptionsResponse{
		Consumptions: dto.ToConsumptionResponses(consumptions),
		NextToken:    next,
	}, nil
}

func (s *consumptionService) ListUnbilledByEmployee(ctx context.Context, employeeID string, upTo time.Time, params dto.ListConsumptionsParams) (*dto.ListConsumptionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultConsumptionPageSize
	}

	consumptions, next, err := s.repo.ListUnbilledByEmployee(ctx, employeeID, upTo, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list unbilled consumptions", slog.String("employee_id", employeeID))
		return nil, err
	}

	return &dto.ListConsumptionsResponse{
		Consumptions: dto.ToConsumptionResponses(consumptions),
		NextToken:    next,
	}, nil
}

func (s *consumptionService) ListUnbilled(ctx context.Context, companyID string, upTo time.Time, params dto.ListConsumptionsParams) (*dto.ListConsumptionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultConsumptionPageSize
	}

	consumptions, next, err := s.repo.ListUnbilledByCompany(ctx, companyID, upTo, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list unbilled consumptions", slog.String("company_id", companyID))
		return nil, err
	}

	return &dto.ListConsumptionsResponse{
		Consumptions: dto.ToConsumptionResponses(consumptions),
		NextToken:    next,
	}, nil
}
