package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	portsrepo "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/repositories"
	portssvc "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/services"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/dto"
	"github.com/google/uuid"
)

// companyService implements the company master data operations.
type companyService struct {
	BaseService
	repo                   portsrepo.CompanyRepositoryFacade
	defaultGracePeriodDays int
}

var _ portssvc.CompanySvcFacade = (*companyService)(nil)

// NewCompanyService creates a new company service. defaultGracePeriodDays is
// applied when a company does not define its own grace period.
func NewCompanyService(repo portsrepo.CompanyRepositoryFacade, defaultGracePeriodDays int) portssvc.CompanySvcFacade {
	return &companyService{repo: repo, defaultGracePeriodDays: defaultGracePeriodDays}
}

func (s *companyService) CreateCompany(ctx context.Context, req dto.CreateCompanyRequest, userID string) (*domain.Company, error) {
	now := time.Now()
	grace := req.GracePeriodDays
	if grace == 0 {
		grace = s.defaultGracePeriodDays
	}

	company := domain.Company{
		CompanyID:       uuid.NewString(),
		Name:            req.Name,
		TaxID:           req.TaxID,
		CreditLimit:     req.CreditLimit,
		CutoffDay:       req.CutoffDay,
		GracePeriodDays: grace,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.repo.SaveCompany(ctx, company); err != nil {
		s.LogError(ctx, err, "Failed to save company", slog.String("company_id", company.CompanyID))
		return nil, err
	}

	s.LogInfo(ctx, "Company created", slog.String("company_id", company.CompanyID), slog.String("name", company.Name))
	return &company, nil
}

func (s *companyService) GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	company, err := s.repo.FindCompanyByID(ctx, companyID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find company", slog.String("company_id", companyID))
		}
		return nil, err
	}
	return company, nil
}

func (s *companyService) ListCompanies(ctx context.Context, limit int, offset int) ([]domain.Company, error) {
	companies, err := s.repo.ListCompanies(ctx, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list companies", slog.Int("limit", limit), slog.Int("offset", offset))
		return nil, err
	}
	if companies == nil {
		return []domain.Company{}, nil
	}
	return companies, nil
}

func (s *companyService) UpdateCompany(ctx context.Context, companyID string, req dto.UpdateCompanyRequest, userID string) (*domain.Company, error) {
	company, err := s.repo.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.TaxID != nil {
		company.TaxID = *req.TaxID
	}
	if req.CreditLimit != nil {
		// Lowering the pool below the currently assigned limits is allowed:
		// the console flags the over-allocation, new assignments are blocked
		// until the sum fits again.
		company.CreditLimit = *req.CreditLimit
	}
	if req.CutoffDay != nil {
		company.CutoffDay = *req.CutoffDay
	}
	if req.GracePeriodDays != nil {
		company.GracePeriodDays = *req.GracePeriodDays
	}
	if req.IsActive != nil {
		company.IsActive = *req.IsActive
	}
	company.LastUpdatedAt = time.Now()
	company.LastUpdatedBy = userID

	if err := s.repo.UpdateCompany(ctx, *company); err != nil {
		s.LogError(ctx, err, "Failed to update company", slog.String("company_id", companyID))
		return nil, err
	}

	s.LogInfo(ctx, "Company updated", slog.String("company_id", companyID))
	return company, nil
}

func (s *companyService) DeactivateCompany(ctx context.Context, companyID string, userID string) error {
	if err := s.repo.DeactivateCompany(ctx, companyID, userID, time.Now()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to deactivate company", slog.String("company_id", companyID))
		}
		return err
	}
	s.LogInfo(ctx, "Company deactivated", slog.String("company_id", companyID))
	return nil
}
