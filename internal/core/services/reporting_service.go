package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	portsrepo "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/repositories"
	portssvc "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/services"
)

// reportingService exposes the console's printable reports. Everything is
// computed on demand from the journal and document tables; nothing is cached
// or materialized.
type reportingService struct {
	BaseService
	repo portsrepo.ReportingRepository
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// NewReportingService creates a new reporting service.
func NewReportingService(repo portsrepo.ReportingRepository) portssvc.ReportingSvcFacade {
	return &reportingService{repo: repo}
}

func (s *reportingService) EmployeeConsumption(ctx context.Context, companyID string, period domain.Period) ([]domain.EmployeeConsumptionRow, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.repo.GetEmployeeConsumptionData(ctx, companyID, period)
	if err != nil {
		s.LogError(ctx, err, "Failed to build employee consumption report", slog.String("company_id", companyID))
		return nil, err
	}
	if rows == nil {
		return []domain.EmployeeConsumptionRow{}, nil
	}
	return rows, nil
}

func (s *reportingService) ProviderSettlement(ctx context.Context, period domain.Period) ([]domain.ProviderSettlementRow, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.repo.GetProviderSettlementData(ctx, period)
	if err != nil {
		s.LogError(ctx, err, "Failed to build provider settlement report")
		return nil, err
	}
	if rows == nil {
		return []domain.ProviderSettlementRow{}, nil
	}
	return rows, nil
}

func (s *reportingService) CompanyExposure(ctx context.Context, companyID string) (*domain.CompanyExposureReport, error) {
	report, err := s.repo.GetCompanyExposureData(ctx, companyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to build company exposure report", slog.String("company_id", companyID))
		return nil, err
	}
	return report, nil
}

func (s *reportingService) ReceivableAgeing(ctx context.Context, asOf time.Time) ([]domain.DocumentAgeingRow, error) {
	rows, err := s.repo.GetReceivableAgeingData(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to build receivable ageing report")
		return nil, err
	}
	if rows == nil {
		return []domain.DocumentAgeingRow{}, nil
	}
	return rows, nil
}
