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
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// cutoffPageSize bounds how many unbilled consumptions one collection page
// pulls. The cursor makes the walk restartable, so the size only trades
// round-trips for memory.
const cutoffPageSize = 500

// billingService is the cutoff engine. Each run collects one company's (or
// provider's) unbilled consumptions into exactly one document; an empty
// period produces no document at all, which is what makes reruns idempotent.
type billingService struct {
	BaseService
	consumptionRepo portsrepo.ConsumptionRepositoryFacade
	documentRepo    portsrepo.DocumentRepositoryFacade
	companyRepo     portsrepo.CompanyReader
	providerRepo    portsrepo.ProviderReader
}

var _ portssvc.BillingSvcFacade = (*billingService)(nil)

// NewBillingService creates a new billing service.
func NewBillingService(
	consumptionRepo portsrepo.ConsumptionRepositoryFacade,
	documentRepo portsrepo.DocumentRepositoryFacade,
	companyRepo portsrepo.CompanyReader,
	providerRepo portsrepo.ProviderReader,
) portssvc.BillingSvcFacade {
	return &billingService{
		consumptionRepo: consumptionRepo,
		documentRepo:    documentRepo,
		companyRepo:     companyRepo,
		providerRepo:    providerRepo,
	}
}

func (s *billingService) RunCutoff(ctx context.Context, companyID string, asOf time.Time, userID string) (*domain.ReceivableDocument, error) {
	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	periodFrom, err := s.nextReceivablePeriodFrom(ctx, company)
	if err != nil {
		return nil, err
	}
	if asOf.Before(periodFrom) {
		// The previous document already covers asOf. Rerunning the same
		// cutoff lands here and is a no-op, not a duplicate.
		s.LogDebug(ctx, "Cutoff already covered by previous period",
			slog.String("company_id", companyID),
			slog.Time("as_of", asOf))
		return nil, nil
	}

	var (
		consumptionIDs []string
		total          = decimal.Zero
		token          *string
	)
	for {
		page, next, err := s.consumptionRepo.ListUnbilledByCompany(ctx, companyID, asOf, cutoffPageSize, token)
		if err != nil {
			s.LogError(ctx, err, "Failed to collect unbilled consumptions", slog.String("company_id", companyID))
			return nil, err
		}
		for i := range page {
			consumptionIDs = append(consumptionIDs, page[i].ConsumptionID)
			total = total.Add(page[i].Amount)
		}
		if next == nil {
			break
		}
		token = next
	}

	if len(consumptionIDs) == 0 {
		s.LogInfo(ctx, "Cutoff found nothing to bill", slog.String("company_id", companyID), slog.Time("as_of", asOf))
		return nil, nil
	}

	// Document dates follow the cutoff date, not the wall clock: a backdated
	// or scheduled run must issue and come due relative to asOf.
	now := time.Now()
	doc := domain.ReceivableDocument{
		ReceivableID: uuid.NewString(),
		CompanyID:    companyID,
		Period:       domain.Period{From: periodFrom, To: asOf},
		Total:        total,
		Paid:         decimal.Zero,
		Status:       domain.StatusPending,
		IssuedAt:     asOf,
		DueAt:        asOf.AddDate(0, 0, company.GracePeriodDays),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	// All-or-nothing: the document and every consumption link land together
	// or not at all. A consumption reversed between collection and commit
	// fails the whole run with ErrConflict; the caller just reruns.
	if err := s.documentRepo.CreateReceivableWithConsumptions(ctx, doc, consumptionIDs); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to create receivable document", slog.String("company_id", companyID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Receivable document issued",
		slog.String("receivable_id", doc.ReceivableID),
		slog.String("company_id", companyID),
		slog.Int("consumptions", len(consumptionIDs)),
		slog.String("total", total.String()))
	return &doc, nil
}

func (s *billingService) RunProviderCutoff(ctx context.Context, providerID string, asOf time.Time, userID string) (*domain.PayableDocument, error) {
	provider, err := s.providerRepo.FindProviderByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	periodFrom, err := s.nextPayablePeriodFrom(ctx, provider)
	if err != nil {
		return nil, err
	}
	if asOf.Before(periodFrom) {
		s.LogDebug(ctx, "Provider cutoff already covered by previous period",
			slog.String("provider_id", providerID),
			slog.Time("as_of", asOf))
		return nil, nil
	}

	var (
		consumptionIDs []string
		gross          = decimal.Zero
		token          *string
	)
	for {
		page, next, err := s.consumptionRepo.ListUnbilledByProvider(ctx, providerID, asOf, cutoffPageSize, token)
		if err != nil {
			s.LogError(ctx, err, "Failed to collect provider consumptions", slog.String("provider_id", providerID))
			return nil, err
		}
		for i := range page {
			consumptionIDs = append(consumptionIDs, page[i].ConsumptionID)
			gross = gross.Add(page[i].Amount)
		}
		if next == nil {
			break
		}
		token = next
	}

	if len(consumptionIDs) == 0 {
		s.LogInfo(ctx, "Provider cutoff found nothing to settle", slog.String("provider_id", providerID), slog.Time("as_of", asOf))
		return nil, nil
	}

	// The rate is frozen into the document here; later rate edits on the
	// provider never touch issued payables.
	commission := domain.ComputeCommission(gross, provider.CommissionRate)
	now := time.Now()
	doc := domain.PayableDocument{
		PayableID:      uuid.NewString(),
		ProviderID:     providerID,
		Period:         domain.Period{From: periodFrom, To: asOf},
		Gross:          gross,
		CommissionRate: provider.CommissionRate,
		Commission:     commission,
		Total:          gross.Sub(commission),
		Paid:           decimal.Zero,
		Status:         domain.StatusPending,
		IssuedAt:       asOf,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.documentRepo.CreatePayableWithConsumptions(ctx, doc, consumptionIDs); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to create payable document", slog.String("provider_id", providerID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Payable document issued",
		slog.String("payable_id", doc.PayableID),
		slog.String("provider_id", providerID),
		slog.Int("consumptions", len(consumptionIDs)),
		slog.String("gross", gross.String()),
		slog.String("commission", commission.String()))
	return &doc, nil
}

// nextReceivablePeriodFrom derives where this run's period starts: the day
// after the latest document's period end, or the company's creation when it
// has never been billed. Deriving instead of accepting a caller-supplied
// start is what keeps periods contiguous and disjoint.
func (s *billingService) nextReceivablePeriodFrom(ctx context.Context, company *domain.Company) (time.Time, error) {
	latest, err := s.documentRepo.FindLatestReceivableByCompany(ctx, company.CompanyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return company.CreatedAt, nil
		}
		return time.Time{}, fmt.Errorf("failed to find latest receivable for company %s: %w", company.CompanyID, err)
	}
	return latest.Period.To.AddDate(0, 0, 1), nil
}

func (s *billingService) nextPayablePeriodFrom(ctx context.Context, provider *domain.Provider) (time.Time, error) {
	latest, err := s.documentRepo.FindLatestPayableByProvider(ctx, provider.ProviderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return provider.CreatedAt, nil
		}
		return time.Time{}, fmt.Errorf("failed to find latest payable for provider %s: %w", provider.ProviderID, err)
	}
	return latest.Period.To.AddDate(0, 0, 1), nil
}
