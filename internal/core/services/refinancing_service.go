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

// refinancingService converts a broken receivable into a fresh obligation on
// an extended due date, and services that obligation's own payment trail.
type refinancingService struct {
	BaseService
	refinancingRepo portsrepo.RefinancingRepositoryFacade
	documentRepo    portsrepo.DocumentRepositoryFacade
	windowDays      int
}

var _ portssvc.RefinancingSvcFacade = (*refinancingService)(nil)

// NewRefinancingService creates a new refinancing service. windowDays is the
// length of the extended payment window granted on creation.
func NewRefinancingService(
	refinancingRepo portsrepo.RefinancingRepositoryFacade,
	documentRepo portsrepo.DocumentRepositoryFacade,
	windowDays int,
) portssvc.RefinancingSvcFacade {
	return &refinancingService{
		refinancingRepo: refinancingRepo,
		documentRepo:    documentRepo,
		windowDays:      windowDays,
	}
}

func (s *refinancingService) Refinance(ctx context.Context, receivableID string, userID string) (*domain.Refinancing, error) {
	doc, err := s.documentRepo.FindReceivableByID(ctx, receivableID)
	if err != nil {
		return nil, err
	}
	if doc.Status.Terminal() {
		return nil, fmt.Errorf("%w: receivable %s is %s", apperrors.ErrInvalidState, receivableID, doc.Status)
	}
	if _, err := s.refinancingRepo.FindRefinancingByReceivable(ctx, receivableID); err == nil {
		return nil, fmt.Errorf("%w: receivable %s already refinanced", apperrors.ErrDuplicate, receivableID)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	employeeIDs, err := s.documentRepo.ListEmployeeIDsForReceivable(ctx, receivableID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list employees for receivable", slog.String("receivable_id", receivableID))
		return nil, err
	}

	now := time.Now()
	refinancing := domain.Refinancing{
		RefinancingID:  uuid.NewString(),
		ReceivableID:   receivableID,
		CompanyID:      doc.CompanyID,
		OriginalAmount: doc.Pending(), // Captures partial payments already applied
		Paid:           decimal.Zero,
		Status:         domain.RefinancingPending,
		DueAt:          now.AddDate(0, 0, s.windowDays),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	// One atomic step: source flips to REFINANCED, the refinancing lands,
	// and every billed employee gets availableBalance = allocatedLimit back.
	// The moved debt now lives only on the refinancing.
	if err := s.refinancingRepo.CreateRefinancing(ctx, refinancing, employeeIDs); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to create refinancing", slog.String("receivable_id", receivableID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Receivable refinanced",
		slog.String("refinancing_id", refinancing.RefinancingID),
		slog.String("receivable_id", receivableID),
		slog.String("amount", refinancing.OriginalAmount.String()),
		slog.Int("employees_restored", len(employeeIDs)))
	return &refinancing, nil
}

func (s *refinancingService) ApplyPayment(ctx context.Context, refinancingID string, req dto.ApplyPaymentRequest, userID string) (*domain.Refinancing, *domain.Payment, error) {
	refinancing, err := s.refinancingRepo.FindRefinancingByID(ctx, refinancingID)
	if err != nil {
		return nil, nil, err
	}
	probe := *refinancing
	if err := probe.ApplyPayment(req.Amount); err != nil {
		return nil, nil, err
	}

	payment := newPayment(refinancingID, domain.KindRefinancing, req, userID)
	updated, err := s.refinancingRepo.ApplyRefinancingPayment(ctx, payment)
	if err != nil {
		if !isSettlementError(err) {
			s.LogError(ctx, err, "Failed to apply refinancing payment", slog.String("refinancing_id", refinancingID))
		}
		return nil, nil, err
	}

	s.LogInfo(ctx, "Refinancing payment applied",
		slog.String("refinancing_id", refinancingID),
		slog.String("payment_id", payment.PaymentID),
		slog.String("amount", req.Amount.String()),
		slog.String("status", string(updated.Status)))
	return updated, &payment, nil
}

func (s *refinancingService) WriteOff(ctx context.Context, refinancingID string, userID string) error {
	refinancing, err := s.refinancingRepo.FindRefinancingByID(ctx, refinancingID)
	if err != nil {
		return err
	}
	if refinancing.Status.Terminal() {
		return &apperrors.DocumentTerminalError{DocumentID: refinancingID, Status: string(refinancing.Status)}
	}

	if err := s.refinancingRepo.UpdateRefinancingStatus(ctx, refinancingID, domain.RefinancingWrittenOff, userID, time.Now()); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to write off refinancing", slog.String("refinancing_id", refinancingID))
		}
		return err
	}

	s.LogInfo(ctx, "Refinancing written off",
		slog.String("refinancing_id", refinancingID),
		slog.String("pending", refinancing.Pending().String()))
	return nil
}

func (s *refinancingService) GetRefinancingByID(ctx context.Context, refinancingID string) (*domain.Refinancing, error) {
	refinancing, err := s.refinancingRepo.FindRefinancingByID(ctx, refinancingID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find refinancing", slog.String("refinancing_id", refinancingID))
		}
		return nil, err
	}
	return refinancing, nil
}

func (s *refinancingService) ListRefinancingsByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.Refinancing, error) {
	if limit <= 0 {
		limit = defaultDocumentPageSize
	}
	refinancings, err := s.refinancingRepo.ListRefinancingsByCompany(ctx, companyID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list refinancings", slog.String("company_id", companyID))
		return nil, err
	}
	if refinancings == nil {
		return []domain.Refinancing{}, nil
	}
	return refinancings, nil
}
