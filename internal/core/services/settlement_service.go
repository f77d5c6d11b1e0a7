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

const defaultDocumentPageSize = 50

// settlementService drives documents through Pending -> Partial -> Paid and
// keeps the payment trail. State checks run twice: here for a precise error,
// and in the repository under the document lock for correctness.
type settlementService struct {
	BaseService
	documentRepo portsrepo.DocumentRepositoryFacade
}

var _ portssvc.SettlementSvcFacade = (*settlementService)(nil)

// NewSettlementService creates a new settlement service.
func NewSettlementService(documentRepo portsrepo.DocumentRepositoryFacade) portssvc.SettlementSvcFacade {
	return &settlementService{documentRepo: documentRepo}
}

func (s *settlementService) GetReceivableByID(ctx context.Context, receivableID string) (*domain.ReceivableDocument, error) {
	doc, err := s.documentRepo.FindReceivableByID(ctx, receivableID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find receivable", slog.String("receivable_id", receivableID))
		}
		return nil, err
	}
	return doc, nil
}

func (s *settlementService) ListReceivables(ctx context.Context, params dto.ListDocumentsParams) ([]domain.ReceivableDocument, error) {
	filter, limit, offset, err := buildDocumentFilter(params)
	if err != nil {
		return nil, err
	}
	docs, err := s.documentRepo.ListReceivables(ctx, filter, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list receivables")
		return nil, err
	}
	if docs == nil {
		return []domain.ReceivableDocument{}, nil
	}
	return docs, nil
}

func (s *settlementService) GetPayableByID(ctx context.Context, payableID string) (*domain.PayableDocument, error) {
	doc, err := s.documentRepo.FindPayableByID(ctx, payableID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find payable", slog.String("payable_id", payableID))
		}
		return nil, err
	}
	return doc, nil
}

func (s *settlementService) ListPayables(ctx context.Context, params dto.ListDocumentsParams) ([]domain.PayableDocument, error) {
	filter, limit, offset, err := buildDocumentFilter(params)
	if err != nil {
		return nil, err
	}
	docs, err := s.documentRepo.ListPayables(ctx, filter, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list payables")
		return nil, err
	}
	if docs == nil {
		return []domain.PayableDocument{}, nil
	}
	return docs, nil
}

func (s *settlementService) ListPayments(ctx context.Context, documentID string, kind domain.DocumentKind) ([]domain.Payment, error) {
	payments, err := s.documentRepo.ListPaymentsByDocument(ctx, documentID, kind)
	if err != nil {
		s.LogError(ctx, err, "Failed to list payments", slog.String("document_id", documentID))
		return nil, err
	}
	if payments == nil {
		return []domain.Payment{}, nil
	}
	return payments, nil
}

func (s *settlementService) ApplyReceivablePayment(ctx context.Context, receivableID string, req dto.ApplyPaymentRequest, userID string) (*domain.ReceivableDocument, *domain.Payment, error) {
	doc, err := s.documentRepo.FindReceivableByID(ctx, receivableID)
	if err != nil {
		return nil, nil, err
	}
	// Dry-run against a copy for the early error; the repository replays the
	// transition on the locked row.
	probe := *doc
	if err := probe.ApplyPayment(req.Amount); err != nil {
		return nil, nil, err
	}

	payment := newPayment(receivableID, domain.KindReceivable, req, userID)
	updated, err := s.documentRepo.ApplyReceivablePayment(ctx, payment)
	if err != nil {
		if !isSettlementError(err) {
			s.LogError(ctx, err, "Failed to apply receivable payment", slog.String("receivable_id", receivableID))
		}
		return nil, nil, err
	}

	s.LogInfo(ctx, "Receivable payment applied",
		slog.String("receivable_id", receivableID),
		slog.String("payment_id", payment.PaymentID),
		slog.String("amount", req.Amount.String()),
		slog.String("status", string(updated.Status)))
	return updated, &payment, nil
}

func (s *settlementService) ApplyPayablePayment(ctx context.Context, payableID string, req dto.ApplyPaymentRequest, userID string) (*domain.PayableDocument, *domain.Payment, error) {
	doc, err := s.documentRepo.FindPayableByID(ctx, payableID)
	if err != nil {
		return nil, nil, err
	}
	probe := *doc
	if err := probe.ApplyPayment(req.Amount); err != nil {
		return nil, nil, err
	}

	payment := newPayment(payableID, domain.KindPayable, req, userID)
	updated, err := s.documentRepo.ApplyPayablePayment(ctx, payment)
	if err != nil {
		if !isSettlementError(err) {
			s.LogError(ctx, err, "Failed to apply payable payment", slog.String("payable_id", payableID))
		}
		return nil, nil, err
	}

	s.LogInfo(ctx, "Payable payment applied",
		slog.String("payable_id", payableID),
		slog.String("payment_id", payment.PaymentID),
		slog.String("amount", req.Amount.String()),
		slog.String("status", string(updated.Status)))
	return updated, &payment, nil
}

func (s *settlementService) VoidReceivable(ctx context.Context, receivableID string, userID string) error {
	doc, err := s.documentRepo.FindReceivableByID(ctx, receivableID)
	if err != nil {
		return err
	}
	if doc.Status.Terminal() {
		return &apperrors.DocumentTerminalError{DocumentID: receivableID, Status: string(doc.Status)}
	}

	if err := s.documentRepo.UpdateReceivableStatus(ctx, receivableID, domain.StatusVoided, userID, time.Now()); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to void receivable", slog.String("receivable_id", receivableID))
		}
		return err
	}

	s.LogInfo(ctx, "Receivable voided", slog.String("receivable_id", receivableID))
	return nil
}

func (s *settlementService) VoidPayable(ctx context.Context, payableID string, userID string) error {
	doc, err := s.documentRepo.FindPayableByID(ctx, payableID)
	if err != nil {
		return err
	}
	if doc.Status.Terminal() {
		return &apperrors.DocumentTerminalError{DocumentID: payableID, Status: string(doc.Status)}
	}

	if err := s.documentRepo.UpdatePayableStatus(ctx, payableID, domain.StatusVoided, userID, time.Now()); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to void payable", slog.String("payable_id", payableID))
		}
		return err
	}

	s.LogInfo(ctx, "Payable voided", slog.String("payable_id", payableID))
	return nil
}

func newPayment(documentID string, kind domain.DocumentKind, req dto.ApplyPaymentRequest, userID string) domain.Payment {
	now := time.Now()
	return domain.Payment{
		PaymentID:    uuid.NewString(),
		DocumentID:   documentID,
		DocumentKind: kind,
		Amount:       req.Amount,
		Method:       req.Method,
		Reference:    req.Reference,
		RecordedBy:   userID,
		PaidAt:       now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
}

// isSettlementError reports whether the error is an expected state-machine
// rejection not worth an error-level log line.
func isSettlementError(err error) bool {
	return errors.Is(err, apperrors.ErrExceedsPending) ||
		errors.Is(err, apperrors.ErrDocumentTerminal) ||
		errors.Is(err, apperrors.ErrConflict)
}

func buildDocumentFilter(params dto.ListDocumentsParams) (portsrepo.DocumentFilter, int, int, error) {
	filter := portsrepo.DocumentFilter{
		Status:     domain.DocumentStatus(params.Status),
		CompanyID:  params.CompanyID,
		ProviderID: params.ProviderID,
	}
	if params.IssuedFrom != "" {
		t, err := time.Parse("2006-01-02", params.IssuedFrom)
		if err != nil {
			return portsrepo.DocumentFilter{}, 0, 0, fmt.Errorf("%w: invalid issuedFrom date", apperrors.ErrValidation)
		}
		filter.IssuedFrom = &t
	}
	if params.IssuedTo != "" {
		t, err := time.Parse("2006-01-02", params.IssuedTo)
		if err != nil {
			return portsrepo.DocumentFilter{}, 0, 0, fmt.Errorf("%w: invalid issuedTo date", apperrors.ErrValidation)
		}
		filter.IssuedTo = &t
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultDocumentPageSize
	}
	return filter, limit, params.Offset, nil
}
