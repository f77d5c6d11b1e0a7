package services

import (
	"context"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/dto"
)

// SettlementReaderSvc defines the document read views.
type SettlementReaderSvc interface {
	// GetReceivableByID retrieves a receivable document.
	GetReceivableByID(ctx context.Context, receivableID string) (*domain.ReceivableDocument, error)

	// ListReceivables retrieves receivables filtered by state/date/company.
	ListReceivables(ctx context.Context, params dto.ListDocumentsParams) ([]domain.ReceivableDocument, error)

	// GetPayableByID retrieves a payable document.
	GetPayableByID(ctx context.Context, payableID string) (*domain.PayableDocument, error)

	// ListPayables retrieves payables filtered by state/date/provider.
	ListPayables(ctx context.Context, params dto.ListDocumentsParams) ([]domain.PayableDocument, error)

	// ListPayments retrieves a document's payment trail.
	ListPayments(ctx context.Context, documentID string, kind domain.DocumentKind) ([]domain.Payment, error)
}

// SettlementWriterSvc is the payment-application side of the document state
// machine: Pending -> Partial -> Paid, plus the administrative void.
type SettlementWriterSvc interface {
	// ApplyReceivablePayment applies a payment to a receivable document.
	// Fails with ErrExceedsPending or ErrDocumentTerminal.
	ApplyReceivablePayment(ctx context.Context, receivableID string, req dto.ApplyPaymentRequest, userID string) (*domain.ReceivableDocument, *domain.Payment, error)

	// ApplyPayablePayment applies a payment to a payable document.
	ApplyPayablePayment(ctx context.Context, payableID string, req dto.ApplyPaymentRequest, userID string) (*domain.PayableDocument, *domain.Payment, error)

	// VoidReceivable administratively voids a non-terminal receivable.
	VoidReceivable(ctx context.Context, receivableID string, userID string) error

	// VoidPayable administratively voids a non-terminal payable.
	VoidPayable(ctx context.Context, payableID string, userID string) error
}

// SettlementSvcFacade combines the settlement service interfaces.
type SettlementSvcFacade interface {
	SettlementReaderSvc
	SettlementWriterSvc
}
