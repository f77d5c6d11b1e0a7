package repositories

import (
	"context"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
)

// DocumentFilter narrows document list queries for the console's filtered
// tables. Zero values mean "no constraint".
type DocumentFilter struct {
	Status     domain.DocumentStatus
	CompanyID  string // Receivables only
	ProviderID string // Payables only
	IssuedFrom *time.Time
	IssuedTo   *time.Time
}

// ReceivableReader defines read operations for receivable documents (CxC).
type ReceivableReader interface {
	// FindReceivableByID retrieves a specific receivable document.
	FindReceivableByID(ctx context.Context, receivableID string) (*domain.ReceivableDocument, error)

	// FindLatestReceivableByCompany returns the company's receivable with the
	// most recent period end, or ErrNotFound when the company has never been
	// billed. Voided documents still bound the billed period and are included.
	FindLatestReceivableByCompany(ctx context.Context, companyID string) (*domain.ReceivableDocument, error)

	// ListReceivables retrieves a filtered, paginated document list.
	ListReceivables(ctx context.Context, filter DocumentFilter, limit int, offset int) ([]domain.ReceivableDocument, error)

	// ListEmployeeIDsForReceivable returns the distinct employees whose
	// consumptions were aggregated into the document.
	ListEmployeeIDsForReceivable(ctx context.Context, receivableID string) ([]string, error)
}

// ReceivableWriter defines write operations for receivable documents.
type ReceivableWriter interface {
	// CreateReceivableWithConsumptions inserts the document and links every
	// listed consumption to it in one atomic step under the company lock
	// scope. If any consumption was reversed or billed in the meantime the
	// whole operation fails with ErrConflict and nothing is linked.
	CreateReceivableWithConsumptions(ctx context.Context, doc domain.ReceivableDocument, consumptionIDs []string) error

	// ApplyReceivablePayment re-reads the document under its lock, applies the
	// payment through the settlement state machine, and persists the updated
	// document together with the payment record. Returns the updated document.
	ApplyReceivablePayment(ctx context.Context, payment domain.Payment) (*domain.ReceivableDocument, error)

	// UpdateReceivableStatus performs an administrative transition (void,
	// refinanced). Guarded against terminal states.
	UpdateReceivableStatus(ctx context.Context, receivableID string, status domain.DocumentStatus, userID string, now time.Time) error
}

// PayableReader defines read operations for payable documents (CxP).
type PayableReader interface {
	// FindPayableByID retrieves a specific payable document.
	FindPayableByID(ctx context.Context, payableID string) (*domain.PayableDocument, error)

	// FindLatestPayableByProvider returns the provider's payable with the most
	// recent period end, or ErrNotFound when the provider has never been settled.
	FindLatestPayableByProvider(ctx context.Context, providerID string) (*domain.PayableDocument, error)

	// ListPayables retrieves a filtered, paginated document list.
	ListPayables(ctx context.Context, filter DocumentFilter, limit int, offset int) ([]domain.PayableDocument, error)
}

// PayableWriter defines write operations for payable documents.
type PayableWriter interface {
	// CreatePayableWithConsumptions inserts the document and links every
	// listed consumption to it atomically under the provider lock scope.
	CreatePayableWithConsumptions(ctx context.Context, doc domain.PayableDocument, consumptionIDs []string) error

	// ApplyPayablePayment mirrors ApplyReceivablePayment for the provider side.
	ApplyPayablePayment(ctx context.Context, payment domain.Payment) (*domain.PayableDocument, error)

	// UpdatePayableStatus performs an administrative transition (void).
	UpdatePayableStatus(ctx context.Context, payableID string, status domain.DocumentStatus, userID string, now time.Time) error
}

// PaymentReader lists the immutable payment trail of a document.
type PaymentReader interface {
	ListPaymentsByDocument(ctx context.Context, documentID string, kind domain.DocumentKind) ([]domain.Payment, error)
}

// DocumentRepositoryFacade combines all document-related repository interfaces.
type DocumentRepositoryFacade interface {
	ReceivableReader
	ReceivableWriter
	PayableReader
	PayableWriter
	PaymentReader
}
