package repositories

import (
	"context"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
)

// RefinancingReader defines read operations for refinancings.
type RefinancingReader interface {
	// FindRefinancingByID retrieves a specific refinancing.
	FindRefinancingByID(ctx context.Context, refinancingID string) (*domain.Refinancing, error)

	// FindRefinancingByReceivable retrieves the refinancing created from a
	// source document, or ErrNotFound.
	FindRefinancingByReceivable(ctx context.Context, receivableID string) (*domain.Refinancing, error)

	// ListRefinancingsByCompany retrieves a paginated list of a company's refinancings.
	ListRefinancingsByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.Refinancing, error)
}

// RefinancingWriter defines write operations for refinancings.
type RefinancingWriter interface {
	// CreateRefinancing atomically: re-verifies the source receivable is
	// non-terminal under its lock, transitions it to REFINANCED, inserts the
	// refinancing, and restores availableBalance = allocatedLimit for every
	// listed employee. A raced state change on the source yields ErrConflict
	// and nothing is written.
	CreateRefinancing(ctx context.Context, refinancing domain.Refinancing, employeeIDs []string) error

	// ApplyRefinancingPayment re-reads the refinancing under its lock, applies
	// the payment, and persists it with the payment record.
	ApplyRefinancingPayment(ctx context.Context, payment domain.Payment) (*domain.Refinancing, error)

	// UpdateRefinancingStatus performs an administrative transition (write-off).
	UpdateRefinancingStatus(ctx context.Context, refinancingID string, status domain.RefinancingStatus, userID string, now time.Time) error
}

// RefinancingRepositoryFacade combines all refinancing-related repository interfaces.
type RefinancingRepositoryFacade interface {
	RefinancingReader
	RefinancingWriter
}
