package repositories

import (
	"context"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
)

// ConsumptionReader defines read operations over the consumption journal.
type ConsumptionReader interface {
	// FindConsumptionByID retrieves a specific consumption by its unique identifier.
	FindConsumptionByID(ctx context.Context, consumptionID string) (*domain.Consumption, error)

	// ListConsumptionsByEmployee retrieves an employee's consumptions newest
	// first, keyset-paginated via an opaque token.
	ListConsumptionsByEmployee(ctx context.Context, employeeID string, limit int, nextToken *string) ([]domain.Consumption, *string, error)

	// ListUnbilledByCompany pages through the company's non-reversed,
	// not-yet-billed consumptions with timestamp <= upTo, ordered by timestamp
	// ascending then creation sequence. The cursor makes the sequence
	// restartable: callers resume from the returned token.
	ListUnbilledByCompany(ctx context.Context, companyID string, upTo time.Time, limit int, nextToken *string) ([]domain.Consumption, *string, error)

	// ListUnbilledByEmployee narrows the unbilled feed to a single employee,
	// with the same ordering and cursor semantics.
	ListUnbilledByEmployee(ctx context.Context, employeeID string, upTo time.Time, limit int, nextToken *string) ([]domain.Consumption, *string, error)

	// ListUnbilledByProvider is the provider-side equivalent, keyed on the
	// payable document link.
	ListUnbilledByProvider(ctx context.Context, providerID string, upTo time.Time, limit int, nextToken *string) ([]domain.Consumption, *string, error)
}

// ConsumptionWriter defines the journal's mutations. Both operations touch the
// owning employee's balance and must run under that employee's lock scope.
type ConsumptionWriter interface {
	// ApplyDebit inserts the consumption and decrements the employee's
	// available balance in one atomic step, assigning the creation sequence.
	// When enforceLimit is true the decrement is guarded against the current
	// balance and ErrInsufficientCredit is returned on a shortfall, so two
	// raced debits cannot both pass a stale availability check.
	ApplyDebit(ctx context.Context, consumption domain.Consumption, enforceLimit bool) (*domain.Consumption, error)

	// MarkReversed flips the reversed flag and restores the amount to the
	// employee's available balance atomically. The flip is guarded on the
	// consumption being non-reversed and unbilled; a raced writer gets
	// ErrConflict.
	MarkReversed(ctx context.Context, consumption domain.Consumption, userID string, now time.Time) error
}

// ConsumptionRepositoryFacade combines all consumption-related repository interfaces.
type ConsumptionRepositoryFacade interface {
	ConsumptionReader
	ConsumptionWriter
}
