package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	portsrepo "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/repositories"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/utils/pagination"
)

type consumptionRepository struct {
	store *Store
}

var _ portsrepo.ConsumptionRepositoryFacade = (*consumptionRepository)(nil)

func newConsumptionRepository(store *Store) *consumptionRepository {
	return &consumptionRepository{store: store}
}

func (r *consumptionRepository) ApplyDebit(_ context.Context, consumption domain.Consumption, enforceLimit bool) (*domain.Consumption, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.consumptions[consumption.ConsumptionID]; exists {
		return nil, fmt.Errorf("%w: consumption %s", apperrors.ErrDuplicate, consumption.ConsumptionID)
	}
	employee, ok := r.store.employees[consumption.EmployeeID]
	if !ok {
		return nil, fmt.Errorf("%w: employee %s", apperrors.ErrNotFound, consumption.EmployeeID)
	}

	// The balance guard runs inside the critical section: the service's
	// availability check read a snapshot that may be stale by now.
	if enforceLimit && consumption.Amount.GreaterThan(employee.AvailableBalance) {
		return nil, &apperrors.InsufficientCreditError{
			EmployeeID: consumption.EmployeeID,
			Requested:  consumption.Amount,
			Available:  employee.AvailableBalance,
		}
	}

	consumption.Sequence = r.store.nextSequence
	r.store.nextSequence++

	employee.AvailableBalance = employee.AvailableBalance.Sub(consumption.Amount)
	employee.LastUpdatedAt = consumption.CreatedAt
	employee.LastUpdatedBy = consumption.CreatedBy
	r.store.employees[consumption.EmployeeID] = employee
	r.store.consumptions[consumption.ConsumptionID] = consumption

	return &consumption, nil
}

func (r *consumptionRepository) MarkReversed(_ context.Context, consumption domain.Consumption, userID string, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.consumptions[consumption.ConsumptionID]
	if !ok {
		return fmt.Errorf("%w: consumption %s", apperrors.ErrNotFound, consumption.ConsumptionID)
	}
	// Guard on the current row, not the caller's snapshot: a raced reversal
	// or cutoff may have touched it since the service looked.
	if current.Reversed || current.ReceivableID != nil {
		return fmt.Errorf("%w: consumption %s changed since read", apperrors.ErrConflict, consumption.ConsumptionID)
	}
	employee, ok := r.store.employees[current.EmployeeID]
	if !ok {
		return fmt.Errorf("%w: employee %s", apperrors.ErrNotFound, current.EmployeeID)
	}

	current.Reversed = true
	current.LastUpdatedAt = now
	current.LastUpdatedBy = userID
	r.store.consumptions[current.ConsumptionID] = current

	employee.AvailableBalance = employee.AvailableBalance.Add(current.Amount)
	employee.LastUpdatedAt = now
	employee.LastUpdatedBy = userID
	r.store.employees[employee.EmployeeID] = employee
	return nil
}

func (r *consumptionRepository) FindConsumptionByID(_ context.Context, consumptionID string) (*domain.Consumption, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	consumption, ok := r.store.consumptions[consumptionID]
	if !ok {
		return nil, fmt.Errorf("%w: consumption %s", apperrors.ErrNotFound, consumptionID)
	}
	return &consumption, nil
}

func (r *consumptionRepository) ListConsumptionsByEmployee(_ context.Context, employeeID string, limit int, nextToken *string) ([]domain.Consumption, *string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	all := make([]domain.Consumption, 0)
	for _, c := range r.store.consumptions {
		if c.EmployeeID == employeeID {
			all = append(all, c)
		}
	}
	// Newest first for the console's activity view.
	sort.Slice(all, func(i, j int) bool {
		if !all[i].ConsumedAt.Equal(all[j].ConsumedAt) {
			return all[i].ConsumedAt.After(all[j].ConsumedAt)
		}
		return all[i].Sequence > all[j].Sequence
	})

	if nextToken != nil {
		cursorAt, cursorSeq, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
		}
		all = filterConsumptions(all, func(c domain.Consumption) bool {
			return c.ConsumedAt.Before(cursorAt) || (c.ConsumedAt.Equal(cursorAt) && c.Sequence < cursorSeq)
		})
	}

	return paginateConsumptions(all, limit)
}

func (r *consumptionRepository) ListUnbilledByCompany(_ context.Context, companyID string, upTo time.Time, limit int, nextToken *string) ([]domain.Consumption, *string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	all := r.collectUnbilledLocked(upTo, func(c domain.Consumption) bool {
		return c.CompanyID == companyID && c.ReceivableID == nil
	})
	if err := applyCursor(&all, nextToken); err != nil {
		return nil, nil, err
	}
	return paginateConsumptions(all, limit)
}

func (r *consumptionRepository) ListUnbilledByEmployee(_ context.Context, employeeID string, upTo time.Time, limit int, nextToken *string) ([]domain.Consumption, *string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	all := r.collectUnbilledLocked(upTo, func(c domain.Consumption) bool {
		return c.EmployeeID == employeeID && c.ReceivableID == nil
	})
	if err := applyCursor(&all, nextToken); err != nil {
		return nil, nil, err
	}
	return paginateConsumptions(all, limit)
}

func (r *consumptionRepository) ListUnbilledByProvider(_ context.Context, providerID string, upTo time.Time, limit int, nextToken *string) ([]domain.Consumption, *string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	all := r.collectUnbilledLocked(upTo, func(c domain.Consumption) bool {
		return c.ProviderID == providerID && c.PayableID == nil
	})
	if err := applyCursor(&all, nextToken); err != nil {
		return nil, nil, err
	}
	return paginateConsumptions(all, limit)
}

// collectUnbilledLocked gathers non-reversed consumptions up to the cutoff
// instant, in billing order: timestamp ascending, creation sequence as the
// tie-break. Assumes the caller holds at least the read lock.
func (r *consumptionRepository) collectUnbilledLocked(upTo time.Time, match func(domain.Consumption) bool) []domain.Consumption {
	all := make([]domain.Consumption, 0)
	for _, c := range r.store.consumptions {
		if c.Reversed || c.ConsumedAt.After(upTo) || !match(c) {
			continue
		}
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].ConsumedAt.Equal(all[j].ConsumedAt) {
			return all[i].ConsumedAt.Before(all[j].ConsumedAt)
		}
		return all[i].Sequence < all[j].Sequence
	})
	return all
}

// applyCursor drops everything at or before the cursor position in ascending
// billing order.
func applyCursor(all *[]domain.Consumption, nextToken *string) error {
	if nextToken == nil {
		return nil
	}
	cursorAt, cursorSeq, err := pagination.DecodeCursor(*nextToken)
	if err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}
	*all = filterConsumptions(*all, func(c domain.Consumption) bool {
		return c.ConsumedAt.After(cursorAt) || (c.ConsumedAt.Equal(cursorAt) && c.Sequence > cursorSeq)
	})
	return nil
}

func filterConsumptions(in []domain.Consumption, keep func(domain.Consumption) bool) []domain.Consumption {
	out := in[:0:0]
	for _, c := range in {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// paginateConsumptions cuts one page and encodes the resume token from the
// last row, or nil when the page exhausts the sequence.
func paginateConsumptions(all []domain.Consumption, limit int) ([]domain.Consumption, *string, error) {
	if limit <= 0 || limit >= len(all) {
		return all, nil, nil
	}
	page := make([]domain.Consumption, limit)
	copy(page, all[:limit])
	last := page[limit-1]
	token := pagination.EncodeCursor(last.ConsumedAt, last.Sequence)
	return page, &token, nil
}
