package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	portsrepo "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/repositories"
)

type refinancingRepository struct {
	store *Store

	// Reused for the source-document flip and the balance restore so all
	// three effects of CreateRefinancing stay in one critical section.
	documents *documentRepository
	employees *employeeRepository
}

var _ portsrepo.RefinancingRepositoryFacade = (*refinancingRepository)(nil)

func newRefinancingRepository(store *Store, documents *documentRepository, employees *employeeRepository) *refinancingRepository {
	return &refinancingRepository{store: store, documents: documents, employees: employees}
}

func (r *refinancingRepository) FindRefinancingByID(_ context.Context, refinancingID string) (*domain.Refinancing, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	refinancing, ok := r.store.refinancings[refinancingID]
	if !ok {
		return nil, fmt.Errorf("%w: refinancing %s", apperrors.ErrNotFound, refinancingID)
	}
	return &refinancing, nil
}

func (r *refinancingRepository) FindRefinancingByReceivable(_ context.Context, receivableID string) (*domain.Refinancing, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, refinancing := range r.store.refinancings {
		if refinancing.ReceivableID == receivableID {
			found := refinancing
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: no refinancing for receivable %s", apperrors.ErrNotFound, receivableID)
}

func (r *refinancingRepository) ListRefinancingsByCompany(_ context.Context, companyID string, limit int, offset int) ([]domain.Refinancing, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	refinancings := make([]domain.Refinancing, 0)
	for _, refinancing := range r.store.refinancings {
		if refinancing.CompanyID == companyID {
			refinancings = append(refinancings, refinancing)
		}
	}
	sort.Slice(refinancings, func(i, j int) bool {
		if !refinancings[i].CreatedAt.Equal(refinancings[j].CreatedAt) {
			return refinancings[i].CreatedAt.After(refinancings[j].CreatedAt)
		}
		return refinancings[i].RefinancingID < refinancings[j].RefinancingID
	})
	return pageSlice(refinancings, limit, offset), nil
}

func (r *refinancingRepository) CreateRefinancing(_ context.Context, refinancing domain.Refinancing, employeeIDs []string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.refinancings[refinancing.RefinancingID]; exists {
		return fmt.Errorf("%w: refinancing %s", apperrors.ErrDuplicate, refinancing.RefinancingID)
	}
	for _, existing := range r.store.refinancings {
		if existing.ReceivableID == refinancing.ReceivableID {
			return fmt.Errorf("%w: receivable %s already refinanced", apperrors.ErrDuplicate, refinancing.ReceivableID)
		}
	}

	// Flip the source first: it re-verifies non-terminal state under the
	// lock, and a raced payment or void fails the whole creation.
	if err := r.documents.updateReceivableStatusLocked(refinancing.ReceivableID, domain.StatusRefinanced, refinancing.CreatedBy, refinancing.CreatedAt); err != nil {
		return err
	}
	if err := r.employees.restoreFullBalancesLocked(employeeIDs, refinancing.CreatedBy, refinancing.CreatedAt); err != nil {
		return err
	}
	r.store.refinancings[refinancing.RefinancingID] = refinancing
	return nil
}

func (r *refinancingRepository) ApplyRefinancingPayment(_ context.Context, payment domain.Payment) (*domain.Refinancing, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	refinancing, ok := r.store.refinancings[payment.DocumentID]
	if !ok {
		return nil, fmt.Errorf("%w: refinancing %s", apperrors.ErrNotFound, payment.DocumentID)
	}
	if err := refinancing.ApplyPayment(payment.Amount); err != nil {
		return nil, err
	}
	refinancing.LastUpdatedAt = payment.PaidAt
	refinancing.LastUpdatedBy = payment.RecordedBy

	r.store.refinancings[refinancing.RefinancingID] = refinancing
	r.store.payments[payment.PaymentID] = payment
	return &refinancing, nil
}

func (r *refinancingRepository) UpdateRefinancingStatus(_ context.Context, refinancingID string, status domain.RefinancingStatus, userID string, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	refinancing, ok := r.store.refinancings[refinancingID]
	if !ok {
		return fmt.Errorf("%w: refinancing %s", apperrors.ErrNotFound, refinancingID)
	}
	if refinancing.Status.Terminal() {
		return fmt.Errorf("%w: refinancing %s is %s", apperrors.ErrConflict, refinancingID, refinancing.Status)
	}
	refinancing.Status = status
	refinancing.LastUpdatedAt = now
	refinancing.LastUpdatedBy = userID
	r.store.refinancings[refinancingID] = refinancing
	return nil
}
