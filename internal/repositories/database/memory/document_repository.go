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

type documentRepository struct {
	store *Store
}

var _ portsrepo.DocumentRepositoryFacade = (*documentRepository)(nil)

func newDocumentRepository(store *Store) *documentRepository {
	return &documentRepository{store: store}
}

func (r *documentRepository) FindReceivableByID(_ context.Context, receivableID string) (*domain.ReceivableDocument, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	doc, ok := r.store.receivables[receivableID]
	if !ok {
		return nil, fmt.Errorf("%w: receivable %s", apperrors.ErrNotFound, receivableID)
	}
	return &doc, nil
}

func (r *documentRepository) FindLatestReceivableByCompany(_ context.Context, companyID string) (*domain.ReceivableDocument, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var latest *domain.ReceivableDocument
	for _, doc := range r.store.receivables {
		if doc.CompanyID != companyID {
			continue
		}
		d := doc
		if latest == nil || d.Period.To.After(latest.Period.To) {
			latest = &d
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: no receivables for company %s", apperrors.ErrNotFound, companyID)
	}
	return latest, nil
}

func (r *documentRepository) ListReceivables(_ context.Context, filter portsrepo.DocumentFilter, limit int, offset int) ([]domain.ReceivableDocument, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	docs := make([]domain.ReceivableDocument, 0)
	for _, doc := range r.store.receivables {
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		if filter.CompanyID != "" && doc.CompanyID != filter.CompanyID {
			continue
		}
		if !matchIssuedRange(doc.IssuedAt, filter) {
			continue
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].IssuedAt.Equal(docs[j].IssuedAt) {
			return docs[i].IssuedAt.After(docs[j].IssuedAt)
		}
		return docs[i].ReceivableID < docs[j].ReceivableID
	})
	return pageSlice(docs, limit, offset), nil
}

func (r *documentRepository) ListEmployeeIDsForReceivable(_ context.Context, receivableID string) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if _, ok := r.store.receivables[receivableID]; !ok {
		return nil, fmt.Errorf("%w: receivable %s", apperrors.ErrNotFound, receivableID)
	}

	seen := make(map[string]struct{})
	for _, c := range r.store.consumptions {
		if c.ReceivableID != nil && *c.ReceivableID == receivableID {
			seen[c.EmployeeID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *documentRepository) CreateReceivableWithConsumptions(_ context.Context, doc domain.ReceivableDocument, consumptionIDs []string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.receivables[doc.ReceivableID]; exists {
		return fmt.Errorf("%w: receivable %s", apperrors.ErrDuplicate, doc.ReceivableID)
	}
	if _, ok := r.store.companies[doc.CompanyID]; !ok {
		return fmt.Errorf("%w: company %s", apperrors.ErrNotFound, doc.CompanyID)
	}

	// Re-verify period disjointness inside the critical section. The service
	// derived the period start from a snapshot; a cutoff committed since then
	// makes it stale and conflicts the whole run.
	for _, existing := range r.store.receivables {
		if existing.CompanyID == doc.CompanyID && !existing.Period.To.Before(doc.Period.From) {
			return fmt.Errorf("%w: period starting %s overlaps billed periods for company %s", apperrors.ErrConflict, doc.Period.From.Format(time.RFC3339), doc.CompanyID)
		}
	}

	// Verify every consumption is still linkable before touching anything.
	// A reversal or a concurrent cutoff since collection fails the whole run.
	for _, id := range consumptionIDs {
		c, ok := r.store.consumptions[id]
		if !ok {
			return fmt.Errorf("%w: consumption %s", apperrors.ErrNotFound, id)
		}
		if c.Reversed || c.ReceivableID != nil {
			return fmt.Errorf("%w: consumption %s changed since collection", apperrors.ErrConflict, id)
		}
	}

	r.store.receivables[doc.ReceivableID] = doc
	for _, id := range consumptionIDs {
		c := r.store.consumptions[id]
		receivableID := doc.ReceivableID
		c.ReceivableID = &receivableID
		c.LastUpdatedAt = doc.CreatedAt
		c.LastUpdatedBy = doc.CreatedBy
		r.store.consumptions[id] = c
	}
	return nil
}

func (r *documentRepository) ApplyReceivablePayment(_ context.Context, payment domain.Payment) (*domain.ReceivableDocument, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doc, ok := r.store.receivables[payment.DocumentID]
	if !ok {
		return nil, fmt.Errorf("%w: receivable %s", apperrors.ErrNotFound, payment.DocumentID)
	}

	// Replay the transition on the current row; the service's dry run worked
	// on a snapshot.
	if err := doc.ApplyPayment(payment.Amount); err != nil {
		return nil, err
	}
	doc.LastUpdatedAt = payment.PaidAt
	doc.LastUpdatedBy = payment.RecordedBy

	r.store.receivables[doc.ReceivableID] = doc
	r.store.payments[payment.PaymentID] = payment
	return &doc, nil
}

func (r *documentRepository) UpdateReceivableStatus(_ context.Context, receivableID string, status domain.DocumentStatus, userID string, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.updateReceivableStatusLocked(receivableID, status, userID, now)
}

// updateReceivableStatusLocked assumes the caller holds the write lock.
func (r *documentRepository) updateReceivableStatusLocked(receivableID string, status domain.DocumentStatus, userID string, now time.Time) error {
	doc, ok := r.store.receivables[receivableID]
	if !ok {
		return fmt.Errorf("%w: receivable %s", apperrors.ErrNotFound, receivableID)
	}
	if doc.Status.Terminal() {
		return fmt.Errorf("%w: receivable %s is %s", apperrors.ErrConflict, receivableID, doc.Status)
	}
	doc.Status = status
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = userID
	r.store.receivables[receivableID] = doc
	return nil
}

func (r *documentRepository) FindPayableByID(_ context.Context, payableID string) (*domain.PayableDocument, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	doc, ok := r.store.payables[payableID]
	if !ok {
		return nil, fmt.Errorf("%w: payable %s", apperrors.ErrNotFound, payableID)
	}
	return &doc, nil
}

func (r *documentRepository) FindLatestPayableByProvider(_ context.Context, providerID string) (*domain.PayableDocument, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var latest *domain.PayableDocument
	for _, doc := range r.store.payables {
		if doc.ProviderID != providerID {
			continue
		}
		d := doc
		if latest == nil || d.Period.To.After(latest.Period.To) {
			latest = &d
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: no payables for provider %s", apperrors.ErrNotFound, providerID)
	}
	return latest, nil
}

func (r *documentRepository) ListPayables(_ context.Context, filter portsrepo.DocumentFilter, limit int, offset int) ([]domain.PayableDocument, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	docs := make([]domain.PayableDocument, 0)
	for _, doc := range r.store.payables {
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		if filter.ProviderID != "" && doc.ProviderID != filter.ProviderID {
			continue
		}
		if !matchIssuedRange(doc.IssuedAt, filter) {
			continue
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].IssuedAt.Equal(docs[j].IssuedAt) {
			return docs[i].IssuedAt.After(docs[j].IssuedAt)
		}
		return docs[i].PayableID < docs[j].PayableID
	})
	return pageSlice(docs, limit, offset), nil
}

func (r *documentRepository) CreatePayableWithConsumptions(_ context.Context, doc domain.PayableDocument, consumptionIDs []string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.payables[doc.PayableID]; exists {
		return fmt.Errorf("%w: payable %s", apperrors.ErrDuplicate, doc.PayableID)
	}
	if _, ok := r.store.providers[doc.ProviderID]; !ok {
		return fmt.Errorf("%w: provider %s", apperrors.ErrNotFound, doc.ProviderID)
	}
	for _, existing := range r.store.payables {
		if existing.ProviderID == doc.ProviderID && !existing.Period.To.Before(doc.Period.From) {
			return fmt.Errorf("%w: period starting %s overlaps settled periods for provider %s", apperrors.ErrConflict, doc.Period.From.Format(time.RFC3339), doc.ProviderID)
		}
	}
	for _, id := range consumptionIDs {
		c, ok := r.store.consumptions[id]
		if !ok {
			return fmt.Errorf("%w: consumption %s", apperrors.ErrNotFound, id)
		}
		if c.Reversed || c.PayableID != nil {
			return fmt.Errorf("%w: consumption %s changed since collection", apperrors.ErrConflict, id)
		}
	}

	r.store.payables[doc.PayableID] = doc
	for _, id := range consumptionIDs {
		c := r.store.consumptions[id]
		payableID := doc.PayableID
		c.PayableID = &payableID
		c.LastUpdatedAt = doc.CreatedAt
		c.LastUpdatedBy = doc.CreatedBy
		r.store.consumptions[id] = c
	}
	return nil
}

func (r *documentRepository) ApplyPayablePayment(_ context.Context, payment domain.Payment) (*domain.PayableDocument, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doc, ok := r.store.payables[payment.DocumentID]
	if !ok {
		return nil, fmt.Errorf("%w: payable %s", apperrors.ErrNotFound, payment.DocumentID)
	}
	if err := doc.ApplyPayment(payment.Amount); err != nil {
		return nil, err
	}
	doc.LastUpdatedAt = payment.PaidAt
	doc.LastUpdatedBy = payment.RecordedBy

	r.store.payables[doc.PayableID] = doc
	r.store.payments[payment.PaymentID] = payment
	return &doc, nil
}

func (r *documentRepository) UpdatePayableStatus(_ context.Context, payableID string, status domain.DocumentStatus, userID string, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doc, ok := r.store.payables[payableID]
	if !ok {
		return fmt.Errorf("%w: payable %s", apperrors.ErrNotFound, payableID)
	}
	if doc.Status.Terminal() {
		return fmt.Errorf("%w: payable %s is %s", apperrors.ErrConflict, payableID, doc.Status)
	}
	doc.Status = status
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = userID
	r.store.payables[payableID] = doc
	return nil
}

func (r *documentRepository) ListPaymentsByDocument(_ context.Context, documentID string, kind domain.DocumentKind) ([]domain.Payment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	payments := make([]domain.Payment, 0)
	for _, p := range r.store.payments {
		if p.DocumentID == documentID && p.DocumentKind == kind {
			payments = append(payments, p)
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		if !payments[i].PaidAt.Equal(payments[j].PaidAt) {
			return payments[i].PaidAt.Before(payments[j].PaidAt)
		}
		return payments[i].PaymentID < payments[j].PaymentID
	})
	return payments, nil
}

func matchIssuedRange(issuedAt time.Time, filter portsrepo.DocumentFilter) bool {
	if filter.IssuedFrom != nil && issuedAt.Before(*filter.IssuedFrom) {
		return false
	}
	if filter.IssuedTo != nil && issuedAt.After(*filter.IssuedTo) {
		return false
	}
	return true
}
