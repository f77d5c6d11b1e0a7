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

type companyRepository struct {
	store *Store
}

var _ portsrepo.CompanyRepositoryFacade = (*companyRepository)(nil)

func newCompanyRepository(store *Store) *companyRepository {
	return &companyRepository{store: store}
}

func (r *companyRepository) SaveCompany(_ context.Context, company domain.Company) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.companies[company.CompanyID]; exists {
		return fmt.Errorf("%w: company %s", apperrors.ErrDuplicate, company.CompanyID)
	}
	r.store.companies[company.CompanyID] = company
	return nil
}

func (r *companyRepository) FindCompanyByID(_ context.Context, companyID string) (*domain.Company, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	company, ok := r.store.companies[companyID]
	if !ok {
		return nil, fmt.Errorf("%w: company %s", apperrors.ErrNotFound, companyID)
	}
	return &company, nil
}

func (r *companyRepository) ListCompanies(_ context.Context, limit int, offset int) ([]domain.Company, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	companies := make([]domain.Company, 0, len(r.store.companies))
	for _, c := range r.store.companies {
		companies = append(companies, c)
	}
	sort.Slice(companies, func(i, j int) bool {
		if !companies[i].CreatedAt.Equal(companies[j].CreatedAt) {
			return companies[i].CreatedAt.Before(companies[j].CreatedAt)
		}
		return companies[i].CompanyID < companies[j].CompanyID
	})
	return pageSlice(companies, limit, offset), nil
}

func (r *companyRepository) UpdateCompany(_ context.Context, company domain.Company) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.companies[company.CompanyID]; !ok {
		return fmt.Errorf("%w: company %s", apperrors.ErrNotFound, company.CompanyID)
	}
	r.store.companies[company.CompanyID] = company
	return nil
}

func (r *companyRepository) DeactivateCompany(_ context.Context, companyID string, userID string, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	company, ok := r.store.companies[companyID]
	if !ok {
		return fmt.Errorf("%w: company %s", apperrors.ErrNotFound, companyID)
	}
	if !company.IsActive {
		return fmt.Errorf("%w: company %s is already inactive", apperrors.ErrValidation, companyID)
	}
	company.IsActive = false
	company.LastUpdatedAt = now
	company.LastUpdatedBy = userID
	r.store.companies[companyID] = company
	return nil
}

// pageSlice applies limit/offset pagination to an already sorted slice.
func pageSlice[T any](items []T, limit int, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]T, end-offset)
	copy(out, items[offset:end])
	return out
}
