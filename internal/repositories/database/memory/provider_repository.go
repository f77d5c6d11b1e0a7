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

type providerRepository struct {
	store *Store
}

var _ portsrepo.ProviderRepositoryFacade = (*providerRepository)(nil)

func newProviderRepository(store *Store) *providerRepository {
	return &providerRepository{store: store}
}

func (r *providerRepository) SaveProvider(_ context.Context, provider domain.Provider) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.providers[provider.ProviderID]; exists {
		return fmt.Errorf("%w: provider %s", apperrors.ErrDuplicate, provider.ProviderID)
	}
	r.store.providers[provider.ProviderID] = provider
	return nil
}

func (r *providerRepository) FindProviderByID(_ context.Context, providerID string) (*domain.Provider, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	provider, ok := r.store.providers[providerID]
	if !ok {
		return nil, fmt.Errorf("%w: provider %s", apperrors.ErrNotFound, providerID)
	}
	return &provider, nil
}

func (r *providerRepository) ListProviders(_ context.Context, limit int, offset int) ([]domain.Provider, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	providers := make([]domain.Provider, 0, len(r.store.providers))
	for _, p := range r.store.providers {
		providers = append(providers, p)
	}
	sort.Slice(providers, func(i, j int) bool {
		if !providers[i].CreatedAt.Equal(providers[j].CreatedAt) {
			return providers[i].CreatedAt.Before(providers[j].CreatedAt)
		}
		return providers[i].ProviderID < providers[j].ProviderID
	})
	return pageSlice(providers, limit, offset), nil
}

func (r *providerRepository) UpdateProvider(_ context.Context, provider domain.Provider) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.providers[provider.ProviderID]; !ok {
		return fmt.Errorf("%w: provider %s", apperrors.ErrNotFound, provider.ProviderID)
	}
	r.store.providers[provider.ProviderID] = provider
	return nil
}

func (r *providerRepository) DeactivateProvider(_ context.Context, providerID string, userID string, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	provider, ok := r.store.providers[providerID]
	if !ok {
		return fmt.Errorf("%w: provider %s", apperrors.ErrNotFound, providerID)
	}
	if !provider.IsActive {
		return fmt.Errorf("%w: provider %s is already inactive", apperrors.ErrValidation, providerID)
	}
	provider.IsActive = false
	provider.LastUpdatedAt = now
	provider.LastUpdatedBy = userID
	r.store.providers[providerID] = provider
	return nil
}
