package repositories

import (
	"context"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
)

// ProviderReader defines read operations for provider master data
type ProviderReader interface {
	// FindProviderByID retrieves a specific provider by its unique identifier.
	FindProviderByID(ctx context.Context, providerID string) (*domain.Provider, error)

	// ListProviders retrieves a paginated list of providers.
	ListProviders(ctx context.Context, limit int, offset int) ([]domain.Provider, error)
}

// ProviderWriter defines write operations for provider master data
type ProviderWriter interface {
	// SaveProvider persists a new provider.
	SaveProvider(ctx context.Context, provider domain.Provider) error

	// UpdateProvider updates an existing provider's details.
	UpdateProvider(ctx context.Context, provider domain.Provider) error

	// DeactivateProvider marks a provider as inactive.
	DeactivateProvider(ctx context.Context, providerID string, userID string, now time.Time) error
}

// ProviderRepositoryFacade combines all provider-related repository interfaces.
type ProviderRepositoryFacade interface {
	ProviderReader
	ProviderWriter
}
