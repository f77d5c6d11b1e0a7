package services

import (
	"context"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/dto"
)

// ProviderReaderSvc defines read operations for provider master data
type ProviderReaderSvc interface {
	// GetProviderByID retrieves a specific provider by its ID.
	GetProviderByID(ctx context.Context, providerID string) (*domain.Provider, error)

	// ListProviders retrieves a paginated list of providers.
	ListProviders(ctx context.Context, limit int, offset int) ([]domain.Provider, error)
}

// ProviderWriterSvc defines write operations for provider master data
type ProviderWriterSvc interface {
	// CreateProvider persists a new provider.
	CreateProvider(ctx context.Context, req dto.CreateProviderRequest, userID string) (*domain.Provider, error)

	// UpdateProvider updates a provider's details. A commission rate change
	// only affects future cutoffs; issued documents keep their frozen rate.
	UpdateProvider(ctx context.Context, providerID string, req dto.UpdateProviderRequest, userID string) (*domain.Provider, error)

	// DeactivateProvider marks a provider as inactive.
	DeactivateProvider(ctx context.Context, providerID string, userID string) error
}

// ProviderSvcFacade combines all provider-related service interfaces.
type ProviderSvcFacade interface {
	ProviderReaderSvc
	ProviderWriterSvc
}
