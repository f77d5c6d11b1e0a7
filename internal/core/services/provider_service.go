package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	portsrepo "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/repositories"
	portssvc "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/services"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// providerService implements the provider master data operations.
type providerService struct {
	BaseService
	repo portsrepo.ProviderRepositoryFacade
}

var _ portssvc.ProviderSvcFacade = (*providerService)(nil)

// NewProviderService creates a new provider service.
func NewProviderService(repo portsrepo.ProviderRepositoryFacade) portssvc.ProviderSvcFacade {
	return &providerService{repo: repo}
}

// one is the upper bound for a commission rate expressed as a fraction.
var one = decimal.NewFromInt(1)

func validateCommissionRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThanOrEqual(one) {
		return fmt.Errorf("%w: commission rate %s must be in [0, 1)", apperrors.ErrValidation, rate)
	}
	return nil
}

func (s *providerService) CreateProvider(ctx context.Context, req dto.CreateProviderRequest, userID string) (*domain.Provider, error) {
	if err := validateCommissionRate(req.CommissionRate); err != nil {
		return nil, err
	}

	now := time.Now()
	provider := domain.Provider{
		ProviderID:     uuid.NewString(),
		Name:           req.Name,
		TaxID:          req.TaxID,
		CommissionRate: req.CommissionRate,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.repo.SaveProvider(ctx, provider); err != nil {
		s.LogError(ctx, err, "Failed to save provider", slog.String("provider_id", provider.ProviderID))
		return nil, err
	}

	s.LogInfo(ctx, "Provider created", slog.String("provider_id", provider.ProviderID), slog.String("name", provider.Name))
	return &provider, nil
}

func (s *providerService) GetProviderByID(ctx context.Context, providerID string) (*domain.Provider, error) {
	provider, err := s.repo.FindProviderByID(ctx, providerID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find provider", slog.String("provider_id", providerID))
		}
		return nil, err
	}
	return provider, nil
}

func (s *providerService) ListProviders(ctx context.Context, limit int, offset int) ([]domain.Provider, error) {
	providers, err := s.repo.ListProviders(ctx, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list providers", slog.Int("limit", limit), slog.Int("offset", offset))
		return nil, err
	}
	if providers == nil {
		return []domain.Provider{}, nil
	}
	return providers, nil
}

func (s *providerService) UpdateProvider(ctx context.Context, providerID string, req dto.UpdateProviderRequest, userID string) (*domain.Provider, error) {
	provider, err := s.repo.FindProviderByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		provider.Name = *req.Name
	}
	if req.TaxID != nil {
		provider.TaxID = *req.TaxID
	}
	if req.CommissionRate != nil {
		if err := validateCommissionRate(*req.CommissionRate); err != nil {
			return nil, err
		}
		// Only future cutoffs pick this up; issued payables keep the rate
		// frozen at their cutoff time.
		provider.CommissionRate = *req.CommissionRate
	}
	if req.IsActive != nil {
		provider.IsActive = *req.IsActive
	}
	provider.LastUpdatedAt = time.Now()
	provider.LastUpdatedBy = userID

	if err := s.repo.UpdateProvider(ctx, *provider); err != nil {
		s.LogError(ctx, err, "Failed to update provider", slog.String("provider_id", providerID))
		return nil, err
	}

	s.LogInfo(ctx, "Provider updated", slog.String("provider_id", providerID))
	return provider, nil
}

func (s *providerService) DeactivateProvider(ctx context.Context, providerID string, userID string) error {
	if err := s.repo.DeactivateProvider(ctx, providerID, userID, time.Now()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to deactivate provider", slog.String("provider_id", providerID))
		}
		return err
	}
	s.LogInfo(ctx, "Provider deactivated", slog.String("provider_id", providerID))
	return nil
}
