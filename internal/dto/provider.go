package dto

import (
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateProviderRequest defines the data needed to create a new provider.
type CreateProviderRequest struct {
	Name           string          `json:"name" binding:"required"`
	TaxID          string          `json:"taxID" binding:"required"`
	CommissionRate decimal.Decimal `json:"commissionRate" binding:"dgte0"` // Fraction, e.g. 0.05
}

// UpdateProviderRequest defines the data allowed for updating a provider.
type UpdateProviderRequest struct {
	Name           *string          `json:"name"`
	TaxID          *string          `json:"taxID"`
	CommissionRate *decimal.Decimal `json:"commissionRate"`
	IsActive       *bool            `json:"isActive"`
}

// ProviderResponse defines the data returned for a provider.
type ProviderResponse struct {
	ProviderID     string          `json:"providerID"`
	Name           string          `json:"name"`
	TaxID          string          `json:"taxID"`
	CommissionRate decimal.Decimal `json:"commissionRate"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
}

// ToProviderResponse converts a domain.Provider to ProviderResponse.
func ToProviderResponse(p *domain.Provider) ProviderResponse {
	return ProviderResponse{
		ProviderID:     p.ProviderID,
		Name:           p.Name,
		TaxID:          p.TaxID,
		CommissionRate: p.CommissionRate,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		LastUpdatedAt:  p.LastUpdatedAt,
	}
}

// ToProviderResponses converts a slice of providers.
func ToProviderResponses(providers []domain.Provider) []ProviderResponse {
	out := make([]ProviderResponse, len(providers))
	for i := range providers {
		out[i] = ToProviderResponse(&providers[i])
	}
	return out
}
