package dto

import (
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCompanyRequest defines the data needed to create a new company.
type CreateCompanyRequest struct {
	Name            string          `json:"name" binding:"required"`
	TaxID           string          `json:"taxID" binding:"required"`
	CreditLimit     decimal.Decimal `json:"creditLimit"` // 0 means unlimited
	CutoffDay       int             `json:"cutoffDay" binding:"required,min=1,max=28"`
	GracePeriodDays int             `json:"gracePeriodDays" binding:"min=0"` // 0 falls back to the global default
}

// UpdateCompanyRequest defines the data allowed for updating a company.
// Pointers distinguish zero-value updates from fields not provided.
type UpdateCompanyRequest struct {
	Name            *string          `json:"name"`
	TaxID           *string          `json:"taxID"`
	CreditLimit     *decimal.Decimal `json:"creditLimit"`
	CutoffDay       *int             `json:"cutoffDay" binding:"omitempty,min=1,max=28"`
	GracePeriodDays *int             `json:"gracePeriodDays" binding:"omitempty,min=0"`
	IsActive        *bool            `json:"isActive"`
}

// CompanyResponse defines the data returned for a company.
type CompanyResponse struct {
	CompanyID       string          `json:"companyID"`
	Name            string          `json:"name"`
	TaxID           string          `json:"taxID"`
	CreditLimit     decimal.Decimal `json:"creditLimit"`
	Unlimited       bool            `json:"unlimited"`
	CutoffDay       int             `json:"cutoffDay"`
	GracePeriodDays int             `json:"gracePeriodDays"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
	LastUpdatedAt   time.Time       `json:"lastUpdatedAt"`
}

// ToCompanyResponse converts a domain.Company to CompanyResponse.
func ToCompanyResponse(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		CompanyID:       c.CompanyID,
		Name:            c.Name,
		TaxID:           c.TaxID,
		CreditLimit:     c.CreditLimit,
		Unlimited:       c.Unlimited(),
		CutoffDay:       c.CutoffDay,
		GracePeriodDays: c.GracePeriodDays,
		IsActive:        c.IsActive,
		CreatedAt:       c.CreatedAt,
		LastUpdatedAt:   c.LastUpdatedAt,
	}
}

// ToCompanyResponses converts a slice of companies.
func ToCompanyResponses(companies []domain.Company) []CompanyResponse {
	out := make([]CompanyResponse, len(companies))
	for i := range companies {
		out[i] = ToCompanyResponse(&companies[i])
	}
	return out
}
