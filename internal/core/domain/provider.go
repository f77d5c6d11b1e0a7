package domain

import (
	"github.com/shopspring/decimal"
)

// Provider is a merchant (Proveedor) affiliated to accept credit-backed
// consumptions. Providers are settled net of commission via payable
// documents (CxP).
type Provider struct {
	ProviderID     string          `json:"providerID"` // Primary Key (UUID)
	Name           string          `json:"name"`
	TaxID          string          `json:"taxID"`
	CommissionRate decimal.Decimal `json:"commissionRate"` // Fraction, e.g. 0.05 for 5%
	IsActive       bool            `json:"isActive"`
	AuditFields
}
