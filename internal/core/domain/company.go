package domain

import (
	"github.com/shopspring/decimal"
)

// Company represents an employer entity (Empresa) extending a credit pool to
// its employees. Companies are billed for their employees' consumptions via
// receivable documents (CxC).
type Company struct {
	CompanyID       string          `json:"companyID"` // Primary Key (UUID)
	Name            string          `json:"name"`
	TaxID           string          `json:"taxID"`
	CreditLimit     decimal.Decimal `json:"creditLimit"` // 0 means unlimited
	CutoffDay       int             `json:"cutoffDay"`   // Day of month the billing cycle closes (1-28)
	GracePeriodDays int             `json:"gracePeriodDays"` // Days between emission and due date; 0 falls back to the global default
	IsActive        bool            `json:"isActive"`
	AuditFields
}

// Unlimited reports whether the company's credit pool is unconstrained.
func (c Company) Unlimited() bool {
	return c.CreditLimit.IsZero()
}
