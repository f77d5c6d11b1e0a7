package domain

import (
	"github.com/shopspring/decimal"
)

// Employee holds a sub-allocation of its company's credit pool. The sum of
// allocated limits of a company's active employees never exceeds the company
// credit limit (unless that limit is 0, meaning unconstrained).
type Employee struct {
	EmployeeID       string          `json:"employeeID"` // Primary Key (UUID)
	CompanyID        string          `json:"companyID"`  // FK -> companies.company_id
	Name             string          `json:"name"`
	DocumentNumber   string          `json:"documentNumber"` // National ID / cedula shown on console screens
	AllocatedLimit   decimal.Decimal `json:"allocatedLimit"`
	AvailableBalance decimal.Decimal `json:"availableBalance"` // AllocatedLimit minus net outstanding debits
	IsActive         bool            `json:"isActive"`
	AuditFields
}

// NetConsumed is the outstanding amount currently debited against the limit.
func (e Employee) NetConsumed() decimal.Decimal {
	return e.AllocatedLimit.Sub(e.AvailableBalance)
}
