package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Consumption is a debit event against an employee's available balance. It is
// immutable once created except for the single false->true flip of Reversed.
// A reversed consumption is excluded from every aggregate but kept for audit.
type Consumption struct {
	ConsumptionID string          `json:"consumptionID"` // Primary Key (UUID)
	Sequence      int64           `json:"sequence"`      // Monotonic creation sequence; billing tie-break after timestamp
	EmployeeID    string          `json:"employeeID"`    // FK -> employees.employee_id
	CompanyID     string          `json:"companyID"`     // Denormalized from the employee for cutoff collection
	ProviderID    string          `json:"providerID"`    // FK -> providers.provider_id
	Amount        decimal.Decimal `json:"amount"`        // Positive
	ConsumedAt    time.Time       `json:"consumedAt"`
	Note          string          `json:"note"`
	Reversed      bool            `json:"reversed"`
	ReceivableID  *string         `json:"receivableID"` // Nil while unbilled on the company side
	PayableID     *string         `json:"payableID"`    // Nil while unbilled on the provider side
	AuditFields
}

// Billed reports whether the consumption has been aggregated into a company
// receivable document.
func (c Consumption) Billed() bool {
	return c.ReceivableID != nil
}
