package domain

import (
	"github.com/shopspring/decimal"
)

// EmployeeConsumptionRow represents one employee's aggregated consumption over
// a report period.
type EmployeeConsumptionRow struct {
	EmployeeID   string          `json:"employeeID"`
	EmployeeName string          `json:"employeeName"`
	Count        int             `json:"count"`
	Total        decimal.Decimal `json:"total"`
}

// ProviderSettlementRow represents one provider's aggregated consumption and
// commission split over a report period.
type ProviderSettlementRow struct {
	ProviderID   string          `json:"providerID"`
	ProviderName string          `json:"providerName"`
	Count        int             `json:"count"`
	Gross        decimal.Decimal `json:"gross"`
	Commission   decimal.Decimal `json:"commission"`
	Net          decimal.Decimal `json:"net"`
}

// CompanyExposureReport shows a company's credit position: how much of the
// pool is allocated, how much is consumed but unbilled, and how much sits in
// open documents.
type CompanyExposureReport struct {
	CompanyID        string          `json:"companyID"`
	CompanyName      string          `json:"companyName"`
	CreditLimit      decimal.Decimal `json:"creditLimit"`
	Unlimited        bool            `json:"unlimited"`
	TotalAllocated   decimal.Decimal `json:"totalAllocated"`
	UnbilledConsumed decimal.Decimal `json:"unbilledConsumed"`
	OpenReceivables  decimal.Decimal `json:"openReceivables"`  // Pending balance of PENDING/PARTIAL documents
	OpenRefinancings decimal.Decimal `json:"openRefinancings"` // Pending balance of non-terminal refinancings
}

// DocumentAgeingRow buckets open document balances by days overdue.
type DocumentAgeingRow struct {
	Bucket  string          `json:"bucket"` // "current", "1-30", "31-60", "61-90", "90+"
	Count   int             `json:"count"`
	Pending decimal.Decimal `json:"pending"`
}
