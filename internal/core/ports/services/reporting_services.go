package services

import (
	"context"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
)

// ReportingSvcFacade produces the read-only aggregate reports rendered by the
// console. Pure projections over the data model, computed on demand.
type ReportingSvcFacade interface {
	// EmployeeConsumption aggregates a company's consumption by employee.
	EmployeeConsumption(ctx context.Context, companyID string, period domain.Period) ([]domain.EmployeeConsumptionRow, error)

	// ProviderSettlement aggregates consumption by provider with commission split.
	ProviderSettlement(ctx context.Context, period domain.Period) ([]domain.ProviderSettlementRow, error)

	// CompanyExposure reports a company's current credit position.
	CompanyExposure(ctx context.Context, companyID string) (*domain.CompanyExposureReport, error)

	// ReceivableAgeing buckets open receivable balances by days overdue.
	ReceivableAgeing(ctx context.Context, asOf time.Time) ([]domain.DocumentAgeingRow, error)
}
