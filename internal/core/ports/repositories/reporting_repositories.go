package repositories

import (
	"context"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
)

// ReportingRepository provides the aggregate queries behind the console's
// printable reports. All of them are pure projections and never mutate state.
type ReportingRepository interface {
	// GetEmployeeConsumptionData aggregates non-reversed consumptions of a
	// company by employee over the period.
	GetEmployeeConsumptionData(ctx context.Context, companyID string, period domain.Period) ([]domain.EmployeeConsumptionRow, error)

	// GetProviderSettlementData aggregates non-reversed consumptions by
	// provider over the period, with the commission split at current rates.
	GetProviderSettlementData(ctx context.Context, period domain.Period) ([]domain.ProviderSettlementRow, error)

	// GetCompanyExposureData computes a company's current credit position.
	GetCompanyExposureData(ctx context.Context, companyID string) (*domain.CompanyExposureReport, error)

	// GetReceivableAgeingData buckets open receivable balances by days overdue
	// relative to asOf.
	GetReceivableAgeingData(ctx context.Context, asOf time.Time) ([]domain.DocumentAgeingRow, error)
}
