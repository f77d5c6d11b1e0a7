package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	portsrepo "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type reportingRepository struct {
	store *Store
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

func newReportingRepository(store *Store) *reportingRepository {
	return &reportingRepository{store: store}
}

func (r *reportingRepository) GetEmployeeConsumptionData(_ context.Context, companyID string, period domain.Period) ([]domain.EmployeeConsumptionRow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byEmployee := make(map[string]*domain.EmployeeConsumptionRow)
	for _, c := range r.store.consumptions {
		if c.CompanyID != companyID || c.Reversed || !period.Contains(c.ConsumedAt) {
			continue
		}
		row, ok := byEmployee[c.EmployeeID]
		if !ok {
			name := ""
			if e, found := r.store.employees[c.EmployeeID]; found {
				name = e.Name
			}
			row = &domain.EmployeeConsumptionRow{EmployeeID: c.EmployeeID, EmployeeName: name, Total: decimal.Zero}
			byEmployee[c.EmployeeID] = row
		}
		row.Count++
		row.Total = row.Total.Add(c.Amount)
	}

	rows := make([]domain.EmployeeConsumptionRow, 0, len(byEmployee))
	for _, row := range byEmployee {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Total.GreaterThan(rows[j].Total) })
	return rows, nil
}

func (r *reportingRepository) GetProviderSettlementData(_ context.Context, period domain.Period) ([]domain.ProviderSettlementRow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byProvider := make(map[string]*domain.ProviderSettlementRow)
	for _, c := range r.store.consumptions {
		if c.Reversed || !period.Contains(c.ConsumedAt) {
			continue
		}
		row, ok := byProvider[c.ProviderID]
		if !ok {
			name := ""
			if p, found := r.store.providers[c.ProviderID]; found {
				name = p.Name
			}
			row = &domain.ProviderSettlementRow{ProviderID: c.ProviderID, ProviderName: name, Gross: decimal.Zero}
			byProvider[c.ProviderID] = row
		}
		row.Count++
		row.Gross = row.Gross.Add(c.Amount)
	}

	rows := make([]domain.ProviderSettlementRow, 0, len(byProvider))
	for _, row := range byProvider {
		// Report at the provider's current rate; issued payables keep their
		// own frozen rate independently of this projection.
		rate := decimal.Zero
		if p, found := r.store.providers[row.ProviderID]; found {
			rate = p.CommissionRate
		}
		row.Commission = domain.ComputeCommission(row.Gross, rate)
		row.Net = row.Gross.Sub(row.Commission)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Gross.GreaterThan(rows[j].Gross) })
	return rows, nil
}

func (r *reportingRepository) GetCompanyExposureData(_ context.Context, companyID string) (*domain.CompanyExposureReport, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	company, ok := r.store.companies[companyID]
	if !ok {
		return nil, fmt.Errorf("%w: company %s", apperrors.ErrNotFound, companyID)
	}

	report := &domain.CompanyExposureReport{
		CompanyID:        companyID,
		CompanyName:      company.Name,
		CreditLimit:      company.CreditLimit,
		Unlimited:        company.Unlimited(),
		TotalAllocated:   decimal.Zero,
		UnbilledConsumed: decimal.Zero,
		OpenReceivables:  decimal.Zero,
		OpenRefinancings: decimal.Zero,
	}

	for _, e := range r.store.employees {
		if e.CompanyID == companyID && e.IsActive {
			report.TotalAllocated = report.TotalAllocated.Add(e.AllocatedLimit)
		}
	}
	for _, c := range r.store.consumptions {
		if c.CompanyID == companyID && !c.Reversed && c.ReceivableID == nil {
			report.UnbilledConsumed = report.UnbilledConsumed.Add(c.Amount)
		}
	}
	for _, doc := range r.store.receivables {
		if doc.CompanyID == companyID && !doc.Status.Terminal() {
			report.OpenReceivables = report.OpenReceivables.Add(doc.Pending())
		}
	}
	for _, refinancing := range r.store.refinancings {
		if refinancing.CompanyID == companyID && !refinancing.Status.Terminal() {
			report.OpenRefinancings = report.OpenRefinancings.Add(refinancing.Pending())
		}
	}
	return report, nil
}

func (r *reportingRepository) GetReceivableAgeingData(_ context.Context, asOf time.Time) ([]domain.DocumentAgeingRow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	buckets := []domain.DocumentAgeingRow{
		{Bucket: "current", Pending: decimal.Zero},
		{Bucket: "1-30", Pending: decimal.Zero},
		{Bucket: "31-60", Pending: decimal.Zero},
		{Bucket: "61-90", Pending: decimal.Zero},
		{Bucket: "90+", Pending: decimal.Zero},
	}

	for _, doc := range r.store.receivables {
		if doc.Status.Terminal() {
			continue
		}
		idx := ageingBucketIndex(doc.DueAt, asOf)
		buckets[idx].Count++
		buckets[idx].Pending = buckets[idx].Pending.Add(doc.Pending())
	}
	return buckets, nil
}

func ageingBucketIndex(dueAt, asOf time.Time) int {
	if !asOf.After(dueAt) {
		return 0
	}
	overdue := int(asOf.Sub(dueAt).Hours() / 24)
	switch {
	case overdue <= 30:
		return 1
	case overdue <= 60:
		return 2
	case overdue <= 90:
		return 3
	default:
		return 4
	}
}
