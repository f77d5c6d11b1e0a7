package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	portsrepo "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/repositories"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/repositories/database/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededRepos(t *testing.T) (portsrepo.RepositoryProvider, domain.Employee, domain.Provider) {
	t.Helper()
	repos := memory.NewRepositoryProvider(memory.NewStore())
	ctx := context.Background()
	now := time.Now()
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: "seed", LastUpdatedAt: now, LastUpdatedBy: "seed"}

	company := domain.Company{
		CompanyID:   uuid.NewString(),
		Name:        "Acme Corp",
		TaxID:       uuid.NewString(),
		CreditLimit: decimal.RequireFromString("100000.00"),
		CutoffDay:   15,
		IsActive:    true,
		AuditFields: audit,
	}
	require.NoError(t, repos.CompanyRepo.SaveCompany(ctx, company))

	employee := domain.Employee{
		EmployeeID:       uuid.NewString(),
		CompanyID:        company.CompanyID,
		Name:             "Jordan Reyes",
		DocumentNumber:   uuid.NewString(),
		AllocatedLimit:   decimal.RequireFromString("10000.00"),
		AvailableBalance: decimal.RequireFromString("10000.00"),
		IsActive:         true,
		AuditFields:      audit,
	}
	require.NoError(t, repos.EmployeeRepo.SaveEmployee(ctx, employee))

	provider := domain.Provider{
		ProviderID:     uuid.NewString(),
		Name:           "Comedor Central",
		TaxID:          uuid.NewString(),
		CommissionRate: decimal.RequireFromString("0.05"),
		IsActive:       true,
		AuditFields:    audit,
	}
	require.NoError(t, repos.ProviderRepo.SaveProvider(ctx, provider))

	return repos, employee, provider
}

func debitAt(t *testing.T, repos portsrepo.RepositoryProvider, employee domain.Employee, provider domain.Provider, amount string, consumedAt time.Time) domain.Consumption {
	t.Helper()
	now := time.Now()
	created, err := repos.ConsumptionRepo.ApplyDebit(context.Background(), domain.Consumption{
		ConsumptionID: uuid.NewString(),
		EmployeeID:    employee.EmployeeID,
		CompanyID:     employee.CompanyID,
		ProviderID:    provider.ProviderID,
		Amount:        decimal.RequireFromString(amount),
		ConsumedAt:    consumedAt,
		AuditFields:   domain.AuditFields{CreatedAt: now, CreatedBy: "seed", LastUpdatedAt: now, LastUpdatedBy: "seed"},
	}, true)
	require.NoError(t, err)
	return *created
}

func TestListConsumptionsByEmployee_KeysetPagination(t *testing.T) {
	repos, employee, provider := newSeededRepos(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	var all []domain.Consumption
	for i := 0; i < 7; i++ {
		all = append(all, debitAt(t, repos, employee, provider, "10.00", base.Add(time.Duration(i)*time.Hour)))
	}

	// First page, newest first.
	page1, token, err := repos.ConsumptionRepo.ListConsumptionsByEmployee(ctx, employee.EmployeeID, 3, nil)
	require.NoError(t, err)
	require.Len(t, page1, 3)
	require.NotNil(t, token)
	assert.Equal(t, all[6].ConsumptionID, page1[0].ConsumptionID)
	assert.Equal(t, all[4].ConsumptionID, page1[2].ConsumptionID)

	// Resume from the token, no overlap with the first page.
	page2, token, err := repos.ConsumptionRepo.ListConsumptionsByEmployee(ctx, employee.EmployeeID, 3, token)
	require.NoError(t, err)
	require.Len(t, page2, 3)
	require.NotNil(t, token)
	assert.Equal(t, all[3].ConsumptionID, page2[0].ConsumptionID)

	// Final short page has no token.
	page3, token, err := repos.ConsumptionRepo.ListConsumptionsByEmployee(ctx, employee.EmployeeID, 3, token)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, all[0].ConsumptionID, page3[0].ConsumptionID)
	assert.Nil(t, token)
}

func TestListConsumptionsByEmployee_SequenceBreaksTimestampTies(t *testing.T) {
	repos, employee, provider := newSeededRepos(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	first := debitAt(t, repos, employee, provider, "10.00", at)
	second := debitAt(t, repos, employee, provider, "20.00", at)
	third := debitAt(t, repos, employee, provider, "30.00", at)

	// Newest first with a page boundary inside the tie.
	page1, token, err := repos.ConsumptionRepo.ListConsumptionsByEmployee(ctx, employee.EmployeeID, 2, nil)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, token)
	assert.Equal(t, third.ConsumptionID, page1[0].ConsumptionID)
	assert.Equal(t, second.ConsumptionID, page1[1].ConsumptionID)

	page2, token, err := repos.ConsumptionRepo.ListConsumptionsByEmployee(ctx, employee.EmployeeID, 2, token)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, first.ConsumptionID, page2[0].ConsumptionID)
	assert.Nil(t, token)
}

func TestListUnbilledByCompany_BillingOrderAndBounds(t *testing.T) {
	repos, employee, provider := newSeededRepos(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	early := debitAt(t, repos, employee, provider, "10.00", base)
	middle := debitAt(t, repos, employee, provider, "20.00", base.Add(time.Hour))
	late := debitAt(t, repos, employee, provider, "30.00", base.Add(48*time.Hour))

	// The upper bound excludes the late consumption.
	rows, token, err := repos.ConsumptionRepo.ListUnbilledByCompany(ctx, employee.CompanyID, base.Add(2*time.Hour), 10, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Nil(t, token)
	// Ascending billing order.
	assert.Equal(t, early.ConsumptionID, rows[0].ConsumptionID)
	assert.Equal(t, middle.ConsumptionID, rows[1].ConsumptionID)

	// Reversed consumptions drop out of the unbilled view.
	require.NoError(t, repos.ConsumptionRepo.MarkReversed(ctx, early, "seed", time.Now()))
	rows, _, err = repos.ConsumptionRepo.ListUnbilledByCompany(ctx, employee.CompanyID, base.Add(72*time.Hour), 10, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, middle.ConsumptionID, rows[0].ConsumptionID)
	assert.Equal(t, late.ConsumptionID, rows[1].ConsumptionID)
}

func TestListUnbilledByEmployee_ExcludesBilledAndReversed(t *testing.T) {
	repos, employee, provider := newSeededRepos(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	billed := debitAt(t, repos, employee, provider, "10.00", base)
	reversed := debitAt(t, repos, employee, provider, "20.00", base.Add(time.Hour))
	open := debitAt(t, repos, employee, provider, "30.00", base.Add(2*time.Hour))

	doc := domain.ReceivableDocument{
		ReceivableID: uuid.NewString(),
		CompanyID:    employee.CompanyID,
		Period:       domain.Period{From: base.Add(-time.Hour), To: base.Add(30 * time.Minute)},
		Total:        decimal.RequireFromString("10.00"),
		Paid:         decimal.Zero,
		Status:       domain.StatusPending,
		IssuedAt:     base,
		DueAt:        base.AddDate(0, 0, 15),
	}
	require.NoError(t, repos.DocumentRepo.CreateReceivableWithConsumptions(ctx, doc, []string{billed.ConsumptionID}))
	require.NoError(t, repos.ConsumptionRepo.MarkReversed(ctx, reversed, "seed", time.Now()))

	rows, token, err := repos.ConsumptionRepo.ListUnbilledByEmployee(ctx, employee.EmployeeID, base.Add(24*time.Hour), 10, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, token)
	assert.Equal(t, open.ConsumptionID, rows[0].ConsumptionID)

	// The upper bound applies here too.
	rows, _, err = repos.ConsumptionRepo.ListUnbilledByEmployee(ctx, employee.EmployeeID, base.Add(90*time.Minute), 10, nil)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestCreateReceivableWithConsumptions_OverlappingPeriodConflicts(t *testing.T) {
	repos, employee, provider := newSeededRepos(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	first := debitAt(t, repos, employee, provider, "10.00", base)
	second := debitAt(t, repos, employee, provider, "20.00", base.Add(time.Hour))

	doc := domain.ReceivableDocument{
		ReceivableID: uuid.NewString(),
		CompanyID:    employee.CompanyID,
		Period:       domain.Period{From: base.Add(-time.Hour), To: base.Add(24 * time.Hour)},
		Total:        decimal.RequireFromString("10.00"),
		Paid:         decimal.Zero,
		Status:       domain.StatusPending,
		IssuedAt:     base,
		DueAt:        base.AddDate(0, 0, 15),
	}
	require.NoError(t, repos.DocumentRepo.CreateReceivableWithConsumptions(ctx, doc, []string{first.ConsumptionID}))

	// A document whose period start falls inside an already billed period is
	// a stale derivation and must conflict, even with fresh consumptions.
	overlapping := domain.ReceivableDocument{
		ReceivableID: uuid.NewString(),
		CompanyID:    employee.CompanyID,
		Period:       domain.Period{From: base.Add(12 * time.Hour), To: base.Add(48 * time.Hour)},
		Total:        decimal.RequireFromString("20.00"),
		Paid:         decimal.Zero,
		Status:       domain.StatusPending,
		IssuedAt:     base,
		DueAt:        base.AddDate(0, 0, 15),
	}
	err := repos.DocumentRepo.CreateReceivableWithConsumptions(ctx, overlapping, []string{second.ConsumptionID})
	require.ErrorIs(t, err, apperrors.ErrConflict)

	// The conflicted run left nothing behind: the consumption is still
	// unbilled and billable into the next disjoint period.
	rows, _, err := repos.ConsumptionRepo.ListUnbilledByCompany(ctx, employee.CompanyID, base.Add(48*time.Hour), 10, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, second.ConsumptionID, rows[0].ConsumptionID)
}

func TestSaveEmployee_ReverifiesPoolInCriticalSection(t *testing.T) {
	repos, employee, _ := newSeededRepos(t)
	ctx := context.Background()
	now := time.Now()

	// The seeded company pool is 100000.00 with 10000.00 already allocated.
	oversized := domain.Employee{
		EmployeeID:       uuid.NewString(),
		CompanyID:        employee.CompanyID,
		Name:             "Over Pool",
		DocumentNumber:   uuid.NewString(),
		AllocatedLimit:   decimal.RequireFromString("90000.01"),
		AvailableBalance: decimal.RequireFromString("90000.01"),
		IsActive:         true,
		AuditFields:      domain.AuditFields{CreatedAt: now, CreatedBy: "seed", LastUpdatedAt: now, LastUpdatedBy: "seed"},
	}
	err := repos.EmployeeRepo.SaveEmployee(ctx, oversized)
	require.ErrorIs(t, err, apperrors.ErrCreditExceeded)

	// Exactly filling the remainder passes.
	oversized.AllocatedLimit = decimal.RequireFromString("90000.00")
	oversized.AvailableBalance = oversized.AllocatedLimit
	require.NoError(t, repos.EmployeeRepo.SaveEmployee(ctx, oversized))
}

func TestApplyDebit_GuardsBalanceUnderEnforcement(t *testing.T) {
	repos, employee, provider := newSeededRepos(t)
	ctx := context.Background()

	_, err := repos.ConsumptionRepo.ApplyDebit(ctx, domain.Consumption{
		ConsumptionID: uuid.NewString(),
		EmployeeID:    employee.EmployeeID,
		CompanyID:     employee.CompanyID,
		ProviderID:    provider.ProviderID,
		Amount:        decimal.RequireFromString("10000.01"),
		ConsumedAt:    time.Now(),
	}, true)
	require.ErrorIs(t, err, apperrors.ErrInsufficientCredit)

	// The same debit passes with enforcement off (unlimited company pool).
	created, err := repos.ConsumptionRepo.ApplyDebit(ctx, domain.Consumption{
		ConsumptionID: uuid.NewString(),
		EmployeeID:    employee.EmployeeID,
		CompanyID:     employee.CompanyID,
		ProviderID:    provider.ProviderID,
		Amount:        decimal.RequireFromString("10000.01"),
		ConsumedAt:    time.Now(),
	}, false)
	require.NoError(t, err)
	assert.Positive(t, created.Sequence)
}

func TestMarkReversed_RacedSecondReversalConflicts(t *testing.T) {
	repos, employee, provider := newSeededRepos(t)
	ctx := context.Background()

	consumption := debitAt(t, repos, employee, provider, "50.00", time.Now())

	require.NoError(t, repos.ConsumptionRepo.MarkReversed(ctx, consumption, "seed", time.Now()))
	// A second writer holding the same stale read loses.
	err := repos.ConsumptionRepo.MarkReversed(ctx, consumption, "seed", time.Now())
	require.ErrorIs(t, err, apperrors.ErrConflict)
}
