package services_test

// End-to-end flows over the in-memory store: credit allocation, the
// consumption journal, billing cutoffs, settlement and refinancing, wired
// exactly as the service container wires them in production.

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	portssvc "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/services"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/services"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/dto"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/platform/config"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/repositories/database/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testUserID = "test-operator"

func newTestServices(t *testing.T) *portssvc.ServiceContainer {
	t.Helper()
	cfg := &config.Config{
		DefaultGracePeriodDays: 15,
		RefinancingWindowDays:  30,
	}
	return services.NewServiceContainer(cfg, memory.NewRepositoryProvider(memory.NewStore()))
}

func mustCreateCompany(t *testing.T, svc *portssvc.ServiceContainer, creditLimit string) *domain.Company {
	t.Helper()
	company, err := svc.Company.CreateCompany(context.Background(), dto.CreateCompanyRequest{
		Name:        "Acme Corp",
		TaxID:       uuid.NewString(),
		CreditLimit: decimal.RequireFromString(creditLimit),
		CutoffDay:   15,
	}, testUserID)
	require.NoError(t, err)
	return company
}

func mustCreateEmployee(t *testing.T, svc *portssvc.ServiceContainer, companyID, limit string) *domain.Employee {
	t.Helper()
	employee, err := svc.Employee.CreateEmployee(context.Background(), dto.CreateEmployeeRequest{
		CompanyID:      companyID,
		Name:           "Jordan Reyes",
		DocumentNumber: uuid.NewString(),
		AllocatedLimit: decimal.RequireFromString(limit),
	}, testUserID)
	require.NoError(t, err)
	return employee
}

func mustCreateProvider(t *testing.T, svc *portssvc.ServiceContainer, rate string) *domain.Provider {
	t.Helper()
	provider, err := svc.Provider.CreateProvider(context.Background(), dto.CreateProviderRequest{
		Name:           "Comedor Central",
		TaxID:          uuid.NewString(),
		CommissionRate: decimal.RequireFromString(rate),
	}, testUserID)
	require.NoError(t, err)
	return provider
}

func mustDebit(t *testing.T, svc *portssvc.ServiceContainer, employeeID, providerID, amount string) *domain.Consumption {
	t.Helper()
	consumption, err := svc.Consumption.Debit(context.Background(), dto.DebitRequest{
		EmployeeID: employeeID,
		ProviderID: providerID,
		Amount:     decimal.RequireFromString(amount),
	}, testUserID)
	require.NoError(t, err)
	return consumption
}

func TestAllocationNeverExceedsCompanyPool(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	company := mustCreateCompany(t, svc, "1000.00")

	mustCreateEmployee(t, svc, company.CompanyID, "600.00")

	// A second enrollment that would overrun the pool is rejected.
	_, err := svc.Employee.CreateEmployee(ctx, dto.CreateEmployeeRequest{
		CompanyID:      company.CompanyID,
		Name:           "Over Pool",
		DocumentNumber: uuid.NewString(),
		AllocatedLimit: decimal.RequireFromString("500.00"),
	}, testUserID)
	require.ErrorIs(t, err, apperrors.ErrCreditExceeded)

	// Exactly filling the pool is fine.
	second := mustCreateEmployee(t, svc, company.CompanyID, "400.00")

	available, unlimited, err := svc.Employee.AvailableToAssign(ctx, company.CompanyID, "")
	require.NoError(t, err)
	require.False(t, unlimited)
	require.True(t, available.IsZero())

	// Re-assigning an employee's own limit excludes it from the pool sum.
	updated, err := svc.Employee.AssignLimit(ctx, second.EmployeeID, decimal.RequireFromString("300.00"), testUserID)
	require.NoError(t, err)
	require.True(t, updated.AllocatedLimit.Equal(decimal.RequireFromString("300.00")))

	_, err = svc.Employee.AssignLimit(ctx, second.EmployeeID, decimal.RequireFromString("500.00"), testUserID)
	require.ErrorIs(t, err, apperrors.ErrCreditExceeded)
}

func TestAssignLimitPreservesConsumedAmount(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	company := mustCreateCompany(t, svc, "1000.00")
	employee := mustCreateEmployee(t, svc, company.CompanyID, "500.00")
	provider := mustCreateProvider(t, svc, "0.05")

	mustDebit(t, svc, employee.EmployeeID, provider.ProviderID, "200.00")

	// New limit 250 with 200 already consumed leaves 50 available.
	updated, err := svc.Employee.AssignLimit(ctx, employee.EmployeeID, decimal.RequireFromString("250.00"), testUserID)
	require.NoError(t, err)
	require.True(t, updated.AvailableBalance.Equal(decimal.RequireFromString("50.00")))

	// A limit below what is consumed drives the balance negative rather
	// than erasing debt.
	updated, err = svc.Employee.AssignLimit(ctx, employee.EmployeeID, decimal.RequireFromString("150.00"), testUserID)
	require.NoError(t, err)
	require.True(t, updated.AvailableBalance.Equal(decimal.RequireFromString("-50.00")))
}

func TestDebitInsufficientCredit(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	company := mustCreateCompany(t, svc, "1000.00")
	employee := mustCreateEmployee(t, svc, company.CompanyID, "100.00")
	provider := mustCreateProvider(t, svc, "0.05")

	mustDebit(t, svc, employee.EmployeeID, provider.ProviderID, "80.00")

	_, err := svc.Consumption.Debit(ctx, dto.DebitRequest{
		EmployeeID: employee.EmployeeID,
		ProviderID: provider.ProviderID,
		Amount:     decimal.RequireFromString("20.01"),
	}, testUserID)
	require.ErrorIs(t, err, apperrors.ErrInsufficientCredit)

	// The failed debit must not have touched the balance.
	current, err := svc.Employee.GetEmployeeByID(ctx, employee.EmployeeID)
	require.NoError(t, err)
	require.True(t, current.AvailableBalance.Equal(decimal.RequireFromString("20.00")))
}

func TestDebitUnlimitedCompanyBypassesBalance(t *testing.T) {
	svc := newTestServices(t)
	company := mustCreateCompany(t, svc, "0") // zero limit = unlimited pool
	employee := mustCreateEmployee(t, svc, company.CompanyID, "0")
	provider := mustCreateProvider(t, svc, "0.05")

	// Far beyond any allocated balance, still accepted.
	consumption := mustDebit(t, svc, employee.EmployeeID, provider.ProviderID, "99999.00")
	require.False(t, consumption.Reversed)
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	company := mustCreateCompany(t, svc, "1000.00")
	employee := mustCreateEmployee(t, svc, company.CompanyID, "100.00")
	provider := mustCreateProvider(t, svc, "0.05")

	// 10 racing debits of 30 against a balance of 100: at most 3 can land.
	var wg sync.WaitGroup
	succeeded := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Consumption.Debit(ctx, dto.DebitRequest{
				EmployeeID: employee.EmployeeID,
				ProviderID: provider.ProviderID,
				Amount:     decimal.RequireFromString("30.00"),
			}, testUserID)
			if err == nil {
				succeeded <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(succeeded)

	require.Equal(t, 3, len(succeeded))

	current, err := svc.Employee.GetEmployeeByID(ctx, employee.EmployeeID)
	require.NoError(t, err)
	require.True(t, current.AvailableBalance.Equal(decimal.RequireFromString("10.00")))
}

func TestReverseRestoresBalanceOnce(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	company := mustCreateCompany(t, svc, "1000.00")
	employee := mustCreateEmployee(t, svc, company.CompanyID, "500.00")
	provider := mustCreateProvider(t, svc, "0.05")

	consumption := mustDebit(t, svc, employee.EmployeeID, provider.ProviderID, "120.00")

	reversed, err := svc.Consumption.Reverse(ctx, consumption.ConsumptionID, testUserID)
	require.NoError(t, err)
	require.True(t, reversed.Reversed)

	current, err := svc.Employee.GetEmployeeByID(ctx, employee.EmployeeID)
	require.NoError(t, err)
	require.True(t, current.AvailableBalance.Equal(decimal.RequireFromString("500.00")))

	// Reversal is not repeatable.
	_, err = svc.Consumption.Reverse(ctx, consumption.ConsumptionID, testUserID)
	require.ErrorIs(t, err, apperrors.ErrAlreadyReversed)
}

func TestReverseBilledConsumptionRejected(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	company := mustCreateCompany(t, svc, "1000.00")
	employee := mustCreateEmployee(t, svc, company.CompanyID, "500.00")
	provider := mustCreateProvider(t, svc, "0.05")

	consumption := mustDebit(t, svc, employee.EmployeeID, provider.ProviderID, "120.00")

	doc, err := svc.Billing.RunCutoff(ctx, company.CompanyID, time.Now().Add(time.Minute), testUserID)
	require.NoError(t, err)
	require.NotNil(t, doc)

	_, err = svc.Consumption.Reverse(ctx, consumption.ConsumptionID, testUserID)
	require.ErrorIs(t, err, apperrors.ErrAlreadyBilled)
}

func TestCutoffAggregatesAndIsIdempotent(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	company := mustCreateCompany(t, svc, "1000.00")
	employee := mustCreateEmployee(t, svc, company.CompanyID, "500.00")
	provider := mustCreateProvider(t, svc, "0.05")

	mustDebit(t, svc, employee.EmployeeID, provider.ProviderID, "100.00")
	mustDebit(t, svc, employee.EmployeeID, provider.ProviderID, "50.00")
	reversedOne := mustDebit(t, svc, employee.EmployeeID, provider.ProviderID, "25.00")
	_, err := svc.Consumption.Reverse(ctx, reversedOne.ConsumptionID, testUserID)
	require.NoError(t, err)

	asOf := time.Now().Add(time.Minute)
	doc, err := svc.Billing.RunCutoff(ctx, company.CompanyID, asOf, testUserID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	// Reversed consumption excluded from the total.
	require.True(t, doc.Total.Equal(decimal.RequireFromString("150.00")), "got %s", doc.Total)
	require.Equal(t, domain.StatusPending, doc.Status)

	// A rerun over the same window has nothing left to bill.
	doc2, err := svc.Billing.RunCutoff(ctx, company.CompanyID, asOf, testUserID)
	require.NoError(t, err)
	require.Nil(t, doc2)

	// New consumption after the first cutoff lands in the next period,
	// which starts the day after the previous period ends.
	mustDebit(t, svc, employee.EmployeeID, provider.ProviderID, "60.00")
	doc3, err := svc.Billing.RunCutoff(ctx, company.CompanyID, asOf.AddDate(0, 1, 0), testUserID)
	require.NoError(t, err)
	require.NotNil(t, doc3)
	require.True(t, doc3.Total.Equal(decimal.RequireFromString("60.00")))
	require.True(t, doc3.Period.From.After(doc.Period.To))
}

func TestCutoffEmptyPeriodProducesNoDocument(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	company := mustCreateCompany(t, svc, "1000.00")

	doc, err := svc.Billing.RunCutoff(ctx, company.CompanyID, time.Now().Add(time.Minute), testUserID)
	require.NoError(t, err)
	require.Nil(t, doc)
}

func TestCutoffDocumentDatedFromCutoffDate(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	company := mustCreateCompany(t, svc, "1000.00")
	employee := mustCreateEmployee(t, svc, company.CompanyID, "500.00")
	provider := mustCreateProvider(t, svc, "0.08")

	mustDebit(t, svc, employee.EmployeeID, provider.ProviderID, "120.00")

	// A run scheduled well past the wall clock issues and comes due relative
	// to the cutoff date, not the moment the run executes.
	asOf := time.Now().AddDate(0, 0, 60)
	doc, err := svc.Billing.RunCutoff(ctx, company.CompanyID, asOf, testUserID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.True(t, doc.IssuedAt.Equal(asOf), "issued %s, want %s", doc.IssuedAt, asOf)
	require.True(t, doc.DueAt.Equal(asOf.AddDate(0, 0, company.GracePeriodDays)), "due %s", doc.DueAt)

	payable, err := svc.Billing.RunProviderCutoff(ctx, provider.ProviderID, asOf, testUserID)
	require.NoError(t, err)
	require.NotNil(t, payable)
	require.True(t, payable.IssuedAt.Equal(asOf))
}

func TestConcurrentEnrollmentsNeverOversubscribePool(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	company := mustCreateCompany(t, svc, "1000.00")

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Employee.CreateEmployee(ctx, dto.CreateEmployeeRequest{
				CompanyID:      company.CompanyID,
				Name:           "Raced Hire",
				DocumentNumber: uuid.NewString(),
				AllocatedLimit: decimal.RequireFromString("600.00"),
			}, testUserID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		if err == nil {
			created++
			continue
		}
		require.ErrorIs(t, err, apperrors.ErrCreditExceeded)
	}
	// Exactly one 600.00 enrollment fits a 1000.00 pool.
	require.Equal(t, 1, created)

	available, unlimited, err := svc.Employee.AvailableToAssign(ctx, company.CompanyID, "")
	require.NoError(t, err)
	require.False(t, unlimited)
	require.True(t, available.Equal(decimal.RequireFromString("400.00")), "got %s", available)
}

func TestProviderCutoffFreezesCommission(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	company := mustCreateCompany(t, svc, "0")
	employee := mustCreateEmployee(t, svc, company.CompanyID, "0")
	provider := mustCreateProvider(t, svc, "0.05")

	mustDebit(t, svc, employee.EmployeeID, provider.ProviderID, "200.00")

	doc, err := svc.Billing.RunProviderCutoff(ctx, provider.ProviderID, time.Now().Add(time.Minute), testUserID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.True(t, doc.Gross.Equal(decimal.RequireFromString("200.00")))
	require.True(t, doc.Commission.Equal(decimal.RequireFromString("10.00")))
	require.True(t, doc.Total.Equal(decimal.RequireFromString("190.00")))
	require.True(t, doc.CommissionRate.Equal(decimal.RequireFromString("0.05")))

	// A later rate change must not touch the issued document.
	newRate := decimal.RequireFromString("0.10")
	_, err = svc.Provider.UpdateProvider(ctx, provider.ProviderID, dto.UpdateProviderRequest{CommissionRate: &newRate}, testUserID)
	require.NoError(t, err)

	reloaded, err := svc.Settlement.GetPayableByID(ctx, doc.PayableID)
	require.NoError(t, err)
	require.True(t, reloaded.CommissionRate.Equal(decimal.RequireFromString("0.05")))
}

func TestReceivablePaymentLifecycle(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	company := mustCreateCompany(t, svc, "1000.00")
	employee := mustCreateEmployee(t, svc, company.CompanyID, "500.00")
	provider := mustCreateProvider(t, svc, "0.05")

	mustDebit(t, svc, employee.EmployeeID, provider.ProviderID, "300.00")
	doc, err := svc.Billing.RunCutoff(ctx, company.CompanyID, time.Now().Add(time.Minute), testUserID)
	require.NoError(t, err)

	partial, payment, err := svc.Settlement.ApplyReceivablePayment(ctx, doc.ReceivableID, dto.ApplyPaymentRequest{
		Amount: decimal.RequireFromString("100.00"),
		Method: domain.MethodTransfer,
	}, testUserID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPartial, partial.Status)
	require.NotNil(t, payment)

	// Overpaying the pending balance is rejected without mutation.
	_, _, err = svc.Settlement.ApplyReceivablePayment(ctx, doc.ReceivableID, dto.ApplyPaymentRequest{
		Amount: decimal.RequireFromString("200.01"),
		Method: domain.MethodCash,
	}, testUserID)
	require.ErrorIs(t, err, apperrors.ErrExceedsPending)

	settled, _, err := svc.Settlement.ApplyReceivablePayment(ctx, doc.ReceivableID, dto.ApplyPaymentRequest{
		Amount: decimal.RequireFromString("200.00"),
		Method: domain.MethodCheck,
	}, testUserID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, settled.Status)
	require.True(t, settled.Pending().IsZero())

	// Terminal: no further payments.
	_, _, err = svc.Settlement.ApplyReceivablePayment(ctx, doc.ReceivableID, dto.ApplyPaymentRequest{
		Amount: decimal.RequireFromString("1.00"),
		Method: domain.MethodCash,
	}, testUserID)
	require.ErrorIs(t, err, apperrors.ErrDocumentTerminal)

	// Payment history conserves the total.
	payments, err := svc.Settlement.ListPayments(ctx, doc.ReceivableID, domain.KindReceivable)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	require.True(t, sum.Equal(settled.Total))
}

func TestPaymentAmountMustBePositive(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	company := mustCreateCompany(t, svc, "1000.00")
	employee := mustCreateEmployee(t, svc, company.CompanyID, "500.00")
	provider := mustCreateProvider(t, svc, "0.05")

	mustDebit(t, svc, employee.EmployeeID, provider.ProviderID, "400.00")
	doc, err := svc.Billing.RunCutoff(ctx, company.CompanyID, time.Now().Add(time.Minute), testUserID)
	require.NoError(t, err)

	for _, amount := range []string{"-50.00", "0"} {
		_, _, err := svc.Settlement.ApplyReceivablePayment(ctx, doc.ReceivableID, dto.ApplyPaymentRequest{
			Amount: decimal.RequireFromString(amount),
			Method: domain.MethodTransfer,
		}, testUserID)
		require.ErrorIs(t, err, apperrors.ErrValidation, "amount %s", amount)
	}

	// The rejected payments left no trace on the document.
	reloaded, err := svc.Settlement.GetReceivableByID(ctx, doc.ReceivableID)
	require.NoError(t, err)
	require.True(t, reloaded.Paid.IsZero())
	require.Equal(t, domain.StatusPending, reloaded.Status)
}

func TestVoidReceivableKeepsConsumptionsOutOfFutureCutoffs(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	company := mustCreateCompany(t, svc, "1000.00")
	employee := mustCreateEmployee(t, svc, company.CompanyID, "500.00")
	provider := mustCreateProvider(t, svc, "0.05")

	mustDebit(t, svc, employee.EmployeeID, provider.ProviderID, "300.00")
	asOf := time.Now().Add(time.Minute)
	doc, err := svc.Billing.RunCutoff(ctx, company.CompanyID, asOf, testUserID)
	require.NoError(t, err)

	require.NoError(t, svc.Settlement.VoidReceivable(ctx, doc.ReceivableID, testUserID))

	voided, err := svc.Settlement.GetReceivableByID(ctx, doc.ReceivableID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusVoided, voided.Status)

	// Voiding is terminal too.
	require.ErrorIs(t, svc.Settlement.VoidReceivable(ctx, doc.ReceivableID, testUserID), apperrors.ErrDocumentTerminal)

	// The consumptions stay linked to the voided document and are not
	// re-billed by the next cutoff.
	doc2, err := svc.Billing.RunCutoff(ctx, company.CompanyID, asOf.AddDate(0, 1, 0), testUserID)
	require.NoError(t, err)
	require.Nil(t, doc2)
}

func TestRefinanceMovesDebtAndRestoresBalances(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	company := mustCreateCompany(t, svc, "1000.00")
	employee := mustCreateEmployee(t, svc, company.CompanyID, "500.00")
	provider := mustCreateProvider(t, svc, "0.05")

	mustDebit(t, svc, employee.EmployeeID, provider.ProviderID, "400.00")
	doc, err := svc.Billing.RunCutoff(ctx, company.CompanyID, time.Now().Add(time.Minute), testUserID)
	require.NoError(t, err)

	// Partial payment first, the refinancing covers only what is left.
	_, _, err = svc.Settlement.ApplyReceivablePayment(ctx, doc.ReceivableID, dto.ApplyPaymentRequest{
		Amount: decimal.RequireFromString("150.00"),
		Method: domain.MethodTransfer,
	}, testUserID)
	require.NoError(t, err)

	refinancing, err := svc.Refinancing.Refinance(ctx, doc.ReceivableID, testUserID)
	require.NoError(t, err)
	require.True(t, refinancing.OriginalAmount.Equal(decimal.RequireFromString("250.00")))
	require.Equal(t, domain.RefinancingPending, refinancing.Status)

	// Source document flipped to REFINANCED.
	source, err := svc.Settlement.GetReceivableByID(ctx, doc.ReceivableID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusRefinanced, source.Status)

	// The billed employee can spend again up to the full allocated limit.
	current, err := svc.Employee.GetEmployeeByID(ctx, employee.EmployeeID)
	require.NoError(t, err)
	require.True(t, current.AvailableBalance.Equal(current.AllocatedLimit))

	// At most one refinancing per receivable.
	_, err = svc.Refinancing.Refinance(ctx, doc.ReceivableID, testUserID)
	require.Error(t, err)

	// Settle the refinancing in full.
	settled, _, err := svc.Refinancing.ApplyPayment(ctx, refinancing.RefinancingID, dto.ApplyPaymentRequest{
		Amount: decimal.RequireFromString("250.00"),
		Method: domain.MethodTransfer,
	}, testUserID)
	require.NoError(t, err)
	require.Equal(t, domain.RefinancingPaid, settled.Status)
}

func TestWriteOffRefinancing(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	company := mustCreateCompany(t, svc, "1000.00")
	employee := mustCreateEmployee(t, svc, company.CompanyID, "500.00")
	provider := mustCreateProvider(t, svc, "0.05")

	mustDebit(t, svc, employee.EmployeeID, provider.ProviderID, "400.00")
	doc, err := svc.Billing.RunCutoff(ctx, company.CompanyID, time.Now().Add(time.Minute), testUserID)
	require.NoError(t, err)

	refinancing, err := svc.Refinancing.Refinance(ctx, doc.ReceivableID, testUserID)
	require.NoError(t, err)

	require.NoError(t, svc.Refinancing.WriteOff(ctx, refinancing.RefinancingID, testUserID))

	current, err := svc.Refinancing.GetRefinancingByID(ctx, refinancing.RefinancingID)
	require.NoError(t, err)
	require.Equal(t, domain.RefinancingWrittenOff, current.Status)

	// Written off is terminal.
	_, _, err = svc.Refinancing.ApplyPayment(ctx, refinancing.RefinancingID, dto.ApplyPaymentRequest{
		Amount: decimal.RequireFromString("1.00"),
		Method: domain.MethodCash,
	}, testUserID)
	require.ErrorIs(t, err, apperrors.ErrDocumentTerminal)
}

func TestCompanyExposureReport(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	company := mustCreateCompany(t, svc, "1000.00")
	employee := mustCreateEmployee(t, svc, company.CompanyID, "500.00")
	provider := mustCreateProvider(t, svc, "0.05")

	mustDebit(t, svc, employee.EmployeeID, provider.ProviderID, "100.00")
	mustDebit(t, svc, employee.EmployeeID, provider.ProviderID, "50.00")

	report, err := svc.Reporting.CompanyExposure(ctx, company.CompanyID)
	require.NoError(t, err)
	require.True(t, report.TotalAllocated.Equal(decimal.RequireFromString("500.00")))
	require.True(t, report.UnbilledConsumed.Equal(decimal.RequireFromString("150.00")))

	// After a cutoff the exposure moves from unbilled to open receivables.
	_, err = svc.Billing.RunCutoff(ctx, company.CompanyID, time.Now().Add(time.Minute), testUserID)
	require.NoError(t, err)

	report, err = svc.Reporting.CompanyExposure(ctx, company.CompanyID)
	require.NoError(t, err)
	require.True(t, report.UnbilledConsumed.IsZero())
	require.True(t, report.OpenReceivables.Equal(decimal.RequireFromString("150.00")))
}

func TestEmployeeConsumptionReportRejectsInvalidPeriod(t *testing.T) {
	svc := newTestServices(t)
	period := domain.Period{
		From: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := svc.Reporting.EmployeeConsumption(context.Background(), "any", period)
	require.ErrorIs(t, err, apperrors.ErrValidation)
}
