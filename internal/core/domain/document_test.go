package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReceivable(total string) domain.ReceivableDocument {
	return domain.ReceivableDocument{
		ReceivableID: "rec-1",
		CompanyID:    "comp-1",
		Total:        decimal.RequireFromString(total),
		Paid:         decimal.Zero,
		Status:       domain.StatusPending,
	}
}

func TestReceivableApplyPayment_PartialThenPaid(t *testing.T) {
	doc := newReceivable("100.00")

	require.NoError(t, doc.ApplyPayment(decimal.RequireFromString("40.00")))
	assert.Equal(t, domain.StatusPartial, doc.Status)
	assert.True(t, doc.Pending().Equal(decimal.RequireFromString("60.00")))

	require.NoError(t, doc.ApplyPayment(decimal.RequireFromString("60.00")))
	assert.Equal(t, domain.StatusPaid, doc.Status)
	assert.True(t, doc.Pending().IsZero())
}

func TestReceivableApplyPayment_ExceedsPending(t *testing.T) {
	doc := newReceivable("100.00")
	require.NoError(t, doc.ApplyPayment(decimal.RequireFromString("90.00")))

	err := doc.ApplyPayment(decimal.RequireFromString("10.01"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrExceedsPending))

	var exceedsErr *apperrors.ExceedsPendingError
	require.True(t, errors.As(err, &exceedsErr))
	assert.True(t, exceedsErr.Pending.Equal(decimal.RequireFromString("10.00")))

	// The failed payment must not mutate the document.
	assert.Equal(t, domain.StatusPartial, doc.Status)
	assert.True(t, doc.Paid.Equal(decimal.RequireFromString("90.00")))
}

func TestApplyPayment_RejectsNonPositiveAmounts(t *testing.T) {
	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.RequireFromString("-50.00")} {
		doc := newReceivable("100.00")
		err := doc.ApplyPayment(amount)
		require.Error(t, err, "amount %s", amount)
		assert.True(t, errors.Is(err, apperrors.ErrValidation), "amount %s", amount)
		// The rejected payment must not mutate the document.
		assert.True(t, doc.Paid.IsZero())
		assert.Equal(t, domain.StatusPending, doc.Status)

		payable := domain.PayableDocument{
			PayableID: "pay-1",
			Total:     decimal.RequireFromString("100.00"),
			Paid:      decimal.Zero,
			Status:    domain.StatusPending,
		}
		err = payable.ApplyPayment(amount)
		assert.True(t, errors.Is(err, apperrors.ErrValidation), "amount %s", amount)
		assert.True(t, payable.Paid.IsZero())

		refinancing := domain.Refinancing{
			RefinancingID:  "ref-1",
			OriginalAmount: decimal.RequireFromString("100.00"),
			Paid:           decimal.Zero,
			Status:         domain.RefinancingPending,
		}
		err = refinancing.ApplyPayment(amount)
		assert.True(t, errors.Is(err, apperrors.ErrValidation), "amount %s", amount)
		assert.True(t, refinancing.Paid.IsZero())
	}
}

func TestReceivableApplyPayment_TerminalStatuses(t *testing.T) {
	for _, status := range []domain.DocumentStatus{domain.StatusPaid, domain.StatusRefinanced, domain.StatusVoided} {
		doc := newReceivable("50.00")
		doc.Status = status

		err := doc.ApplyPayment(decimal.NewFromInt(1))
		require.Error(t, err, "status %s", status)
		assert.True(t, errors.Is(err, apperrors.ErrDocumentTerminal), "status %s", status)
	}
}

func TestPayableApplyPayment_FullSettlement(t *testing.T) {
	doc := domain.PayableDocument{
		PayableID:      "pay-1",
		ProviderID:     "prov-1",
		Gross:          decimal.RequireFromString("200.00"),
		CommissionRate: decimal.RequireFromString("0.05"),
		Commission:     decimal.RequireFromString("10.00"),
		Total:          decimal.RequireFromString("190.00"),
		Paid:           decimal.Zero,
		Status:         domain.StatusPending,
	}

	require.NoError(t, doc.ApplyPayment(decimal.RequireFromString("190.00")))
	assert.Equal(t, domain.StatusPaid, doc.Status)
}

func TestComputeCommission(t *testing.T) {
	tests := []struct {
		name  string
		gross string
		rate  string
		want  string
	}{
		{"exact", "200.00", "0.05", "10"},
		{"rounds half up", "100.10", "0.125", "12.51"},
		{"rounds down", "100.01", "0.1", "10"},
		{"zero rate", "500.00", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ComputeCommission(decimal.RequireFromString(tt.gross), decimal.RequireFromString(tt.rate))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestRefinancingEffectiveStatus(t *testing.T) {
	due := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	base := domain.Refinancing{
		RefinancingID:  "ref-1",
		OriginalAmount: decimal.RequireFromString("300.00"),
		Paid:           decimal.Zero,
		Status:         domain.RefinancingPending,
		DueAt:          due,
	}

	// Before the due date the stored status stands.
	assert.Equal(t, domain.RefinancingPending, base.EffectiveStatus(due.AddDate(0, 0, -1)))
	// On the due date itself it is not yet overdue.
	assert.Equal(t, domain.RefinancingPending, base.EffectiveStatus(due))
	// Past due with a pending balance derives OVERDUE.
	assert.Equal(t, domain.RefinancingOverdue, base.EffectiveStatus(due.AddDate(0, 0, 1)))

	// A settled refinancing never reads as overdue.
	paid := base
	require.NoError(t, paid.ApplyPayment(decimal.RequireFromString("300.00")))
	assert.Equal(t, domain.RefinancingPaid, paid.EffectiveStatus(due.AddDate(0, 1, 0)))
}

func TestRefinancingApplyPayment_WrittenOffIsTerminal(t *testing.T) {
	ref := domain.Refinancing{
		RefinancingID:  "ref-1",
		OriginalAmount: decimal.RequireFromString("300.00"),
		Status:         domain.RefinancingWrittenOff,
	}
	err := ref.ApplyPayment(decimal.NewFromInt(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDocumentTerminal))
}

func TestPeriod(t *testing.T) {
	jan := domain.Period{
		From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC),
	}
	feb := domain.Period{
		From: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC),
	}

	require.NoError(t, jan.Validate())
	assert.Error(t, domain.Period{From: feb.From, To: jan.From}.Validate())

	assert.True(t, jan.Contains(time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)))
	assert.True(t, jan.Contains(jan.From), "inclusive lower bound")
	assert.True(t, jan.Contains(jan.To), "inclusive upper bound")
	assert.False(t, jan.Contains(feb.From))

	assert.False(t, jan.Overlaps(feb))
	assert.True(t, jan.Overlaps(domain.Period{From: jan.To, To: feb.To}), "shared instant overlaps")
}
