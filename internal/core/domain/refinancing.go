package domain

import (
	"fmt"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// RefinancingStatus tracks a restructured obligation. OVERDUE is never stored:
// it is derived at read time from the due date, so no background process has
// to expire records.
type RefinancingStatus string

const (
	RefinancingPending    RefinancingStatus = "PENDING"
	RefinancingPartial    RefinancingStatus = "PARTIALLY_PAID"
	RefinancingPaid       RefinancingStatus = "PAID"
	RefinancingOverdue    RefinancingStatus = "OVERDUE" // Derived, see EffectiveStatus
	RefinancingWrittenOff RefinancingStatus = "WRITTEN_OFF"
)

// Terminal reports whether the status admits no further payments.
func (s RefinancingStatus) Terminal() bool {
	return s == RefinancingPaid || s == RefinancingWrittenOff
}

// Refinancing replaces an overdue or at-risk receivable document with a new
// obligation on an extended due date. Creating one transitions the source
// document to REFINANCED and restores the spending availability of every
// employee billed into it; the debt moves, it does not vanish.
type Refinancing struct {
	RefinancingID  string            `json:"refinancingID"` // Primary Key (UUID)
	ReceivableID   string            `json:"receivableID"`  // Source document; at most one refinancing per document
	CompanyID      string            `json:"companyID"`
	OriginalAmount decimal.Decimal   `json:"originalAmount"` // Pending balance of the source at refinancing time
	Paid           decimal.Decimal   `json:"paid"`
	Status         RefinancingStatus `json:"status"`
	DueAt          time.Time         `json:"dueAt"`
	AuditFields
}

// Pending is the remaining balance, OriginalAmount - Paid.
func (r Refinancing) Pending() decimal.Decimal {
	return r.OriginalAmount.Sub(r.Paid)
}

// EffectiveStatus returns the stored status, or OVERDUE when the due date has
// passed with a balance still pending.
func (r Refinancing) EffectiveStatus(now time.Time) RefinancingStatus {
	if !r.Status.Terminal() && now.After(r.DueAt) && r.Pending().IsPositive() {
		return RefinancingOverdue
	}
	return r.Status
}

// ApplyPayment records a payment amount, with the same contract as the
// document state machine.
func (r *Refinancing) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}
	if r.Status.Terminal() {
		return &apperrors.DocumentTerminalError{DocumentID: r.RefinancingID, Status: string(r.Status)}
	}
	if amount.GreaterThan(r.Pending()) {
		return &apperrors.ExceedsPendingError{DocumentID: r.RefinancingID, Requested: amount, Pending: r.Pending()}
	}
	r.Paid = r.Paid.Add(amount)
	if r.Pending().IsZero() {
		r.Status = RefinancingPaid
	} else {
		r.Status = RefinancingPartial
	}
	return nil
}
