package domain

import (
	"fmt"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// DocumentStatus tracks a billing document through its settlement lifecycle.
type DocumentStatus string

const (
	StatusPending    DocumentStatus = "PENDING"
	StatusPartial    DocumentStatus = "PARTIAL"
	StatusPaid       DocumentStatus = "PAID"
	StatusRefinanced DocumentStatus = "REFINANCED" // Receivable only
	StatusVoided     DocumentStatus = "VOIDED"
)

// Terminal reports whether the status admits no further payment or transition.
func (s DocumentStatus) Terminal() bool {
	return s == StatusPaid || s == StatusRefinanced || s == StatusVoided
}

// ReceivableDocument (CxC) aggregates one contiguous period of a company's
// unbilled consumptions into an amount the company owes.
type ReceivableDocument struct {
	ReceivableID string          `json:"receivableID"` // Primary Key (UUID)
	CompanyID    string          `json:"companyID"`    // FK -> companies.company_id
	Period       Period          `json:"period"`       // [periodFrom, periodTo], disjoint per company
	Total        decimal.Decimal `json:"total"`        // Sum of included consumption amounts
	Paid         decimal.Decimal `json:"paid"`
	Status       DocumentStatus  `json:"status"`
	IssuedAt     time.Time       `json:"issuedAt"`
	DueAt        time.Time       `json:"dueAt"`
	AuditFields
}

// Pending is the remaining balance, Total - Paid.
func (d ReceivableDocument) Pending() decimal.Decimal {
	return d.Total.Sub(d.Paid)
}

// ApplyPayment records a payment amount against the document and moves it to
// PARTIAL or PAID. Rejected without mutation when the amount is not positive,
// the document is terminal, or the amount overshoots the pending balance.
func (d *ReceivableDocument) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}
	if d.Status.Terminal() {
		return &apperrors.DocumentTerminalError{DocumentID: d.ReceivableID, Status: string(d.Status)}
	}
	if amount.GreaterThan(d.Pending()) {
		return &apperrors.ExceedsPendingError{DocumentID: d.ReceivableID, Requested: amount, Pending: d.Pending()}
	}
	d.Paid = d.Paid.Add(amount)
	if d.Pending().IsZero() {
		d.Status = StatusPaid
	} else {
		d.Status = StatusPartial
	}
	return nil
}

// PayableDocument (CxP) aggregates a provider's consumptions over a period.
// Total is the net owed to the provider: Gross minus the commission computed
// once at cutoff time and never re-derived.
type PayableDocument struct {
	PayableID      string          `json:"payableID"`  // Primary Key (UUID)
	ProviderID     string          `json:"providerID"` // FK -> providers.provider_id
	Period         Period          `json:"period"`
	Gross          decimal.Decimal `json:"gross"`
	CommissionRate decimal.Decimal `json:"commissionRate"` // Rate frozen at cutoff time
	Commission     decimal.Decimal `json:"commission"`
	Total          decimal.Decimal `json:"total"` // Gross - Commission
	Paid           decimal.Decimal `json:"paid"`
	Status         DocumentStatus  `json:"status"`
	IssuedAt       time.Time       `json:"issuedAt"`
	AuditFields
}

// Pending is the remaining balance, Total - Paid.
func (d PayableDocument) Pending() decimal.Decimal {
	return d.Total.Sub(d.Paid)
}

// ApplyPayment records a payment amount against the document, with the same
// contract as the receivable side.
func (d *PayableDocument) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}
	if d.Status.Terminal() {
		return &apperrors.DocumentTerminalError{DocumentID: d.PayableID, Status: string(d.Status)}
	}
	if amount.GreaterThan(d.Pending()) {
		return &apperrors.ExceedsPendingError{DocumentID: d.PayableID, Requested: amount, Pending: d.Pending()}
	}
	d.Paid = d.Paid.Add(amount)
	if d.Pending().IsZero() {
		d.Status = StatusPaid
	} else {
		d.Status = StatusPartial
	}
	return nil
}

// ComputeCommission returns gross * rate rounded half-up to the currency's
// minor unit. Computed once at cutoff so Gross - Commission and Total can
// never drift apart.
func ComputeCommission(gross, rate decimal.Decimal) decimal.Decimal {
	// decimal.Round rounds half away from zero, which is half-up for the
	// positive amounts handled here.
	return gross.Mul(rate).Round(2)
}
