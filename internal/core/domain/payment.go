package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is the intake channel of a payment, as selected on the
// console's payment form.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "CASH"
	MethodTransfer PaymentMethod = "TRANSFER"
	MethodCheck    PaymentMethod = "CHECK"
	MethodCard     PaymentMethod = "CARD"
)

// DocumentKind distinguishes which ledger a payment settles against.
type DocumentKind string

const (
	KindReceivable  DocumentKind = "RECEIVABLE"
	KindPayable     DocumentKind = "PAYABLE"
	KindRefinancing DocumentKind = "REFINANCING"
)

// Payment is an immutable record of money applied to exactly one document.
// The sum of a document's payments always equals its paid amount.
type Payment struct {
	PaymentID    string          `json:"paymentID"`  // Primary Key (UUID)
	DocumentID   string          `json:"documentID"` // FK to the receivable, payable or refinancing
	DocumentKind DocumentKind    `json:"documentKind"`
	Amount       decimal.Decimal `json:"amount"` // > 0 and <= pending balance at application time
	Method       PaymentMethod   `json:"method"`
	Reference    string          `json:"reference"` // Free text: check number, transfer id, ...
	RecordedBy   string          `json:"recordedBy"`
	PaidAt       time.Time       `json:"paidAt"`
	AuditFields
}
