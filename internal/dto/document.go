package dto

import (
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RunCutoffRequest triggers a billing cutoff for a company or provider.
type RunCutoffRequest struct {
	AsOf time.Time `json:"asOf" binding:"required"`
}

// ApplyPaymentRequest defines the payment-intake data from the console form.
type ApplyPaymentRequest struct {
	Amount    decimal.Decimal      `json:"amount" binding:"dgt0"`
	Method    domain.PaymentMethod `json:"method" binding:"required,oneof=CASH TRANSFER CHECK CARD"`
	Reference string               `json:"reference"`
}

// ListDocumentsParams filters document list views.
type ListDocumentsParams struct {
	Status     string `form:"status" binding:"omitempty,oneof=PENDING PARTIAL PAID REFINANCED VOIDED"`
	CompanyID  string `form:"companyID"`
	ProviderID string `form:"providerID"`
	IssuedFrom string `form:"issuedFrom" binding:"omitempty,datetime=2006-01-02"`
	IssuedTo   string `form:"issuedTo" binding:"omitempty,datetime=2006-01-02"`
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
}

// ReceivableResponse defines the data returned for a receivable document (CxC).
type ReceivableResponse struct {
	ReceivableID string                `json:"receivableID"`
	CompanyID    string                `json:"companyID"`
	PeriodFrom   time.Time             `json:"periodFrom"`
	PeriodTo     time.Time             `json:"periodTo"`
	Total        decimal.Decimal       `json:"total"`
	Paid         decimal.Decimal       `json:"paid"`
	Pending      decimal.Decimal       `json:"pending"`
	Status       domain.DocumentStatus `json:"status"`
	IssuedAt     time.Time             `json:"issuedAt"`
	DueAt        time.Time             `json:"dueAt"`
}

// PayableResponse defines the data returned for a payable document (CxP).
type PayableResponse struct {
	PayableID      string                `json:"payableID"`
	ProviderID     string                `json:"providerID"`
	PeriodFrom     time.Time             `json:"periodFrom"`
	PeriodTo       time.Time             `json:"periodTo"`
	Gross          decimal.Decimal       `json:"gross"`
	CommissionRate decimal.Decimal       `json:"commissionRate"`
	Commission     decimal.Decimal       `json:"commission"`
	Total          decimal.Decimal       `json:"total"`
	Paid           decimal.Decimal       `json:"paid"`
	Pending        decimal.Decimal       `json:"pending"`
	Status         domain.DocumentStatus `json:"status"`
	IssuedAt       time.Time             `json:"issuedAt"`
}

// PaymentResponse defines the data returned for a payment.
type PaymentResponse struct {
	PaymentID    string               `json:"paymentID"`
	DocumentID   string               `json:"documentID"`
	DocumentKind domain.DocumentKind  `json:"documentKind"`
	Amount       decimal.Decimal      `json:"amount"`
	Method       domain.PaymentMethod `json:"method"`
	Reference    string               `json:"reference"`
	RecordedBy   string               `json:"recordedBy"`
	PaidAt       time.Time            `json:"paidAt"`
}

// ToReceivableResponse converts a domain.ReceivableDocument.
func ToReceivableResponse(d *domain.ReceivableDocument) ReceivableResponse {
	return ReceivableResponse{
		ReceivableID: d.ReceivableID,
		CompanyID:    d.CompanyID,
		PeriodFrom:   d.Period.From,
		PeriodTo:     d.Period.To,
		Total:        d.Total,
		Paid:         d.Paid,
		Pending:      d.Pending(),
		Status:       d.Status,
		IssuedAt:     d.IssuedAt,
		DueAt:        d.DueAt,
	}
}

// ToReceivableResponses converts a slice of receivable documents.
func ToReceivableResponses(docs []domain.ReceivableDocument) []ReceivableResponse {
	out := make([]ReceivableResponse, len(docs))
	for i := range docs {
		out[i] = ToReceivableResponse(&docs[i])
	}
	return out
}

// ToPayableResponse converts a domain.PayableDocument.
func ToPayableResponse(d *domain.PayableDocument) PayableResponse {
	return PayableResponse{
		PayableID:      d.PayableID,
		ProviderID:     d.ProviderID,
		PeriodFrom:     d.Period.From,
		PeriodTo:       d.Period.To,
		Gross:          d.Gross,
		CommissionRate: d.CommissionRate,
		Commission:     d.Commission,
		Total:          d.Total,
		Paid:           d.Paid,
		Pending:        d.Pending(),
		Status:         d.Status,
		IssuedAt:       d.IssuedAt,
	}
}

// ToPayableResponses converts a slice of payable documents.
func ToPayableResponses(docs []domain.PayableDocument) []PayableResponse {
	out := make([]PayableResponse, len(docs))
	for i := range docs {
		out[i] = ToPayableResponse(&docs[i])
	}
	return out
}

// ToPaymentResponse converts a domain.Payment.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:    p.PaymentID,
		DocumentID:   p.DocumentID,
		DocumentKind: p.DocumentKind,
		Amount:       p.Amount,
		Method:       p.Method,
		Reference:    p.Reference,
		RecordedBy:   p.RecordedBy,
		PaidAt:       p.PaidAt,
	}
}

// ToPaymentResponses converts a slice of payments.
func ToPaymentResponses(payments []domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}
