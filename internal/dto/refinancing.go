package dto

import (
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RefinancingResponse defines the data returned for a refinancing. Status is
// the effective status: OVERDUE when the due date has passed with a pending
// balance, otherwise the stored state.
type RefinancingResponse struct {
	RefinancingID  string                   `json:"refinancingID"`
	ReceivableID   string                   `json:"receivableID"`
	CompanyID      string                   `json:"companyID"`
	OriginalAmount decimal.Decimal          `json:"originalAmount"`
	Paid           decimal.Decimal          `json:"paid"`
	Pending        decimal.Decimal          `json:"pending"`
	Status         domain.RefinancingStatus `json:"status"`
	DueAt          time.Time                `json:"dueAt"`
	CreatedAt      time.Time                `json:"createdAt"`
}

// ToRefinancingResponse converts a domain.Refinancing, deriving the effective
// status at now.
func ToRefinancingResponse(r *domain.Refinancing, now time.Time) RefinancingResponse {
	return RefinancingResponse{
		RefinancingID:  r.RefinancingID,
		ReceivableID:   r.ReceivableID,
		CompanyID:      r.CompanyID,
		OriginalAmount: r.OriginalAmount,
		Paid:           r.Paid,
		Pending:        r.Pending(),
		Status:         r.EffectiveStatus(now),
		DueAt:          r.DueAt,
		CreatedAt:      r.CreatedAt,
	}
}

// ToRefinancingResponses converts a slice of refinancings.
func ToRefinancingResponses(refinancings []domain.Refinancing, now time.Time) []RefinancingResponse {
	out := make([]RefinancingResponse, len(refinancings))
	for i := range refinancings {
		out[i] = ToRefinancingResponse(&refinancings[i], now)
	}
	return out
}
