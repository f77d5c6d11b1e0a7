package dto

import (
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DebitRequest defines the data needed to record a consumption.
type DebitRequest struct {
	EmployeeID string          `json:"employeeID" binding:"required"`
	ProviderID string          `json:"providerID" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"dgt0"`
	ConsumedAt *time.Time      `json:"consumedAt"` // Defaults to now when omitted
	Note       string          `json:"note"`
}

// ListConsumptionsParams holds pagination for consumption listings.
type ListConsumptionsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ConsumptionResponse defines the data returned for a consumption.
type ConsumptionResponse struct {
	ConsumptionID string          `json:"consumptionID"`
	EmployeeID    string          `json:"employeeID"`
	CompanyID     string          `json:"companyID"`
	ProviderID    string          `json:"providerID"`
	Amount        decimal.Decimal `json:"amount"`
	ConsumedAt    time.Time       `json:"consumedAt"`
	Note          string          `json:"note"`
	Reversed      bool            `json:"reversed"`
	ReceivableID  *string         `json:"receivableID"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ListConsumptionsResponse is a page of consumptions plus the resume token.
type ListConsumptionsResponse struct {
	Consumptions []ConsumptionResponse `json:"consumptions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToConsumptionResponse converts a domain.Consumption to ConsumptionResponse.
func ToConsumptionResponse(c *domain.Consumption) ConsumptionResponse {
	return ConsumptionResponse{
		ConsumptionID: c.ConsumptionID,
		EmployeeID:    c.EmployeeID,
		CompanyID:     c.CompanyID,
		ProviderID:    c.ProviderID,
		Amount:        c.Amount,
		ConsumedAt:    c.ConsumedAt,
		Note:          c.Note,
		Reversed:      c.Reversed,
		ReceivableID:  c.ReceivableID,
		CreatedAt:     c.CreatedAt,
	}
}

// ToConsumptionResponses converts a slice of consumptions.
func ToConsumptionResponses(consumptions []domain.Consumption) []ConsumptionResponse {
	out := make([]ConsumptionResponse, len(consumptions))
	for i := range consumptions {
		out[i] = ToConsumptionResponse(&consumptions[i])
	}
	return out
}
