package dto

import (
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEmployeeRequest defines the data needed to create a new employee.
type CreateEmployeeRequest struct {
	CompanyID      string          `json:"companyID" binding:"required"`
	Name           string          `json:"name" binding:"required"`
	DocumentNumber string          `json:"documentNumber"`
	AllocatedLimit decimal.Decimal `json:"allocatedLimit" binding:"dgte0"`
}

// UpdateEmployeeRequest defines the descriptive fields an employee edit may change.
// Limit changes go through the allocation endpoint, not here.
type UpdateEmployeeRequest struct {
	Name           *string `json:"name"`
	DocumentNumber *string `json:"documentNumber"`
	IsActive       *bool   `json:"isActive"`
}

// AssignLimitRequest carries a new allocated limit for an employee.
type AssignLimitRequest struct {
	NewLimit decimal.Decimal `json:"newLimit" binding:"dgte0"`
}

// EmployeeResponse defines the data returned for an employee.
type EmployeeResponse struct {
	EmployeeID       string          `json:"employeeID"`
	CompanyID        string          `json:"companyID"`
	Name             string          `json:"name"`
	DocumentNumber   string          `json:"documentNumber"`
	AllocatedLimit   decimal.Decimal `json:"allocatedLimit"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	IsActive         bool            `json:"isActive"`
	CreatedAt        time.Time       `json:"createdAt"`
	LastUpdatedAt    time.Time       `json:"lastUpdatedAt"`
}

// AvailableToAssignResponse reports the unassigned remainder of a company pool.
type AvailableToAssignResponse struct {
	CompanyID string          `json:"companyID"`
	Available decimal.Decimal `json:"available"`
	Unlimited bool            `json:"unlimited"`
}

// ToEmployeeResponse converts a domain.Employee to EmployeeResponse.
func ToEmployeeResponse(e *domain.Employee) EmployeeResponse {
	return EmployeeResponse{
		EmployeeID:       e.EmployeeID,
		CompanyID:        e.CompanyID,
		Name:             e.Name,
		DocumentNumber:   e.DocumentNumber,
		AllocatedLimit:   e.AllocatedLimit,
		AvailableBalance: e.AvailableBalance,
		IsActive:         e.IsActive,
		CreatedAt:        e.CreatedAt,
		LastUpdatedAt:    e.LastUpdatedAt,
	}
}

// ToEmployeeResponses converts a slice of employees.
func ToEmployeeResponses(employees []domain.Employee) []EmployeeResponse {
	out := make([]EmployeeResponse, len(employees))
	for i := range employees {
		out[i] = ToEmployeeResponse(&employees[i])
	}
	return out
}
