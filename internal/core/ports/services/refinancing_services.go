package services

import (
	"context"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/dto"
)

// RefinancingSvcFacade converts broken receivables into refinancings and
// services their payment trail.
type RefinancingSvcFacade interface {
	// Refinance captures the source document's pending balance into a new
	// refinancing, transitions the source to REFINANCED, and restores full
	// availability for every employee billed into it. Fails with
	// ErrInvalidState when the source is already Paid, Refinanced or Voided.
	Refinance(ctx context.Context, receivableID string, userID string) (*domain.Refinancing, error)

	// ApplyPayment applies a payment to the refinancing's own balance, with
	// the same contract as document payments.
	ApplyPayment(ctx context.Context, refinancingID string, req dto.ApplyPaymentRequest, userID string) (*domain.Refinancing, *domain.Payment, error)

	// WriteOff administratively closes a non-terminal refinancing.
	WriteOff(ctx context.Context, refinancingID string, userID string) error

	// GetRefinancingByID retrieves a refinancing.
	GetRefinancingByID(ctx context.Context, refinancingID string) (*domain.Refinancing, error)

	// ListRefinancingsByCompany retrieves a company's refinancings.
	ListRefinancingsByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.Refinancing, error)
}
