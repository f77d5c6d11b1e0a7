package services

import (
	"context"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
)

// BillingSvcFacade is the cutoff engine. Scheduling is the caller's problem;
// these operations only define what one cutoff run does.
type BillingSvcFacade interface {
	// RunCutoff aggregates the company's unbilled consumptions since the
	// previous cutoff (or company creation) up to asOf into a new receivable
	// document. Returns (nil, nil) when there is nothing to bill: an empty
	// period is a no-op, not an error, and running the same cutoff twice
	// yields exactly one document.
	RunCutoff(ctx context.Context, companyID string, asOf time.Time, userID string) (*domain.ReceivableDocument, error)

	// RunProviderCutoff is the provider-side aggregation producing a payable
	// document net of commission. Same no-op contract for an empty period.
	RunProviderCutoff(ctx context.Context, providerID string, asOf time.Time, userID string) (*domain.PayableDocument, error)
}
