package services

import (
	"context"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/dto"
)

// ConsumptionSvcFacade is the consumption ledger: debits against an
// employee's allocated limit and their reversal.
type ConsumptionSvcFacade interface {
	// Debit records a consumption against the employee's available balance.
	// Fails with ErrInsufficientCredit when the amount exceeds availability,
	// unless the employee's company has an unlimited pool.
	Debit(ctx context.Context, req dto.DebitRequest, userID string) (*domain.Consumption, error)

	// Reverse flips a consumption to reversed and restores its amount to the
	// employee's available balance. Fails with ErrAlreadyReversed or, once the
	// consumption has been billed into a document, with ErrAlreadyBilled.
	Reverse(ctx context.Context, consumptionID string, userID string) (*domain.Consumption, error)

	// GetConsumptionByID retrieves a specific consumption.
	GetConsumptionByID(ctx context.Context, consumptionID string) (*domain.Consumption, error)

	// ListConsumptionsByEmployee retrieves an employee's consumptions,
	// keyset-paginated.
	ListConsumptionsByEmployee(ctx context.Context, employeeID string, params dto.ListConsumptionsParams) (*dto.ListConsumptionsResponse, error)

	// ListUnbilled pages through the company's unbilled, non-reversed
	// consumptions up to a date in deterministic billing order.
	ListUnbilled(ctx context.Context, companyID string, upTo time.Time, params dto.ListConsumptionsParams) (*dto.ListConsumptionsResponse, error)

	// ListUnbilledByEmployee narrows the unbilled feed to a single employee.
	ListUnbilledByEmployee(ctx context.Context, employeeID string, upTo time.Time, params dto.ListConsumptionsParams) (*dto.ListConsumptionsResponse, error)
}
