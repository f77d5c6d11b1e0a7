package apperrors

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CreditExceededError reports an allocation that would overrun the company pool.
type CreditExceededError struct {
	CompanyID  string
	EmployeeID string
	Requested  decimal.Decimal
	Available  decimal.Decimal
}

func (e *CreditExceededError) Error() string {
	return fmt.Sprintf("allocation of %s for employee %s exceeds the available pool of company %s (%s available)",
		e.Requested, e.EmployeeID, e.CompanyID, e.Available)
}

func (e *CreditExceededError) Unwrap() error { return ErrCreditExceeded }

// InsufficientCreditError reports a debit larger than the employee's available balance.
type InsufficientCreditError struct {
	EmployeeID string
	Requested  decimal.Decimal
	Available  decimal.Decimal
}

func (e *InsufficientCreditError) Error() string {
	return fmt.Sprintf("debit of %s against employee %s exceeds available balance %s",
		e.Requested, e.EmployeeID, e.Available)
}

func (e *InsufficientCreditError) Unwrap() error { return ErrInsufficientCredit }

// ExceedsPendingError reports a payment larger than a document's pending balance.
type ExceedsPendingError struct {
	DocumentID string
	Requested  decimal.Decimal
	Pending    decimal.Decimal
}

func (e *ExceedsPendingError) Error() string {
	return fmt.Sprintf("payment of %s exceeds pending balance %s of document %s",
		e.Requested, e.Pending, e.DocumentID)
}

func (e *ExceedsPendingError) Unwrap() error { return ErrExceedsPending }

// DocumentTerminalError reports a mutation attempted on a settled document.
type DocumentTerminalError struct {
	DocumentID string
	Status     string
}

func (e *DocumentTerminalError) Error() string {
	return fmt.Sprintf("document %s is %s and cannot be mutated", e.DocumentID, e.Status)
}

func (e *DocumentTerminalError) Unwrap() error { return ErrDocumentTerminal }
