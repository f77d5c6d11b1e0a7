package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("state conflict")

// ErrForbidden indicates that the caller is not allowed to perform the operation.
var ErrForbidden = errors.New("operation not allowed")

// ErrInternal indicates an unexpected infrastructure failure.
var ErrInternal = errors.New("internal error")

// Ledger validation failures. Every one of these is a rejected operation that
// leaves no partial state behind; callers match with errors.Is.
var (
	// ErrCreditExceeded is returned when an allocation would exceed the company's credit pool.
	ErrCreditExceeded = errors.New("allocation exceeds company credit pool")

	// ErrInsufficientCredit is returned when a debit exceeds the employee's available balance.
	ErrInsufficientCredit = errors.New("insufficient available credit")

	// ErrAlreadyReversed is returned when reversing a consumption that is already reversed.
	ErrAlreadyReversed = errors.New("consumption already reversed")

	// ErrAlreadyBilled is returned when reversing a consumption that has been billed
	// into a document. Reversal after billing requires a credit memo on the document.
	ErrAlreadyBilled = errors.New("consumption already billed")

	// ErrExceedsPending is returned when a payment is larger than the document's pending balance.
	ErrExceedsPending = errors.New("payment exceeds pending balance")

	// ErrDocumentTerminal is returned when mutating a document in a terminal state.
	ErrDocumentTerminal = errors.New("document is in a terminal state")

	// ErrInvalidState is returned when refinancing a document that is not eligible.
	ErrInvalidState = errors.New("document not eligible for refinancing")
)
