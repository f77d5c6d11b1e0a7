package domain

import (
	"fmt"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
)

// Period is a closed date range [From, To]. Billing documents aggregate the
// consumptions of exactly one period, and periods of the same company never
// overlap.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Validate reports whether the period is well formed (To not before From).
func (p Period) Validate() error {
	if p.To.Before(p.From) {
		return fmt.Errorf("%w: period ends before it starts (%s > %s)", apperrors.ErrValidation, p.From.Format(time.RFC3339), p.To.Format(time.RFC3339))
	}
	return nil
}

// Contains returns true if t falls within [From, To] inclusive.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From) && !t.After(p.To)
}

// Overlaps returns true if the two periods share at least one instant.
func (p Period) Overlaps(o Period) bool {
	return !p.To.Before(o.From) && !o.To.Before(p.From)
}

func (p Period) String() string {
	return "[" + p.From.Format("2006-01-02") + ", " + p.To.Format("2006-01-02") + "]"
}
