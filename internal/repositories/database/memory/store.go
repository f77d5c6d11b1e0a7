package memory

import (
	"sync"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
)

// Store is the shared in-memory backend behind every memory repository. One
// mutex guards all tables: the multi-aggregate writes (cutoff linking,
// refinancing) need a single critical section anyway, and with one writer at
// a time the balance guards behave exactly like the SQL conditional updates.
//
// It backs the test suites and the development fallback when no PGSQL_URL is
// configured. Nothing survives a restart.
type Store struct {
	mu sync.RWMutex

	companies    map[string]domain.Company
	employees    map[string]domain.Employee
	providers    map[string]domain.Provider
	consumptions map[string]domain.Consumption
	receivables  map[string]domain.ReceivableDocument
	payables     map[string]domain.PayableDocument
	refinancings map[string]domain.Refinancing
	payments     map[string]domain.Payment

	// nextSequence is the monotonic creation sequence assigned to
	// consumptions, the billing tie-break after the timestamp.
	nextSequence int64
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		companies:    make(map[string]domain.Company),
		employees:    make(map[string]domain.Employee),
		providers:    make(map[string]domain.Provider),
		consumptions: make(map[string]domain.Consumption),
		receivables:  make(map[string]domain.ReceivableDocument),
		payables:     make(map[string]domain.PayableDocument),
		refinancings: make(map[string]domain.Refinancing),
		payments:     make(map[string]domain.Payment),
		nextSequence: 1,
	}
}
