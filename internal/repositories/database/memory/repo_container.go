package memory

import (
	portsrepo "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every memory repository over one shared store.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	companyRepo := newCompanyRepository(store)
	employeeRepo := newEmployeeRepository(store)
	providerRepo := newProviderRepository(store)
	consumptionRepo := newConsumptionRepository(store)
	documentRepo := newDocumentRepository(store)
	refinancingRepo := newRefinancingRepository(store, documentRepo, employeeRepo)
	reportingRepo := newReportingRepository(store)

	return portsrepo.RepositoryProvider{
		CompanyRepo:     companyRepo,
		EmployeeRepo:    employeeRepo,
		ProviderRepo:    providerRepo,
		ConsumptionRepo: consumptionRepo,
		DocumentRepo:    documentRepo,
		RefinancingRepo: refinancingRepo,
		ReportingRepo:   reportingRepo,
	}
}
