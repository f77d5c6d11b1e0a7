package pgsql

import (
	portsrepo "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every pgsql repository over one shared pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	companyRepo := newPgxCompanyRepository(dbPool)
	employeeRepo := newPgxEmployeeRepository(dbPool)
	providerRepo := newPgxProviderRepository(dbPool)
	consumptionRepo := newPgxConsumptionRepository(dbPool)
	documentRepo := newPgxDocumentRepository(dbPool)
	refinancingRepo := newPgxRefinancingRepository(dbPool, documentRepo, employeeRepo)
	reportingRepo := newPgxReportingRepository(dbPool)

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
