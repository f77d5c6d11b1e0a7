package repositories

// RepositoryProvider bundles every repository facade the service layer needs.
// Both the pgsql and the in-memory implementations produce one of these, so
// the wiring in main never cares which backend is active.
type RepositoryProvider struct {
	CompanyRepo     CompanyRepositoryFacade
	EmployeeRepo    EmployeeRepositoryFacade
	ProviderRepo    ProviderRepositoryFacade
	ConsumptionRepo ConsumptionRepositoryFacade
	DocumentRepo    DocumentRepositoryFacade
	RefinancingRepo RefinancingRepositoryFacade
	ReportingRepo   ReportingRepository
}
