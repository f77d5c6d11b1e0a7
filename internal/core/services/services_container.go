package services

import (
	portsrepo "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/repositories"
	portssvc "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/services"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Company = NewCompanyService(repos.CompanyRepo, cfg.DefaultGracePeriodDays)
	container.Provider = NewProviderService(repos.ProviderRepo)
	container.Employee = NewEmployeeService(repos.EmployeeRepo, repos.CompanyRepo)
	container.Consumption = NewConsumptionService(repos.ConsumptionRepo, repos.EmployeeRepo, repos.CompanyRepo, repos.ProviderRepo)
	container.Billing = NewBillingService(repos.ConsumptionRepo, repos.DocumentRepo, repos.CompanyRepo, repos.ProviderRepo)
	container.Settlement = NewSettlementService(repos.DocumentRepo)
	container.Refinancing = NewRefinancingService(repos.RefinancingRepo, repos.DocumentRepo, cfg.RefinancingWindowDays)
	container.Reporting = NewReportingService(repos.ReportingRepo)

	return container
}
