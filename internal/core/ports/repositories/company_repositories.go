package repositories

import (
	"context"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
)

// CompanyReader defines read operations for company master data
type CompanyReader interface {
	// FindCompanyByID retrieves a specific company by its unique identifier.
	FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)

	// ListCompanies retrieves a paginated list of companies.
	ListCompanies(ctx context.Context, limit int, offset int) ([]domain.Company, error)
}

// CompanyWriter defines write operations for company master data
type CompanyWriter interface {
	// SaveCompany persists a new company.
	SaveCompany(ctx context.Context, company domain.Company) error

	// UpdateCompany updates an existing company's details.
	UpdateCompany(ctx context.Context, company domain.Company) error

	// DeactivateCompany marks a company as inactive.
	DeactivateCompany(ctx context.Context, companyID string, userID string, now time.Time) error
}

// CompanyRepositoryFacade combines all company-related repository interfaces.
type CompanyRepositoryFacade interface {
	CompanyReader
	CompanyWriter
}
