package services

import (
	"context"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/dto"
)

// CompanyReaderSvc defines read operations for company master data
type CompanyReaderSvc interface {
	// GetCompanyByID retrieves a specific company by its ID.
	GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)

	// ListCompanies retrieves a paginated list of companies.
	ListCompanies(ctx context.Context, limit int, offset int) ([]domain.Company, error)
}

// CompanyWriterSvc defines write operations for company master data
type CompanyWriterSvc interface {
	// CreateCompany persists a new company.
	CreateCompany(ctx context.Context, req dto.CreateCompanyRequest, userID string) (*domain.Company, error)

	// UpdateCompany updates a company's descriptive fields.
	UpdateCompany(ctx context.Context, companyID string, req dto.UpdateCompanyRequest, userID string) (*domain.Company, error)

	// DeactivateCompany marks a company as inactive.
	DeactivateCompany(ctx context.Context, companyID string, userID string) error
}

// CompanySvcFacade combines all company-related service interfaces.
type CompanySvcFacade interface {
	CompanyReaderSvc
	CompanyWriterSvc
}
