package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	portssvc "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/services"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/services"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockCompanyRepository is a mock type for the CompanyRepositoryFacade interface
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyRepository) ListCompanies(ctx context.Context, limit int, offset int) ([]domain.Company, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Company), args.Error(1)
}

func (m *MockCompanyRepository) SaveCompany(ctx context.Context, company domain.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) UpdateCompany(ctx context.Context, company domain.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) DeactivateCompany(ctx context.Context, companyID string, userID string, now time.Time) error {
	args := m.Called(ctx, companyID, userID, now)
	return args.Error(0)
}

// --- Test Suite Setup ---

const testDefaultGraceDays = 15

type CompanyServiceTestSuite struct {
	suite.Suite
	mockRepo *MockCompanyRepository
	service  portssvc.CompanySvcFacade
}

func (suite *CompanyServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockCompanyRepository)
	suite.service = services.NewCompanyService(suite.mockRepo, testDefaultGraceDays)
}

// --- Test Cases ---

func (suite *CompanyServiceTestSuite) TestCreateCompany_Success() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	req := dto.CreateCompanyRequest{
		Name:        "Acme Corp",
		TaxID:       "131-00001-9",
		CreditLimit: decimal.RequireFromString("50000.00"),
		CutoffDay:   15,
	}

	suite.mockRepo.On("SaveCompany", ctx, mock.AnythingOfType("domain.Company")).Return(nil).Once()

	created, err := suite.service.CreateCompany(ctx, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.NotEmpty(created.CompanyID)
	suite.Equal(req.Name, created.Name)
	suite.True(created.IsActive)
	suite.False(created.Unlimited())
	// No grace period on the request falls back to the configured default.
	suite.Equal(testDefaultGraceDays, created.GracePeriodDays)
	suite.Equal(creatorUserID, created.CreatedBy)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CompanyServiceTestSuite) TestCreateCompany_ZeroLimitIsUnlimited() {
	ctx := context.Background()
	req := dto.CreateCompanyRequest{
		Name:      "Gov Agency",
		TaxID:     "401-00002-3",
		CutoffDay: 28,
	}

	suite.mockRepo.On("SaveCompany", ctx, mock.AnythingOfType("domain.Company")).Return(nil).Once()

	created, err := suite.service.CreateCompany(ctx, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.True(created.Unlimited())
}

func (suite *CompanyServiceTestSuite) TestCreateCompany_DuplicateTaxID() {
	ctx := context.Background()
	req := dto.CreateCompanyRequest{Name: "Acme Corp", TaxID: "131-00001-9", CutoffDay: 15}

	suite.mockRepo.On("SaveCompany", ctx, mock.AnythingOfType("domain.Company")).Return(apperrors.ErrDuplicate).Once()

	created, err := suite.service.CreateCompany(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(created)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *CompanyServiceTestSuite) TestGetCompanyByID_NotFound() {
	ctx := context.Background()
	companyID := uuid.NewString()

	suite.mockRepo.On("FindCompanyByID", ctx, companyID).Return(nil, apperrors.ErrNotFound).Once()

	company, err := suite.service.GetCompanyByID(ctx, companyID)

	suite.Require().Error(err)
	suite.Nil(company)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *CompanyServiceTestSuite) TestListCompanies_NilBecomesEmpty() {
	ctx := context.Background()

	suite.mockRepo.On("ListCompanies", ctx, 50, 0).Return([]domain.Company(nil), nil).Once()

	companies, err := suite.service.ListCompanies(ctx, 50, 0)

	suite.Require().NoError(err)
	suite.NotNil(companies)
	suite.Empty(companies)
}

func (suite *CompanyServiceTestSuite) TestUpdateCompany_PartialUpdate() {
	ctx := context.Background()
	companyID := uuid.NewString()
	updaterID := uuid.NewString()
	existing := &domain.Company{
		CompanyID:       companyID,
		Name:            "Old Name",
		TaxID:           "131-00001-9",
		CreditLimit:     decimal.RequireFromString("50000.00"),
		CutoffDay:       15,
		GracePeriodDays: 10,
		IsActive:        true,
	}
	newName := "New Name"

	suite.mockRepo.On("FindCompanyByID", ctx, companyID).Return(existing, nil).Once()
	suite.mockRepo.On("UpdateCompany", ctx, mock.MatchedBy(func(c domain.Company) bool {
		return c.Name == newName && c.CutoffDay == 15 && c.LastUpdatedBy == updaterID
	})).Return(nil).Once()

	updated, err := suite.service.UpdateCompany(ctx, companyID, dto.UpdateCompanyRequest{Name: &newName}, updaterID)

	suite.Require().NoError(err)
	suite.Equal(newName, updated.Name)
	// Untouched fields survive the partial update.
	suite.Equal(10, updated.GracePeriodDays)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CompanyServiceTestSuite) TestDeactivateCompany_AlreadyInactive() {
	ctx := context.Background()
	companyID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockRepo.On("DeactivateCompany", ctx, companyID, userID, mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrValidation).Once()

	err := suite.service.DeactivateCompany(ctx, companyID, userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestCompanyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CompanyServiceTestSuite))
}
