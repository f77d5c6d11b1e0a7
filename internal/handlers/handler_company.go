package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	portssvc "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/services"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/dto"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// companyHandler handles HTTP requests related to companies.
type companyHandler struct {
	companyService portssvc.CompanySvcFacade
	billingService portssvc.BillingSvcFacade
}

func newCompanyHandler(cs portssvc.CompanySvcFacade, bs portssvc.BillingSvcFacade) *companyHandler {
	return &companyHandler{companyService: cs, billingService: bs}
}

// registerCompanyRoutes registers routes related to companies.
func registerCompanyRoutes(rg *gin.RouterGroup, cs portssvc.CompanySvcFacade, bs portssvc.BillingSvcFacade) {
	h := newCompanyHandler(cs, bs)

	companies := rg.Group("/companies")
	{
		companies.POST("", h.createCompany)
		companies.GET("", h.listCompanies)
		companies.GET("/:id", h.getCompany)
		companies.PUT("/:id", h.updateCompany)
		companies.DELETE("/:id", h.deactivateCompany)
		companies.POST("/:id/cutoff", h.runCutoff)
	}
}

// createCompany godoc
// @Summary Create a new company
// @Description Registers an employer entity with its credit pool and billing cycle
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   company body dto.CreateCompanyRequest true "Company details"
// @Success 201 {object} dto.CompanyResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /companies [post]
func (h *companyHandler) createCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCompany", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if req.CreditLimit.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "creditLimit cannot be negative"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	company, err := h.companyService.CreateCompany(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create company", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create company"})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.ToCompanyResponse(company))
}

// getCompany godoc
// @Summary Get a company by ID
// @Tags companies
// @Produce  json
// @Param   id path string true "Company ID"
// @Success 200 {object} dto.CompanyResponse
// @Failure 404 {object} map[string]string "Company not found"
// @Security BearerAuth
// @Router /companies/{id} [get]
func (h *companyHandler) getCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	company, err := h.companyService.GetCompanyByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		} else {
			logger.Error("Failed to get company", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve company"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToCompanyResponse(company))
}

// listCompanies godoc
// @Summary List companies
// @Tags companies
// @Produce  json
// @Param   limit query int false "Page size" default(50)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {array} dto.CompanyResponse
// @Security BearerAuth
// @Router /companies [get]
func (h *companyHandler) listCompanies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	limit, offset := parsePagination(c)

	companies, err := h.companyService.ListCompanies(c.Request.Context(), limit, offset)
	if err != nil {
		logger.Error("Failed to list companies", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list companies"})
		return
	}
	c.JSON(http.StatusOK, dto.ToCompanyResponses(companies))
}

// updateCompany godoc
// @Summary Update a company
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   id path string true "Company ID"
// @Param   company body dto.UpdateCompanyRequest true "Fields to update"
// @Success 200 {object} dto.CompanyResponse
// @Failure 404 {object} map[string]string "Company not found"
// @Security BearerAuth
// @Router /companies/{id} [put]
func (h *companyHandler) updateCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if req.CreditLimit != nil && req.CreditLimit.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "creditLimit cannot be negative"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	company, err := h.companyService.UpdateCompany(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update company", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update company"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToCompanyResponse(company))
}

// deactivateCompany godoc
// @Summary Deactivate a company
// @Tags companies
// @Param   id path string true "Company ID"
// @Success 204 "Deactivated"
// @Failure 404 {object} map[string]string "Company not found"
// @Security BearerAuth
// @Router /companies/{id} [delete]
func (h *companyHandler) deactivateCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.companyService.DeactivateCompany(c.Request.Context(), c.Param("id"), userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to deactivate company", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate company"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// runCutoff godoc
// @Summary Run a billing cutoff for a company
// @Description Aggregates the company's unbilled consumptions up to asOf into a receivable document. Responds 204 when there is nothing to bill.
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   id path string true "Company ID"
// @Param   cutoff body dto.RunCutoffRequest true "Cutoff instant"
// @Success 201 {object} dto.ReceivableResponse
// @Success 204 "Nothing to bill"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 409 {object} map[string]string "Concurrent change, rerun the cutoff"
// @Security BearerAuth
// @Router /companies/{id}/cutoff [post]
func (h *companyHandler) runCutoff(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RunCutoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	doc, err := h.billingService.RunCutoff(c.Request.Context(), c.Param("id"), req.AsOf, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to run cutoff", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run cutoff"})
		}
		return
	}
	if doc == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, dto.ToReceivableResponse(doc))
}

// parsePagination reads limit/offset query params with the console defaults.
func parsePagination(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
