package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	portssvc "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/services"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/dto"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// employeeHandler handles HTTP requests related to employees and their
// credit allocations.
type employeeHandler struct {
	employeeService portssvc.EmployeeSvcFacade
}

func newEmployeeHandler(es portssvc.EmployeeSvcFacade) *employeeHandler {
	return &employeeHandler{employeeService: es}
}

// registerEmployeeRoutes registers routes related to employees.
func registerEmployeeRoutes(rg *gin.RouterGroup, es portssvc.EmployeeSvcFacade) {
	h := newEmployeeHandler(es)

	employees := rg.Group("/employees")
	{
		employees.POST("", h.createEmployee)
		employees.GET("/:id", h.getEmployee)
		employees.PUT("/:id", h.updateEmployee)
		employees.DELETE("/:id", h.deactivateEmployee)
		employees.PUT("/:id/limit", h.assignLimit)
	}

	rg.GET("/companies/:id/employees", h.listEmployeesByCompany)
	rg.GET("/companies/:id/available-to-assign", h.availableToAssign)
}

// createEmployee godoc
// @Summary Create a new employee
// @Description Enrolls an employee under a company with an initial allocated limit taken from the company pool
// @Tags employees
// @Accept  json
// @Produce  json
// @Param   employee body dto.CreateEmployeeRequest true "Employee details"
// @Success 201 {object} dto.EmployeeResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 422 {object} map[string]string "Allocation exceeds the company credit pool"
// @Security BearerAuth
// @Router /employees [post]
func (h *employeeHandler) createEmployee(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateEmployee", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	employee, err := h.employeeService.CreateEmployee(c.Request.Context(), req, userID)
	if err != nil {
		h.respondEmployeeError(c, logger, err, "Failed to create employee")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEmployeeResponse(employee))
}

// getEmployee godoc
// @Summary Get an employee by ID
// @Tags employees
// @Produce  json
// @Param   id path string true "Employee ID"
// @Success 200 {object} dto.EmployeeResponse
// @Failure 404 {object} map[string]string "Employee not found"
// @Security BearerAuth
// @Router /employees/{id} [get]
func (h *employeeHandler) getEmployee(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	employee, err := h.employeeService.GetEmployeeByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondEmployeeError(c, logger, err, "Failed to retrieve employee")
		return
	}
	c.JSON(http.StatusOK, dto.ToEmployeeResponse(employee))
}

// listEmployeesByCompany godoc
// @Summary List the employees of a company
// @Tags employees
// @Produce  json
// @Param   id path string true "Company ID"
// @Param   limit query int false "Page size" default(50)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {array} dto.EmployeeResponse
// @Security BearerAuth
// @Router /companies/{id}/employees [get]
func (h *employeeHandler) listEmployeesByCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	limit, offset := parsePagination(c)

	employees, err := h.employeeService.ListEmployeesByCompany(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		h.respondEmployeeError(c, logger, err, "Failed to list employees")
		return
	}
	c.JSON(http.StatusOK, dto.ToEmployeeResponses(employees))
}

// updateEmployee godoc
// @Summary Update an employee
// @Tags employees
// @Accept  json
// @Produce  json
// @Param   id path string true "Employee ID"
// @Param   employee body dto.UpdateEmployeeRequest true "Fields to update"
// @Success 200 {object} dto.EmployeeResponse
// @Failure 404 {object} map[string]string "Employee not found"
// @Security BearerAuth
// @Router /employees/{id} [put]
func (h *employeeHandler) updateEmployee(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	employee, err := h.employeeService.UpdateEmployee(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		h.respondEmployeeError(c, logger, err, "Failed to update employee")
		return
	}
	c.JSON(http.StatusOK, dto.ToEmployeeResponse(employee))
}

// deactivateEmployee godoc
// @Summary Deactivate an employee
// @Tags employees
// @Param   id path string true "Employee ID"
// @Success 204 "Deactivated"
// @Failure 404 {object} map[string]string "Employee not found"
// @Security BearerAuth
// @Router /employees/{id} [delete]
func (h *employeeHandler) deactivateEmployee(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.employeeService.DeactivateEmployee(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.respondEmployeeError(c, logger, err, "Failed to deactivate employee")
		return
	}
	c.Status(http.StatusNoContent)
}

// assignLimit godoc
// @Summary Assign a new credit limit to an employee
// @Description Replaces the employee's allocated limit, preserving what is already consumed. Fails when the new allocation would exceed the company pool.
// @Tags employees
// @Accept  json
// @Produce  json
// @Param   id path string true "Employee ID"
// @Param   limit body dto.AssignLimitRequest true "New limit"
// @Success 200 {object} dto.EmployeeResponse
// @Failure 404 {object} map[string]string "Employee not found"
// @Failure 422 {object} map[string]string "Allocation exceeds the company credit pool"
// @Security BearerAuth
// @Router /employees/{id}/limit [put]
func (h *employeeHandler) assignLimit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AssignLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	employee, err := h.employeeService.AssignLimit(c.Request.Context(), c.Param("id"), req.NewLimit, userID)
	if err != nil {
		h.respondEmployeeError(c, logger, err, "Failed to assign limit")
		return
	}
	c.JSON(http.StatusOK, dto.ToEmployeeResponse(employee))
}

// availableToAssign godoc
// @Summary Get the unallocated credit remaining in a company pool
// @Tags employees
// @Produce  json
// @Param   id path string true "Company ID"
// @Success 200 {object} dto.AvailableToAssignResponse
// @Failure 404 {object} map[string]string "Company not found"
// @Security BearerAuth
// @Router /companies/{id}/available-to-assign [get]
func (h *employeeHandler) availableToAssign(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	available, unlimited, err := h.employeeService.AvailableToAssign(c.Request.Context(), c.Param("id"), "")
	if err != nil {
		h.respondEmployeeError(c, logger, err, "Failed to compute available credit")
		return
	}
	c.JSON(http.StatusOK, dto.AvailableToAssignResponse{CompanyID: c.Param("id"), Available: available, Unlimited: unlimited})
}

// respondEmployeeError maps employee service errors to HTTP responses.
func (h *employeeHandler) respondEmployeeError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var creditErr *apperrors.CreditExceededError
	switch {
	case errors.As(err, &creditErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     creditErr.Error(),
			"requested": creditErr.Requested,
			"available": creditErr.Available,
		})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
