package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	portssvc "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/services"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/dto"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// consumptionHandler handles HTTP requests for the consumption journal.
type consumptionHandler struct {
	consumptionService portssvc.ConsumptionSvcFacade
}

func newConsumptionHandler(cs portssvc.ConsumptionSvcFacade) *consumptionHandler {
	return &consumptionHandler{consumptionService: cs}
}

// registerConsumptionRoutes registers routes related to consumptions.
func registerConsumptionRoutes(rg *gin.RouterGroup, cs portssvc.ConsumptionSvcFacade) {
	h := newConsumptionHandler(cs)

	consumptions := rg.Group("/consumptions")
	{
		consumptions.POST("", h.debit)
		consumptions.GET("/:id", h.getConsumption)
		consumptions.POST("/:id/reverse", h.reverse)
	}

	rg.GET("/employees/:id/consumptions", h.listByEmployee)
	rg.GET("/employees/:id/unbilled", h.listUnbilledByEmployee)
	rg.GET("/companies/:id/unbilled", h.listUnbilled)
}

// debit godoc
// @Summary Record a consumption
// @Description Debits an employee's available balance for a purchase at a provider
// @Tags consumptions
// @Accept  json
// @Produce  json
// @Param   consumption body dto.DebitRequest true "Consumption details"
// @Success 201 {object} dto.ConsumptionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 422 {object} map[string]string "Insufficient available balance"
// @Security BearerAuth
// @Router /consumptions [post]
func (h *consumptionHandler) debit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DebitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Debit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	consumption, err := h.consumptionService.Debit(c.Request.Context(), req, userID)
	if err != nil {
		var insufficientErr *apperrors.InsufficientCreditError
		switch {
		case errors.As(err, &insufficientErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":     insufficientErr.Error(),
				"requested": insufficientErr.Requested,
				"available": insufficientErr.Available,
			})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to record consumption", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record consumption"})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.ToConsumptionResponse(consumption))
}

// getConsumption godoc
// @Summary Get a consumption by ID
// @Tags consumptions
// @Produce  json
// @Param   id path string true "Consumption ID"
// @Success 200 {object} dto.ConsumptionResponse
// @Failure 404 {object} map[string]string "Consumption not found"
// @Security BearerAuth
// @Router /consumptions/{id} [get]
func (h *consumptionHandler) getConsumption(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	consumption, err := h.consumptionService.GetConsumptionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Consumption not found"})
		} else {
			logger.Error("Failed to get consumption", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve consumption"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToConsumptionResponse(consumption))
}

// reverse godoc
// @Summary Reverse a consumption
// @Description Cancels an unbilled consumption and restores the employee's available balance
// @Tags consumptions
// @Produce  json
// @Param   id path string true "Consumption ID"
// @Success 200 {object} dto.ConsumptionResponse
// @Failure 404 {object} map[string]string "Consumption not found"
// @Failure 409 {object} map[string]string "Already reversed or already billed"
// @Security BearerAuth
// @Router /consumptions/{id}/reverse [post]
func (h *consumptionHandler) reverse(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	consumption, err := h.consumptionService.Reverse(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Consumption not found"})
		case errors.Is(err, apperrors.ErrAlreadyReversed),
			errors.Is(err, apperrors.ErrAlreadyBilled),
			errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to reverse consumption", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reverse consumption"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToConsumptionResponse(consumption))
}

// listByEmployee godoc
// @Summary List an employee's consumptions
// @Description Returns the employee's journal, newest first, with a resume token for the next page
// @Tags consumptions
// @Produce  json
// @Param   id path string true "Employee ID"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Resume token from the previous page"
// @Success 200 {object} dto.ListConsumptionsResponse
// @Failure 404 {object} map[string]string "Employee not found"
// @Security BearerAuth
// @Router /employees/{id}/consumptions [get]
func (h *consumptionHandler) listByEmployee(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListConsumptionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.consumptionService.ListConsumptionsByEmployee(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list consumptions", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list consumptions"})
		}
		return
	}
	c.JSON(http.StatusOK, page)
}

// listUnbilledByEmployee godoc
// @Summary List an employee's unbilled consumptions
// @Description Returns the employee's consumptions not yet linked to a receivable, in billing order, up to the given instant
// @Tags consumptions
// @Produce  json
// @Param   id path string true "Employee ID"
// @Param   upTo query string false "Upper bound instant (RFC3339), defaults to now"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Resume token from the previous page"
// @Success 200 {object} dto.ListConsumptionsResponse
// @Failure 404 {object} map[string]string "Employee not found"
// @Security BearerAuth
// @Router /employees/{id}/unbilled [get]
func (h *consumptionHandler) listUnbilledByEmployee(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListConsumptionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	upTo := time.Now().UTC()
	if raw := c.Query("upTo"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upTo, expected RFC3339"})
			return
		}
		upTo = parsed
	}

	page, err := h.consumptionService.ListUnbilledByEmployee(c.Request.Context(), c.Param("id"), upTo, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list unbilled consumptions", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list unbilled consumptions"})
		}
		return
	}
	c.JSON(http.StatusOK, page)
}

// listUnbilled godoc
// @Summary List a company's unbilled consumptions
// @Description Returns consumptions not yet linked to a receivable, in billing order, up to the given instant
// @Tags consumptions
// @Produce  json
// @Param   id path string true "Company ID"
// @Param   upTo query string false "Upper bound instant (RFC3339), defaults to now"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Resume token from the previous page"
// @Success 200 {object} dto.ListConsumptionsResponse
// @Failure 404 {object} map[string]string "Company not found"
// @Security BearerAuth
// @Router /companies/{id}/unbilled [get]
func (h *consumptionHandler) listUnbilled(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListConsumptionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	upTo := time.Now().UTC()
	if raw := c.Query("upTo"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upTo, expected RFC3339"})
			return
		}
		upTo = parsed
	}

	page, err := h.consumptionService.ListUnbilled(c.Request.Context(), c.Param("id"), upTo, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list unbilled consumptions", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list unbilled consumptions"})
		}
		return
	}
	c.JSON(http.StatusOK, page)
}
