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

// refinancingHandler handles HTTP requests related to refinancings.
type refinancingHandler struct {
	refinancingService portssvc.RefinancingSvcFacade
}

func newRefinancingHandler(rs portssvc.RefinancingSvcFacade) *refinancingHandler {
	return &refinancingHandler{refinancingService: rs}
}

// registerRefinancingRoutes registers routes related to refinancings.
func registerRefinancingRoutes(rg *gin.RouterGroup, rs portssvc.RefinancingSvcFacade) {
	h := newRefinancingHandler(rs)

	refinancings := rg.Group("/refinancings")
	{
		refinancings.GET("/:id", h.getRefinancing)
		refinancings.POST("/:id/payments", h.applyPayment)
		refinancings.POST("/:id/write-off", h.writeOff)
	}

	rg.POST("/receivables/:id/refinance", h.refinance)
	rg.GET("/companies/:id/refinancings", h.listByCompany)
}

// refinance godoc
// @Summary Refinance a receivable document
// @Description Moves the receivable's pending balance into a refinancing and restores the billed employees' balances so consumption can continue
// @Tags refinancings
// @Produce  json
// @Param   id path string true "Receivable ID"
// @Success 201 {object} dto.RefinancingResponse
// @Failure 404 {object} map[string]string "Receivable not found"
// @Failure 409 {object} map[string]string "Receivable already refinanced or in a terminal state"
// @Security BearerAuth
// @Router /receivables/{id}/refinance [post]
func (h *refinancingHandler) refinance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	refinancing, err := h.refinancingService.Refinance(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.respondRefinancingError(c, logger, err, "Failed to refinance receivable")
		return
	}
	c.JSON(http.StatusCreated, dto.ToRefinancingResponse(refinancing, time.Now().UTC()))
}

// getRefinancing godoc
// @Summary Get a refinancing by ID
// @Description Status in the response is effective: OVERDUE is derived from the due date, never stored
// @Tags refinancings
// @Produce  json
// @Param   id path string true "Refinancing ID"
// @Success 200 {object} dto.RefinancingResponse
// @Failure 404 {object} map[string]string "Refinancing not found"
// @Security BearerAuth
// @Router /refinancings/{id} [get]
func (h *refinancingHandler) getRefinancing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	refinancing, err := h.refinancingService.GetRefinancingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondRefinancingError(c, logger, err, "Failed to retrieve refinancing")
		return
	}
	c.JSON(http.StatusOK, dto.ToRefinancingResponse(refinancing, time.Now().UTC()))
}

// listByCompany godoc
// @Summary List a company's refinancings
// @Tags refinancings
// @Produce  json
// @Param   id path string true "Company ID"
// @Param   limit query int false "Page size" default(50)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {array} dto.RefinancingResponse
// @Security BearerAuth
// @Router /companies/{id}/refinancings [get]
func (h *refinancingHandler) listByCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	limit, offset := parsePagination(c)

	refinancings, err := h.refinancingService.ListRefinancingsByCompany(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		h.respondRefinancingError(c, logger, err, "Failed to list refinancings")
		return
	}
	c.JSON(http.StatusOK, dto.ToRefinancingResponses(refinancings, time.Now().UTC()))
}

// applyPayment godoc
// @Summary Apply a payment to a refinancing
// @Tags refinancings
// @Accept  json
// @Produce  json
// @Param   id path string true "Refinancing ID"
// @Param   payment body dto.ApplyPaymentRequest true "Payment details"
// @Success 200 {object} dto.RefinancingResponse
// @Failure 404 {object} map[string]string "Refinancing not found"
// @Failure 409 {object} map[string]string "Refinancing is in a terminal state"
// @Failure 422 {object} map[string]string "Payment exceeds the pending balance"
// @Security BearerAuth
// @Router /refinancings/{id}/payments [post]
func (h *refinancingHandler) applyPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	refinancing, payment, err := h.refinancingService.ApplyPayment(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		h.respondRefinancingError(c, logger, err, "Failed to apply payment")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"refinancing": dto.ToRefinancingResponse(refinancing, time.Now().UTC()),
		"payment":     dto.ToPaymentResponse(payment),
	})
}

// writeOff godoc
// @Summary Write off a refinancing
// @Description Marks the remaining balance as uncollectable. The refinancing becomes terminal.
// @Tags refinancings
// @Param   id path string true "Refinancing ID"
// @Success 204 "Written off"
// @Failure 404 {object} map[string]string "Refinancing not found"
// @Failure 409 {object} map[string]string "Refinancing is in a terminal state"
// @Security BearerAuth
// @Router /refinancings/{id}/write-off [post]
func (h *refinancingHandler) writeOff(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.refinancingService.WriteOff(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.respondRefinancingError(c, logger, err, "Failed to write off refinancing")
		return
	}
	c.Status(http.StatusNoContent)
}

// respondRefinancingError maps refinancing service errors to HTTP responses.
func (h *refinancingHandler) respondRefinancingError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var exceedsErr *apperrors.ExceedsPendingError
	switch {
	case errors.As(err, &exceedsErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     exceedsErr.Error(),
			"requested": exceedsErr.Requested,
			"pending":   exceedsErr.Pending,
		})
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrInvalidState),
		errors.Is(err, apperrors.ErrDocumentTerminal),
		errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
