package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	portssvc "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/services"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/dto"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// settlementHandler handles HTTP requests for receivable (CxC) and payable
// (CxP) documents and their payments.
type settlementHandler struct {
	settlementService portssvc.SettlementSvcFacade
}

func newSettlementHandler(ss portssvc.SettlementSvcFacade) *settlementHandler {
	return &settlementHandler{settlementService: ss}
}

// registerSettlementRoutes registers routes related to documents and payments.
func registerSettlementRoutes(rg *gin.RouterGroup, ss portssvc.SettlementSvcFacade) {
	h := newSettlementHandler(ss)

	receivables := rg.Group("/receivables")
	{
		receivables.GET("", h.listReceivables)
		receivables.GET("/:id", h.getReceivable)
		receivables.GET("/:id/payments", h.listReceivablePayments)
		receivables.POST("/:id/payments", h.applyReceivablePayment)
		receivables.POST("/:id/void", h.voidReceivable)
	}

	payables := rg.Group("/payables")
	{
		payables.GET("", h.listPayables)
		payables.GET("/:id", h.getPayable)
		payables.GET("/:id/payments", h.listPayablePayments)
		payables.POST("/:id/payments", h.applyPayablePayment)
		payables.POST("/:id/void", h.voidPayable)
	}
}

// listReceivables godoc
// @Summary List receivable documents
// @Tags settlement
// @Produce  json
// @Param   status query string false "Filter by status" Enums(PENDING, PARTIAL, PAID, REFINANCED, VOIDED)
// @Param   companyID query string false "Filter by company"
// @Param   issuedFrom query string false "Issued on or after (YYYY-MM-DD)"
// @Param   issuedTo query string false "Issued on or before (YYYY-MM-DD)"
// @Param   limit query int false "Page size" default(50)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {array} dto.ReceivableResponse
// @Security BearerAuth
// @Router /receivables [get]
func (h *settlementHandler) listReceivables(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListDocumentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	docs, err := h.settlementService.ListReceivables(c.Request.Context(), params)
	if err != nil {
		h.respondSettlementError(c, logger, err, "Failed to list receivables")
		return
	}
	c.JSON(http.StatusOK, dto.ToReceivableResponses(docs))
}

// getReceivable godoc
// @Summary Get a receivable document by ID
// @Tags settlement
// @Produce  json
// @Param   id path string true "Receivable ID"
// @Success 200 {object} dto.ReceivableResponse
// @Failure 404 {object} map[string]string "Receivable not found"
// @Security BearerAuth
// @Router /receivables/{id} [get]
func (h *settlementHandler) getReceivable(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	doc, err := h.settlementService.GetReceivableByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondSettlementError(c, logger, err, "Failed to retrieve receivable")
		return
	}
	c.JSON(http.StatusOK, dto.ToReceivableResponse(doc))
}

// applyReceivablePayment godoc
// @Summary Apply a payment to a receivable
// @Description Records a company payment against a receivable. Overpaying the pending balance is rejected.
// @Tags settlement
// @Accept  json
// @Produce  json
// @Param   id path string true "Receivable ID"
// @Param   payment body dto.ApplyPaymentRequest true "Payment details"
// @Success 200 {object} dto.ReceivableResponse
// @Failure 404 {object} map[string]string "Receivable not found"
// @Failure 409 {object} map[string]string "Document is in a terminal state"
// @Failure 422 {object} map[string]string "Payment exceeds the pending balance"
// @Security BearerAuth
// @Router /receivables/{id}/payments [post]
func (h *settlementHandler) applyReceivablePayment(c *gin.Context) {
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

	doc, payment, err := h.settlementService.ApplyReceivablePayment(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		h.respondSettlementError(c, logger, err, "Failed to apply payment")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"document": dto.ToReceivableResponse(doc),
		"payment":  dto.ToPaymentResponse(payment),
	})
}

// listReceivablePayments godoc
// @Summary List the payments applied to a receivable
// @Tags settlement
// @Produce  json
// @Param   id path string true "Receivable ID"
// @Success 200 {array} dto.PaymentResponse
// @Failure 404 {object} map[string]string "Receivable not found"
// @Security BearerAuth
// @Router /receivables/{id}/payments [get]
func (h *settlementHandler) listReceivablePayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	payments, err := h.settlementService.ListPayments(c.Request.Context(), c.Param("id"), domain.KindReceivable)
	if err != nil {
		h.respondSettlementError(c, logger, err, "Failed to list payments")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponses(payments))
}

// voidReceivable godoc
// @Summary Void a receivable document
// @Description Annuls the document. Its consumptions stay linked and are excluded from future cutoffs.
// @Tags settlement
// @Param   id path string true "Receivable ID"
// @Success 204 "Voided"
// @Failure 404 {object} map[string]string "Receivable not found"
// @Failure 409 {object} map[string]string "Document is in a terminal state"
// @Security BearerAuth
// @Router /receivables/{id}/void [post]
func (h *settlementHandler) voidReceivable(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.settlementService.VoidReceivable(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.respondSettlementError(c, logger, err, "Failed to void receivable")
		return
	}
	c.Status(http.StatusNoContent)
}

// listPayables godoc
// @Summary List payable documents
// @Tags settlement
// @Produce  json
// @Param   status query string false "Filter by status" Enums(PENDING, PARTIAL, PAID, VOIDED)
// @Param   providerID query string false "Filter by provider"
// @Param   issuedFrom query string false "Issued on or after (YYYY-MM-DD)"
// @Param   issuedTo query string false "Issued on or before (YYYY-MM-DD)"
// @Param   limit query int false "Page size" default(50)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {array} dto.PayableResponse
// @Security BearerAuth
// @Router /payables [get]
func (h *settlementHandler) listPayables(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListDocumentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	docs, err := h.settlementService.ListPayables(c.Request.Context(), params)
	if err != nil {
		h.respondSettlementError(c, logger, err, "Failed to list payables")
		return
	}
	c.JSON(http.StatusOK, dto.ToPayableResponses(docs))
}

// getPayable godoc
// @Summary Get a payable document by ID
// @Tags settlement
// @Produce  json
// @Param   id path string true "Payable ID"
// @Success 200 {object} dto.PayableResponse
// @Failure 404 {object} map[string]string "Payable not found"
// @Security BearerAuth
// @Router /payables/{id} [get]
func (h *settlementHandler) getPayable(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	doc, err := h.settlementService.GetPayableByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondSettlementError(c, logger, err, "Failed to retrieve payable")
		return
	}
	c.JSON(http.StatusOK, dto.ToPayableResponse(doc))
}

// applyPayablePayment godoc
// @Summary Apply a payment to a payable
// @Description Records an outbound payment to a provider against a payable document
// @Tags settlement
// @Accept  json
// @Produce  json
// @Param   id path string true "Payable ID"
// @Param   payment body dto.ApplyPaymentRequest true "Payment details"
// @Success 200 {object} dto.PayableResponse
// @Failure 404 {object} map[string]string "Payable not found"
// @Failure 409 {object} map[string]string "Document is in a terminal state"
// @Failure 422 {object} map[string]string "Payment exceeds the pending balance"
// @Security BearerAuth
// @Router /payables/{id}/payments [post]
func (h *settlementHandler) applyPayablePayment(c *gin.Context) {
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

	doc, payment, err := h.settlementService.ApplyPayablePayment(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		h.respondSettlementError(c, logger, err, "Failed to apply payment")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"document": dto.ToPayableResponse(doc),
		"payment":  dto.ToPaymentResponse(payment),
	})
}

// listPayablePayments godoc
// @Summary List the payments applied to a payable
// @Tags settlement
// @Produce  json
// @Param   id path string true "Payable ID"
// @Success 200 {array} dto.PaymentResponse
// @Failure 404 {object} map[string]string "Payable not found"
// @Security BearerAuth
// @Router /payables/{id}/payments [get]
func (h *settlementHandler) listPayablePayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	payments, err := h.settlementService.ListPayments(c.Request.Context(), c.Param("id"), domain.KindPayable)
	if err != nil {
		h.respondSettlementError(c, logger, err, "Failed to list payments")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponses(payments))
}

// voidPayable godoc
// @Summary Void a payable document
// @Tags settlement
// @Param   id path string true "Payable ID"
// @Success 204 "Voided"
// @Failure 404 {object} map[string]string "Payable not found"
// @Failure 409 {object} map[string]string "Document is in a terminal state"
// @Security BearerAuth
// @Router /payables/{id}/void [post]
func (h *settlementHandler) voidPayable(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.settlementService.VoidPayable(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.respondSettlementError(c, logger, err, "Failed to void payable")
		return
	}
	c.Status(http.StatusNoContent)
}

// respondSettlementError maps settlement service errors to HTTP responses.
func (h *settlementHandler) respondSettlementError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var exceedsErr *apperrors.ExceedsPendingError
	switch {
	case errors.As(err, &exceedsErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     exceedsErr.Error(),
			"requested": exceedsErr.Requested,
			"pending":   exceedsErr.Pending,
		})
	case errors.Is(err, apperrors.ErrDocumentTerminal), errors.Is(err, apperrors.ErrConflict):
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
