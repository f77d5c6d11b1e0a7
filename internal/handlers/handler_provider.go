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

// providerHandler handles HTTP requests related to providers.
type providerHandler struct {
	providerService portssvc.ProviderSvcFacade
	billingService  portssvc.BillingSvcFacade
}

func newProviderHandler(ps portssvc.ProviderSvcFacade, bs portssvc.BillingSvcFacade) *providerHandler {
	return &providerHandler{providerService: ps, billingService: bs}
}

// registerProviderRoutes registers routes related to providers.
func registerProviderRoutes(rg *gin.RouterGroup, ps portssvc.ProviderSvcFacade, bs portssvc.BillingSvcFacade) {
	h := newProviderHandler(ps, bs)

	providers := rg.Group("/providers")
	{
		providers.POST("", h.createProvider)
		providers.GET("", h.listProviders)
		providers.GET("/:id", h.getProvider)
		providers.PUT("/:id", h.updateProvider)
		providers.DELETE("/:id", h.deactivateProvider)
		providers.POST("/:id/cutoff", h.runProviderCutoff)
	}
}

// createProvider godoc
// @Summary Create a new provider
// @Description Registers a merchant that accepts consumptions, with its commission rate
// @Tags providers
// @Accept  json
// @Produce  json
// @Param   provider body dto.CreateProviderRequest true "Provider details"
// @Success 201 {object} dto.ProviderResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Security BearerAuth
// @Router /providers [post]
func (h *providerHandler) createProvider(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateProvider", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	provider, err := h.providerService.CreateProvider(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create provider", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create provider"})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.ToProviderResponse(provider))
}

// getProvider godoc
// @Summary Get a provider by ID
// @Tags providers
// @Produce  json
// @Param   id path string true "Provider ID"
// @Success 200 {object} dto.ProviderResponse
// @Failure 404 {object} map[string]string "Provider not found"
// @Security BearerAuth
// @Router /providers/{id} [get]
func (h *providerHandler) getProvider(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	provider, err := h.providerService.GetProviderByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Provider not found"})
		} else {
			logger.Error("Failed to get provider", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve provider"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToProviderResponse(provider))
}

// listProviders godoc
// @Summary List providers
// @Tags providers
// @Produce  json
// @Param   limit query int false "Page size" default(50)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {array} dto.ProviderResponse
// @Security BearerAuth
// @Router /providers [get]
func (h *providerHandler) listProviders(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	limit, offset := parsePagination(c)

	providers, err := h.providerService.ListProviders(c.Request.Context(), limit, offset)
	if err != nil {
		logger.Error("Failed to list providers", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list providers"})
		return
	}
	c.JSON(http.StatusOK, dto.ToProviderResponses(providers))
}

// updateProvider godoc
// @Summary Update a provider
// @Description Commission rate changes apply to future cutoffs only; issued payables keep the rate they were cut with.
// @Tags providers
// @Accept  json
// @Produce  json
// @Param   id path string true "Provider ID"
// @Param   provider body dto.UpdateProviderRequest true "Fields to update"
// @Success 200 {object} dto.ProviderResponse
// @Failure 404 {object} map[string]string "Provider not found"
// @Security BearerAuth
// @Router /providers/{id} [put]
func (h *providerHandler) updateProvider(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	provider, err := h.providerService.UpdateProvider(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Provider not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update provider", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update provider"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToProviderResponse(provider))
}

// deactivateProvider godoc
// @Summary Deactivate a provider
// @Tags providers
// @Param   id path string true "Provider ID"
// @Success 204 "Deactivated"
// @Failure 404 {object} map[string]string "Provider not found"
// @Security BearerAuth
// @Router /providers/{id} [delete]
func (h *providerHandler) deactivateProvider(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.providerService.DeactivateProvider(c.Request.Context(), c.Param("id"), userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Provider not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to deactivate provider", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate provider"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// runProviderCutoff godoc
// @Summary Run a settlement cutoff for a provider
// @Description Aggregates the provider's unbilled consumptions up to asOf into a payable document net of commission. Responds 204 when there is nothing to settle.
// @Tags providers
// @Accept  json
// @Produce  json
// @Param   id path string true "Provider ID"
// @Param   cutoff body dto.RunCutoffRequest true "Cutoff instant"
// @Success 201 {object} dto.PayableResponse
// @Success 204 "Nothing to settle"
// @Failure 404 {object} map[string]string "Provider not found"
// @Failure 409 {object} map[string]string "Concurrent change, rerun the cutoff"
// @Security BearerAuth
// @Router /providers/{id}/cutoff [post]
func (h *providerHandler) runProviderCutoff(c *gin.Context) {
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

	doc, err := h.billingService.RunProviderCutoff(c.Request.Context(), c.Param("id"), req.AsOf, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Provider not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to run provider cutoff", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run provider cutoff"})
		}
		return
	}
	if doc == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, dto.ToPayableResponse(doc))
}
