package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	portssvc "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/services"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

const reportDateLayout = "2006-01-02"

// reportingHandler handles HTTP requests for the read-only reports.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

func newReportingHandler(rs portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{reportingService: rs}
}

// registerReportingRoutes registers the report routes.
func registerReportingRoutes(rg *gin.RouterGroup, rs portssvc.ReportingSvcFacade) {
	h := newReportingHandler(rs)

	reports := rg.Group("/reports")
	{
		reports.GET("/employee-consumption", h.employeeConsumption)
		reports.GET("/provider-settlement", h.providerSettlement)
		reports.GET("/receivable-ageing", h.receivableAgeing)
	}

	rg.GET("/companies/:id/exposure", h.companyExposure)
}

// employeeConsumption godoc
// @Summary Consumption totals per employee for a company over a period
// @Tags reports
// @Produce  json
// @Param   companyID query string true "Company ID"
// @Param   from query string true "Period start (YYYY-MM-DD)"
// @Param   to query string true "Period end (YYYY-MM-DD)"
// @Success 200 {array} domain.EmployeeConsumptionRow
// @Failure 400 {object} map[string]string "Invalid period"
// @Security BearerAuth
// @Router /reports/employee-consumption [get]
func (h *reportingHandler) employeeConsumption(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Query("companyID")
	if companyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "companyID is required"})
		return
	}
	period, err := parseReportPeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.reportingService.EmployeeConsumption(c.Request.Context(), companyID, period)
	if err != nil {
		h.respondReportingError(c, logger, err, "Failed to build employee consumption report")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// providerSettlement godoc
// @Summary Gross, commission and net totals per provider over a period
// @Description Uses each provider's current commission rate as a projection; issued payables keep their frozen rate.
// @Tags reports
// @Produce  json
// @Param   from query string true "Period start (YYYY-MM-DD)"
// @Param   to query string true "Period end (YYYY-MM-DD)"
// @Success 200 {array} domain.ProviderSettlementRow
// @Failure 400 {object} map[string]string "Invalid period"
// @Security BearerAuth
// @Router /reports/provider-settlement [get]
func (h *reportingHandler) providerSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	period, err := parseReportPeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.reportingService.ProviderSettlement(c.Request.Context(), period)
	if err != nil {
		h.respondReportingError(c, logger, err, "Failed to build provider settlement report")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// companyExposure godoc
// @Summary Current credit exposure of a company
// @Description Allocated limits, unbilled consumption and open document balances in one snapshot
// @Tags reports
// @Produce  json
// @Param   id path string true "Company ID"
// @Success 200 {object} domain.CompanyExposureReport
// @Failure 404 {object} map[string]string "Company not found"
// @Security BearerAuth
// @Router /companies/{id}/exposure [get]
func (h *reportingHandler) companyExposure(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	report, err := h.reportingService.CompanyExposure(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondReportingError(c, logger, err, "Failed to build exposure report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// receivableAgeing godoc
// @Summary Open receivable balances grouped by days overdue
// @Tags reports
// @Produce  json
// @Param   asOf query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Success 200 {array} domain.DocumentAgeingRow
// @Failure 400 {object} map[string]string "Invalid asOf"
// @Security BearerAuth
// @Router /reports/receivable-ageing [get]
func (h *reportingHandler) receivableAgeing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	asOf := time.Now().UTC()
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := time.Parse(reportDateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf, expected YYYY-MM-DD"})
			return
		}
		asOf = parsed
	}

	rows, err := h.reportingService.ReceivableAgeing(c.Request.Context(), asOf)
	if err != nil {
		h.respondReportingError(c, logger, err, "Failed to build ageing report")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// parseReportPeriod reads the from/to query params as calendar dates. The
// period is inclusive of the whole end day.
func parseReportPeriod(c *gin.Context) (domain.Period, error) {
	from, err := time.Parse(reportDateLayout, c.Query("from"))
	if err != nil {
		return domain.Period{}, errors.New("invalid from, expected YYYY-MM-DD")
	}
	to, err := time.Parse(reportDateLayout, c.Query("to"))
	if err != nil {
		return domain.Period{}, errors.New("invalid to, expected YYYY-MM-DD")
	}
	return domain.Period{From: from, To: to.AddDate(0, 0, 1).Add(-time.Nanosecond)}, nil
}

// respondReportingError maps reporting service errors to HTTP responses.
func (h *reportingHandler) respondReportingError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
