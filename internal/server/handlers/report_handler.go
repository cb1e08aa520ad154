package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lagranja/livestock/internal/service/reporting"
)

// ReportHandler adapts the reporting service to HTTP.
type ReportHandler struct {
	svc    *reporting.Service
	logger *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(svc *reporting.Service, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, logger: logger}
}

// TraceabilityByFeed lists feeding events in the window, optionally filtered
// to one feed type.
func (h *ReportHandler) TraceabilityByFeed(c *gin.Context) {
	window, ok := h.window(c)
	if !ok {
		return
	}

	rows, err := h.svc.TraceabilityByFeed(c.Request.Context(), c.Query("feedTypeId"), window)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// ConsumptionByClient aggregates consumption per client.
func (h *ReportHandler) ConsumptionByClient(c *gin.Context) {
	window, ok := h.window(c)
	if !ok {
		return
	}

	rows, err := h.svc.ConsumptionByClient(c.Request.Context(), window)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// ConsumptionByFeed aggregates consumption per feed with percentage shares.
func (h *ReportHandler) ConsumptionByFeed(c *gin.Context) {
	window, ok := h.window(c)
	if !ok {
		return
	}

	rows, err := h.svc.ConsumptionByFeed(c.Request.Context(), window)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

func (h *ReportHandler) window(c *gin.Context) (reporting.Window, bool) {
	window, err := reporting.ParseWindow(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		return reporting.Window{}, false
	}
	return window, true
}
