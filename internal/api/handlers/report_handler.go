package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/inventory-intel/internal/service"
)

type ReportHandler struct {
	reports *service.ReportService
	runner  *service.RunService
	now     func() time.Time
}

func NewReportHandler(reports *service.ReportService, runner *service.RunService) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		runner:  runner,
		now:     time.Now,
	}
}

// asOf resolves the reference date: an explicit ?as_of=YYYY-MM-DD wins,
// otherwise today.
func (h *ReportHandler) asOf(c *gin.Context) (time.Time, bool) {
	raw := c.Query("as_of")
	if raw == "" {
		return h.now(), true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid as_of date, want YYYY-MM-DD"})
		return time.Time{}, false
	}
	return t, true
}

// GetReport returns all five analytic reports for the latest run.
func (h *ReportHandler) GetReport(c *gin.Context) {
	asOf, ok := h.asOf(c)
	if !ok {
		return
	}

	report, err := h.reports.GetReport(c.Request.Context(), asOf)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetInventory returns the annotated inventory table of the latest run.
func (h *ReportHandler) GetInventory(c *gin.Context) {
	items, err := h.reports.GetInventory(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// GetAlerts returns the alerts table of the latest run, in emission order.
func (h *ReportHandler) GetAlerts(c *gin.Context) {
	alerts, err := h.reports.GetAlerts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "total": len(alerts)})
}

// TriggerRun executes a full batch run over the current snapshot directory.
func (h *ReportHandler) TriggerRun(c *gin.Context) {
	if h.runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run trigger not configured"})
		return
	}

	asOf, ok := h.asOf(c)
	if !ok {
		return
	}

	result, report, err := h.runner.Execute(c.Request.Context(), asOf)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"as_of":  result.AsOf.Format("2006-01-02"),
		"items":  len(result.Inventory),
		"alerts": len(result.Alerts),
		"report": report,
	})
}
