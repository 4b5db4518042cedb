package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rifqipratama/sibat/internal/service/audit"
	"github.com/rifqipratama/sibat/internal/service/reporting"
)

const defaultActivityLimit = 50

// ReportingHandler exposes stock, dashboard, analytics and activity
// endpoints.
type ReportingHandler struct {
	svc    *reporting.Service
	audit  *audit.Recorder
	logger *zap.Logger
}

// NewReportingHandler constructs the HTTP handler adapter.
func NewReportingHandler(svc *reporting.Service, recorder *audit.Recorder, logger *zap.Logger) *ReportingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportingHandler{svc: svc, audit: recorder, logger: logger}
}

// Stock returns the aggregate summary plus the per-partner ledger rows.
func (h *ReportingHandler) Stock(c *gin.Context) {
	summary, err := h.svc.StockSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	partners, err := h.svc.PartnerStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary, "partners": partners})
}

// Dashboard returns status counts and top provinces for the requested
// period. Defaults to today.
func (h *ReportingHandler) Dashboard(c *gin.Context) {
	from, to, err := h.svc.Window(
		reporting.Period(c.Query("period")),
		c.Query("start_date"),
		c.Query("end_date"),
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.svc.DashboardStats(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Analytics returns trends, performance rankings and aggregate metrics.
func (h *ReportingHandler) Analytics(c *gin.Context) {
	analytics, err := h.svc.Analytics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// Activity returns the latest audit entries.
func (h *ReportingHandler) Activity(c *gin.Context) {
	limit := defaultActivityLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	entries, err := h.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
