package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rifqipratama/sibat/internal/barcode"
	"github.com/rifqipratama/sibat/internal/domain/models"
	"github.com/rifqipratama/sibat/internal/service/protocol"
	"github.com/rifqipratama/sibat/internal/service/reporting"
)

const defaultListLimit = 100

// ProtocolHandler exposes batch creation, status updates, scan
// confirmation and barcode rendering.
type ProtocolHandler struct {
	svc    *protocol.Service
	logger *zap.Logger
}

// NewProtocolHandler constructs the HTTP handler adapter.
func NewProtocolHandler(svc *protocol.Service, logger *zap.Logger) *ProtocolHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProtocolHandler{svc: svc, logger: logger}
}

type createBatchRequest struct {
	ProvinceCode string `json:"province_code" binding:"required"`
	PartnerID    int64  `json:"partner_id" binding:"required"`
	Quantity     int    `json:"quantity"`
}

// CreateBatch mints a batch of protocol codes. Quantity defaults to 1
// when omitted.
func (h *ProtocolHandler) CreateBatch(c *gin.Context) {
	var req createBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "province_code and partner_id are required"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	result, err := h.svc.CreateBatch(c.Request.Context(), CurrentUser(c), req.ProvinceCode, req.PartnerID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus writes a new lifecycle status on one protocol.
func (h *ProtocolHandler) SetStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid protocol id"})
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	p, err := h.svc.SetStatus(c.Request.Context(), CurrentUser(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// List returns protocols created within the requested period, newest
// first. Defaults to today.
func (h *ProtocolHandler) List(c *gin.Context) {
	from, to, err := reporting.WindowAt(
		time.Now(),
		reporting.Period(c.Query("period")),
		c.Query("start_date"),
		c.Query("end_date"),
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	protocols, err := h.svc.ListRecent(c.Request.Context(), from, to, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, protocols)
}

// Scan resolves a scanned code to its protocol. Public, no session
// required so field scanners work without dashboard accounts.
func (h *ProtocolHandler) Scan(c *gin.Context) {
	p, err := h.svc.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type confirmRequest struct {
	Action models.ScanAction `json:"action"`
}

// ConfirmUsage applies a scanner action to the scanned code. Public;
// the action defaults to marking the kit used.
func (h *ProtocolHandler) ConfirmUsage(c *gin.Context) {
	var req confirmRequest
	// An empty body is fine; it means the default action.
	_ = c.ShouldBindJSON(&req)
	if req.Action == "" {
		req.Action = models.ActionMarkUsed
	}

	p, err := h.svc.ConfirmScan(c.Request.Context(), CurrentUser(c), c.Param("code"), req.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Barcode renders the code as an inline Code 128 PNG.
func (h *ProtocolHandler) Barcode(c *gin.Context) {
	h.renderBarcode(c, false)
}

// DownloadBarcode renders the code as a PNG attachment for printing.
func (h *ProtocolHandler) DownloadBarcode(c *gin.Context) {
	h.renderBarcode(c, true)
}

func (h *ProtocolHandler) renderBarcode(c *gin.Context, download bool) {
	code := c.Param("code")
	if _, err := h.svc.GetByCode(c.Request.Context(), code); err != nil {
		respondError(c, err)
		return
	}

	img, err := barcode.Render(code)
	if err != nil {
		h.logger.Error("barcode render failed", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "barcode render failed"})
		return
	}

	if download {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.png", code))
	}
	c.Data(http.StatusOK, "image/png", img)
}
