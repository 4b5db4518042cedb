package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rifqipratama/sibat/internal/domain/models"
	"github.com/rifqipratama/sibat/internal/service/partner"
)

// PartnerHandler exposes partner registration and lookup endpoints.
type PartnerHandler struct {
	svc    *partner.Service
	logger *zap.Logger
}

// NewPartnerHandler constructs the HTTP handler adapter.
func NewPartnerHandler(svc *partner.Service, logger *zap.Logger) *PartnerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PartnerHandler{svc: svc, logger: logger}
}

// Create registers a new partner facility.
func (h *PartnerHandler) Create(c *gin.Context) {
	var input models.NewPartnerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid partner payload"})
		return
	}

	p, err := h.svc.Create(c.Request.Context(), CurrentUser(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// List returns every partner, newest first.
func (h *PartnerHandler) List(c *gin.Context) {
	partners, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, partners)
}

// ListByProvince returns the active partners of one province, for the
// batch creation form.
func (h *PartnerHandler) ListByProvince(c *gin.Context) {
	partners, err := h.svc.ListByProvince(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, partners)
}

// Toggle flips a partner between active and deactivated.
func (h *PartnerHandler) Toggle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid partner id"})
		return
	}

	p, err := h.svc.ToggleStatus(c.Request.Context(), CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Provinces returns the fixed province table for dropdowns.
func (h *PartnerHandler) Provinces(c *gin.Context) {
	c.JSON(http.StatusOK, models.Provinces)
}
