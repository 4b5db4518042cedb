package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rifqipratama/sibat/internal/repository/sqlstore"
	"github.com/rifqipratama/sibat/internal/service/auth"
	"github.com/rifqipratama/sibat/internal/service/partner"
	"github.com/rifqipratama/sibat/internal/service/protocol"
)

// respondError maps service and storage errors onto HTTP statuses.
// Validation failures surface their message; everything else is hidden
// behind a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sqlstore.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, sqlstore.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidSession):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case isValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		protocol.ErrInvalidProvince,
		protocol.ErrInvalidQuantity,
		protocol.ErrPartnerInactive,
		protocol.ErrInvalidStatus,
		protocol.ErrInvalidAction,
		partner.ErrInvalidType,
		partner.ErrInvalidCode,
		partner.ErrInvalidProvince,
		partner.ErrMissingFields,
		auth.ErrInvalidRole,
		auth.ErrPasswordMismatch,
		auth.ErrPasswordTooShort,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
