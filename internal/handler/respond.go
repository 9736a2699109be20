package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zoowprime/South-Los-Angeles-RP/internal/models"
)

// respondError maps the service failure taxonomy onto HTTP statuses and
// stable machine-readable reason codes. Validation failures are 400,
// state gates 403, missing records 404, resource conflicts 409.
func respondError(c *gin.Context, err error) {
	type mapping struct {
		target error
		status int
		reason string
	}
	mappings := []mapping{
		{models.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
		{models.ErrInvalidKind, http.StatusBadRequest, "invalid_kind"},
		{models.ErrSelfTransfer, http.StatusBadRequest, "self_transfer"},
		{models.ErrUnknownItem, http.StatusBadRequest, "unknown_item"},
		{models.ErrNotConsumable, http.StatusBadRequest, "not_consumable"},
		{models.ErrAccountFrozen, http.StatusForbidden, "frozen"},
		{models.ErrAccountClosed, http.StatusForbidden, "closed"},
		{models.ErrBlacklisted, http.StatusForbidden, "blacklisted"},
		{models.ErrNotFound, http.StatusNotFound, "not_found"},
		{models.ErrInsufficientFunds, http.StatusConflict, "insufficient_funds"},
		{models.ErrOverweight, http.StatusConflict, "overweight"},
		{models.ErrNoItem, http.StatusConflict, "no_item"},
		{models.ErrEnterpriseExists, http.StatusConflict, "enterprise_exists"},
	}
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			c.JSON(m.status, gin.H{"reason": m.reason, "message": err.Error()})
			return
		}
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
}
