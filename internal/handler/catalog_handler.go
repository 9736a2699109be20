package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zoowprime/South-Los-Angeles-RP/internal/catalog"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/models"
)

type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

func (h *CatalogHandler) ListItems(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": catalog.All()})
}

// ResolveItem looks an item up by id, label or fragment: ?q=burger.
func (h *CatalogHandler) ResolveItem(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing q parameter"})
		return
	}
	item, ok := catalog.Resolve(q)
	if !ok {
		respondError(c, models.ErrUnknownItem)
		return
	}
	c.JSON(http.StatusOK, item)
}
