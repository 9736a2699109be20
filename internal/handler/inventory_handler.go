package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zoowprime/South-Los-Angeles-RP/internal/catalog"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/inventory"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/middleware"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/models"
)

// Backpack is the slice of the inventory service the handler needs.
type Backpack interface {
	Snapshot(userID string) *models.InventoryRecord
	TotalWeight(userID string) float64
	AddItem(ctx context.Context, userID, itemID string, quantity int) (*inventory.AddResult, error)
	RemoveItem(ctx context.Context, userID, itemID string, quantity int) (*inventory.RemoveResult, error)
	Consume(ctx context.Context, userID, itemID string) (*models.InventoryRecord, error)
	ChangeHungerThirst(userID string, hungerDelta, thirstDelta float64) *models.InventoryRecord
	Clear(userID string) *models.InventoryRecord
}

type InventoryHandler struct {
	svc Backpack
}

func NewInventoryHandler(svc Backpack) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

func (h *InventoryHandler) GetInventory(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Snapshot(c.Param("userId")))
}

func (h *InventoryHandler) GetWeight(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"weight": h.svc.TotalWeight(c.Param("userId"))})
}

type itemRequest struct {
	Item     string `json:"item" validate:"required"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1"`
}

// resolveItem accepts a catalog id, a display label or a close enough
// fragment of either, the way staff type item names in chat.
func resolveItem(c *gin.Context, input string) (string, bool) {
	id, ok := catalog.ResolveID(input)
	if !ok {
		respondError(c, models.ErrUnknownItem)
		return "", false
	}
	return id, true
}

func (h *InventoryHandler) AddItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := middleware.ValidateRequest(req); errs != nil {
		middleware.RespondWithValidationError(c, errs)
		return
	}
	itemID, ok := resolveItem(c, req.Item)
	if !ok {
		return
	}

	res, err := h.svc.AddItem(c.Request.Context(), c.Param("userId"), itemID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *InventoryHandler) RemoveItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := middleware.ValidateRequest(req); errs != nil {
		middleware.RespondWithValidationError(c, errs)
		return
	}
	itemID, ok := resolveItem(c, req.Item)
	if !ok {
		return
	}

	res, err := h.svc.RemoveItem(c.Request.Context(), c.Param("userId"), itemID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type consumeRequest struct {
	Item string `json:"item" validate:"required"`
}

func (h *InventoryHandler) Consume(c *gin.Context) {
	var req consumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := middleware.ValidateRequest(req); errs != nil {
		middleware.RespondWithValidationError(c, errs)
		return
	}
	itemID, ok := resolveItem(c, req.Item)
	if !ok {
		return
	}

	rec, err := h.svc.Consume(c.Request.Context(), c.Param("userId"), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type statsRequest struct {
	HungerDelta float64 `json:"hungerDelta"`
	ThirstDelta float64 `json:"thirstDelta"`
}

func (h *InventoryHandler) ChangeStats(c *gin.Context) {
	var req statsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec := h.svc.ChangeHungerThirst(c.Param("userId"), req.HungerDelta, req.ThirstDelta)
	c.JSON(http.StatusOK, rec)
}

func (h *InventoryHandler) Clear(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Clear(c.Param("userId")))
}
