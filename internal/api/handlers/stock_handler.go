package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leplonghi/horamed-sub006/internal/service"
)

type StockHandler struct {
	service *service.StockService
}

func NewStockHandler(service *service.StockService) *StockHandler {
	return &StockHandler{service: service}
}

type setUnitsRequest struct {
	UnitsLeft *int `json:"units_left" binding:"required"`
}

func (h *StockHandler) Decrement(c *gin.Context) {
	itemID, ok := uuidParam(c, "item_id")
	if !ok {
		return
	}

	result, err := h.service.Decrement(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, "failed to decrement stock", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *StockHandler) Recalculate(c *gin.Context) {
	itemID, ok := uuidParam(c, "item_id")
	if !ok {
		return
	}

	result, err := h.service.Recalculate(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, "failed to recalculate projection", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *StockHandler) SetUnits(c *gin.Context) {
	itemID, ok := uuidParam(c, "item_id")
	if !ok {
		return
	}

	var req setUnitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result, err := h.service.SetUnits(c.Request.Context(), itemID, *req.UnitsLeft)
	if err != nil {
		respondError(c, "failed to update stock", err)
		return
	}

	c.JSON(http.StatusOK, result)
}
