package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/leplonghi/horamed-sub006/internal/service"
)

type DoseHandler struct {
	service *service.DoseService
}

func NewDoseHandler(service *service.DoseService) *DoseHandler {
	return &DoseHandler{service: service}
}

type takeDoseRequest struct {
	TakenAt *time.Time `json:"taken_at"`
}

func (h *DoseHandler) Take(c *gin.Context) {
	userID, ok := uuidParam(c, "user_id")
	if !ok {
		return
	}
	doseID, ok := uuidParam(c, "dose_id")
	if !ok {
		return
	}

	// The body is optional; taken_at defaults to now.
	var req takeDoseRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result, err := h.service.Take(c.Request.Context(), userID, doseID, req.TakenAt)
	if err != nil {
		respondError(c, "failed to take dose", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *DoseHandler) Skip(c *gin.Context) {
	userID, ok := uuidParam(c, "user_id")
	if !ok {
		return
	}
	doseID, ok := uuidParam(c, "dose_id")
	if !ok {
		return
	}

	result, err := h.service.Skip(c.Request.Context(), userID, doseID)
	if err != nil {
		respondError(c, "failed to skip dose", err)
		return
	}

	c.JSON(http.StatusOK, result)
}
