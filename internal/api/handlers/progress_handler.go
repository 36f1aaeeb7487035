package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leplonghi/horamed-sub006/internal/service"
)

type ProgressHandler struct {
	service *service.ProgressService
}

func NewProgressHandler(service *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

func (h *ProgressHandler) Get(c *gin.Context) {
	userID, ok := uuidParam(c, "user_id")
	if !ok {
		return
	}

	snap, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "failed to compute progress", err)
		return
	}

	c.JSON(http.StatusOK, snap)
}
