package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillerhq/skiller/internal/logger"
	"github.com/skillerhq/skiller/internal/service"
)

// LocationsHandler lists the distinct locations of all stored jobs.
type LocationsHandler struct {
	details *service.DetailService
}

// NewLocationsHandler creates a locations handler.
func NewLocationsHandler(details *service.DetailService) *LocationsHandler {
	return &LocationsHandler{details: details}
}

// List handles GET /api/v1/locations.
func (h *LocationsHandler) List(c *gin.Context) {
	locations, err := h.details.Locations(c.Request.Context())
	if err != nil {
		logger.CtxError(c.Request.Context(), "failed to list locations: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list locations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"locations": locations,
		"count":     len(locations),
	})
}
