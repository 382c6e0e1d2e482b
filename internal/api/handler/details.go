package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skillerhq/skiller/internal/domain"
	"github.com/skillerhq/skiller/internal/service"
)

// DetailsHandler serves single-job detail lookups.
type DetailsHandler struct {
	details *service.DetailService
}

// NewDetailsHandler creates a details handler.
func NewDetailsHandler(details *service.DetailService) *DetailsHandler {
	return &DetailsHandler{details: details}
}

// Get handles GET /api/v1/jobs/:id
func (h *DetailsHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job id must be a number"})
		return
	}

	job, err := h.details.JobDetail(c.Request.Context(), uint(id))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, job)
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found, request it through a query first"})
	case errors.Is(err, service.ErrPartialJob):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "job lacks full information"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job: " + err.Error()})
	}
}
