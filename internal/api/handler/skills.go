package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/skillerhq/skiller/internal/service"
)

// SkillsHandler serves the secondary skills→jobs query path.
type SkillsHandler struct {
	pipeline *service.Pipeline
}

// NewSkillsHandler creates a skills handler.
func NewSkillsHandler(pipeline *service.Pipeline) *SkillsHandler {
	return &SkillsHandler{pipeline: pipeline}
}

// Analyze handles GET /api/v1/skills?name=a&name=b&location=...
func (h *SkillsHandler) Analyze(c *gin.Context) {
	names := c.QueryArray("name")
	outcome := h.pipeline.AnalyzeBySkills(
		c.Request.Context(),
		names,
		c.Query("location"),
		c.Query("job_level"),
	)
	writeOutcome(c, outcome)
}
