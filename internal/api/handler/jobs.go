package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillerhq/skiller/internal/service"
)

// JobsHandler serves the primary analysis endpoint.
type JobsHandler struct {
	pipeline *service.Pipeline
}

// NewJobsHandler creates a jobs handler.
func NewJobsHandler(pipeline *service.Pipeline) *JobsHandler {
	return &JobsHandler{pipeline: pipeline}
}

// Analyze handles GET /api/v1/jobs?query=...&location=...&job_level=...
// The outcome maps to 200 when ready, 202 while extraction is still in
// flight (clients poll again), and an error status otherwise.
func (h *JobsHandler) Analyze(c *gin.Context) {
	raw := service.RawQuery{
		Text:     c.Query("query"),
		Location: c.Query("location"),
		JobLevel: c.Query("job_level"),
	}

	outcome := h.pipeline.Analyze(c.Request.Context(), raw)
	writeOutcome(c, outcome)
}

// writeOutcome maps a pipeline outcome to an HTTP response.
func writeOutcome(c *gin.Context, outcome service.Outcome) {
	switch outcome.State {
	case service.StateReady:
		c.JSON(http.StatusOK, outcome.Result)
	case service.StateProcessing:
		c.JSON(http.StatusAccepted, gin.H{
			"state":       outcome.State,
			"outstanding": outcome.Outstanding,
			"request_id":  outcome.RequestID,
		})
	default:
		c.JSON(statusForFailure(outcome.Failure), gin.H{
			"state": service.StateFailed,
			"error": outcome.Failure,
		})
	}
}

func statusForFailure(failure *service.Failure) int {
	if failure == nil {
		return http.StatusInternalServerError
	}
	switch failure.Kind {
	case service.FailInvalidQuery, service.FailNoJobsFound, service.FailNoSkillsExtracted:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
