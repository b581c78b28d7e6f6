package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/driftfly/driftfly-backend/internal/http/response"
	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
	"github.com/driftfly/driftfly-backend/internal/services"
)

// PipelineHandler serves the read-only pipeline health snapshot.
type PipelineHandler struct {
	log   *logger.Logger
	stats services.StatsService
}

func NewPipelineHandler(log *logger.Logger, stats services.StatsService) *PipelineHandler {
	return &PipelineHandler{
		log:   log.With("handler", "PipelineHandler"),
		stats: stats,
	}
}

// GET /api/pipeline/stats
func (h *PipelineHandler) GetStats(c *gin.Context) {
	snapshot, err := h.stats.PipelineStats(c.Request.Context())
	if err != nil {
		h.log.Error("pipeline stats failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "stats_failed", err)
		return
	}
	response.RespondOK(c, snapshot)
}
