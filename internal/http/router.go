package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/driftfly/driftfly-backend/internal/http/handlers"
	httpMW "github.com/driftfly/driftfly-backend/internal/http/middleware"
	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	ExtractionHandler *httpH.ExtractionHandler
	PipelineHandler   *httpH.PipelineHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.ExtractionHandler != nil {
			api.GET("/extractions", cfg.ExtractionHandler.ListExtractions)
			api.GET("/extractions/:id", cfg.ExtractionHandler.GetExtraction)
			api.POST("/extractions/:id/approve", cfg.ExtractionHandler.Approve)
			api.POST("/extractions/:id/reject", cfg.ExtractionHandler.Reject)
			api.POST("/extractions/:id/approve-and-ingest", cfg.ExtractionHandler.ApproveAndIngest)
		}

		if cfg.PipelineHandler != nil {
			api.GET("/pipeline/stats", cfg.PipelineHandler.GetStats)
		}
	}

	return r
}
