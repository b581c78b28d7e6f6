package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/driftfly/driftfly-backend/internal/http"
	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
)

func wireRouter(log *logger.Logger, handlerset Handlers) *gin.Engine {
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Log:               log,
		ExtractionHandler: handlerset.Extraction,
		PipelineHandler:   handlerset.Pipeline,
		HealthHandler:     handlerset.Health,
	})
}
