package app

import (
	httpH "github.com/driftfly/driftfly-backend/internal/http/handlers"
	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
)

type Handlers struct {
	Extraction *httpH.ExtractionHandler
	Pipeline   *httpH.PipelineHandler
	Health     *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	return Handlers{
		Extraction: httpH.NewExtractionHandler(log, serviceset.Review),
		Pipeline:   httpH.NewPipelineHandler(log, serviceset.Stats),
		Health:     httpH.NewHealthHandler(),
	}
}
