package app

import (
	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
	"github.com/driftfly/driftfly-backend/internal/services"
	"github.com/driftfly/driftfly-backend/internal/utils"
)

type Config struct {
	HTTPAddr string
	// RedisAddr switches the per-slug ingestion lock to redis when set;
	// empty means the in-process keyed mutex.
	RedisAddr           string
	ConfidenceThreshold float64
}

func LoadConfig(log *logger.Logger) Config {
	httpPort := utils.GetEnv("HTTP_PORT", "8080", log)
	redisAddr := utils.GetEnv("REDIS_ADDR", "", log)
	return Config{
		HTTPAddr:            ":" + httpPort,
		RedisAddr:           redisAddr,
		ConfidenceThreshold: services.HighConfidenceThreshold,
	}
}
