package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/driftfly/driftfly-backend/internal/locks"
	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
	"github.com/driftfly/driftfly-backend/internal/services"
)

type Services struct {
	MaterialResolver services.MaterialResolver
	Ingestion        services.IngestionService
	Review           services.ReviewService
	Stats            services.StatsService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) (Services, error) {
	slugLock, err := wireSlugLock(log, cfg)
	if err != nil {
		return Services{}, err
	}

	materialResolver := services.NewMaterialResolver(db, log, reposet.Material)
	ingestion := services.NewIngestionService(
		db,
		log,
		reposet.Pattern,
		reposet.PatternMaterial,
		reposet.PatternResource,
		reposet.PatternSource,
		materialResolver,
	)
	review := services.NewReviewService(
		db,
		log,
		reposet.StagedExtraction,
		reposet.StagedSource,
		reposet.Pattern,
		ingestion,
		slugLock,
	)
	stats := services.NewStatsService(db, log, reposet.StagedSource, reposet.StagedExtraction, cfg.ConfidenceThreshold)

	return Services{
		MaterialResolver: materialResolver,
		Ingestion:        ingestion,
		Review:           review,
		Stats:            stats,
	}, nil
}

func wireSlugLock(log *logger.Logger, cfg Config) (locks.SlugLocker, error) {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, using in-process slug lock")
		return locks.NewKeyedMutex(), nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return locks.NewRedisSlugLock(log, rdb)
}
