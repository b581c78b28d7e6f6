package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
	"github.com/driftfly/driftfly-backend/internal/repos"
)

// HighConfidenceThreshold splits extractions into the "high" and "low"
// dashboard buckets. Passed into the snapshot query rather than
// hard-coded there so boundary values are testable.
const HighConfidenceThreshold = 0.7

// PipelineStats is a read-only health snapshot for dashboards. Counts
// are derived from the persisted status fields on every request;
// nothing maintains running counters.
type PipelineStats struct {
	SourcesByStatus     map[string]int64 `json:"sources_by_status"`
	ExtractionsByStatus map[string]int64 `json:"extractions_by_status"`
	HighConfidence      int64            `json:"high_confidence_extractions"`
	LowConfidence       int64            `json:"low_confidence_extractions"`
	ConfidenceThreshold float64          `json:"confidence_threshold"`
}

type StatsService interface {
	PipelineStats(ctx context.Context) (*PipelineStats, error)
}

type statsService struct {
	db             *gorm.DB
	log            *logger.Logger
	sourceRepo     repos.StagedSourceRepo
	extractionRepo repos.StagedExtractionRepo
	threshold      float64
}

func NewStatsService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sourceRepo repos.StagedSourceRepo,
	extractionRepo repos.StagedExtractionRepo,
	threshold float64,
) StatsService {
	return &statsService{
		db:             db,
		log:            baseLog.With("service", "StatsService"),
		sourceRepo:     sourceRepo,
		extractionRepo: extractionRepo,
		threshold:      threshold,
	}
}

func (s *statsService) PipelineStats(ctx context.Context) (*PipelineStats, error) {
	sources, err := s.sourceRepo.CountByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}
	extractions, err := s.extractionRepo.CountByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}
	high, low, err := s.extractionRepo.CountByConfidence(ctx, nil, s.threshold)
	if err != nil {
		return nil, err
	}
	return &PipelineStats{
		SourcesByStatus:     sources,
		ExtractionsByStatus: extractions,
		HighConfidence:      high,
		LowConfidence:       low,
		ConfidenceThreshold: s.threshold,
	}, nil
}
