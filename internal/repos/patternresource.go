package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/driftfly/driftfly-backend/internal/domain"
	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
)

type PatternResourceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, resources []*domain.PatternResource) ([]*domain.PatternResource, error)
	GetByPatternIDs(ctx context.Context, tx *gorm.DB, patternIDs []uuid.UUID) ([]*domain.PatternResource, error)
	FullDeleteByPatternIDs(ctx context.Context, tx *gorm.DB, patternIDs []uuid.UUID) error
}

type patternResourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPatternResourceRepo(db *gorm.DB, baseLog *logger.Logger) PatternResourceRepo {
	return &patternResourceRepo{db: db, log: baseLog.With("repo", "PatternResourceRepo")}
}

func (r *patternResourceRepo) Create(ctx context.Context, tx *gorm.DB, resources []*domain.PatternResource) ([]*domain.PatternResource, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(resources) == 0 {
		return []*domain.PatternResource{}, nil
	}
	if err := t.WithContext(ctx).Create(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *patternResourceRepo) GetByPatternIDs(ctx context.Context, tx *gorm.DB, patternIDs []uuid.UUID) ([]*domain.PatternResource, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var results []*domain.PatternResource
	if len(patternIDs) == 0 {
		return results, nil
	}
	if err := t.WithContext(ctx).
		Where("pattern_id IN ?", patternIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *patternResourceRepo) FullDeleteByPatternIDs(ctx context.Context, tx *gorm.DB, patternIDs []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(patternIDs) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Where("pattern_id IN ?", patternIDs).
		Delete(&domain.PatternResource{}).Error
}
