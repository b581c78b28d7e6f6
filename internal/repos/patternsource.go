package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/driftfly/driftfly-backend/internal/domain"
	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
)

type PatternSourceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sources []*domain.PatternSource) ([]*domain.PatternSource, error)
	GetByPatternIDs(ctx context.Context, tx *gorm.DB, patternIDs []uuid.UUID) ([]*domain.PatternSource, error)
	FullDeleteByPatternIDs(ctx context.Context, tx *gorm.DB, patternIDs []uuid.UUID) error
}

type patternSourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPatternSourceRepo(db *gorm.DB, baseLog *logger.Logger) PatternSourceRepo {
	return &patternSourceRepo{db: db, log: baseLog.With("repo", "PatternSourceRepo")}
}

func (r *patternSourceRepo) Create(ctx context.Context, tx *gorm.DB, sources []*domain.PatternSource) ([]*domain.PatternSource, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(sources) == 0 {
		return []*domain.PatternSource{}, nil
	}
	if err := t.WithContext(ctx).Create(&sources).Error; err != nil {
		return nil, err
	}
	return sources, nil
}

func (r *patternSourceRepo) GetByPatternIDs(ctx context.Context, tx *gorm.DB, patternIDs []uuid.UUID) ([]*domain.PatternSource, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var results []*domain.PatternSource
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

func (r *patternSourceRepo) FullDeleteByPatternIDs(ctx context.Context, tx *gorm.DB, patternIDs []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(patternIDs) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Where("pattern_id IN ?", patternIDs).
		Delete(&domain.PatternSource{}).Error
}
