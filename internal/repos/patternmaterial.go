package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/driftfly/driftfly-backend/internal/domain"
	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
)

type PatternMaterialRepo interface {
	Create(ctx context.Context, tx *gorm.DB, links []*domain.PatternMaterial) ([]*domain.PatternMaterial, error)
	GetByPatternIDs(ctx context.Context, tx *gorm.DB, patternIDs []uuid.UUID) ([]*domain.PatternMaterial, error)
	// FullDeleteByPatternIDs hard-deletes the ordered link rows so an
	// ingestion can rewrite the dense 1..N list inside its transaction.
	FullDeleteByPatternIDs(ctx context.Context, tx *gorm.DB, patternIDs []uuid.UUID) error
}

type patternMaterialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPatternMaterialRepo(db *gorm.DB, baseLog *logger.Logger) PatternMaterialRepo {
	return &patternMaterialRepo{db: db, log: baseLog.With("repo", "PatternMaterialRepo")}
}

func (r *patternMaterialRepo) Create(ctx context.Context, tx *gorm.DB, links []*domain.PatternMaterial) ([]*domain.PatternMaterial, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(links) == 0 {
		return []*domain.PatternMaterial{}, nil
	}
	if err := t.WithContext(ctx).Create(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *patternMaterialRepo) GetByPatternIDs(ctx context.Context, tx *gorm.DB, patternIDs []uuid.UUID) ([]*domain.PatternMaterial, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var results []*domain.PatternMaterial
	if len(patternIDs) == 0 {
		return results, nil
	}
	if err := t.WithContext(ctx).
		Where("pattern_id IN ?", patternIDs).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *patternMaterialRepo) FullDeleteByPatternIDs(ctx context.Context, tx *gorm.DB, patternIDs []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(patternIDs) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Where("pattern_id IN ?", patternIDs).
		Delete(&domain.PatternMaterial{}).Error
}
