package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/driftfly/driftfly-backend/internal/domain"
	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
)

type PatternRepo interface {
	Create(ctx context.Context, tx *gorm.DB, pattern *domain.Pattern) error
	Update(ctx context.Context, tx *gorm.DB, pattern *domain.Pattern) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Pattern, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*domain.Pattern, error)
}

type patternRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPatternRepo(db *gorm.DB, baseLog *logger.Logger) PatternRepo {
	return &patternRepo{db: db, log: baseLog.With("repo", "PatternRepo")}
}

func (r *patternRepo) Create(ctx context.Context, tx *gorm.DB, pattern *domain.Pattern) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).Create(pattern).Error
}

func (r *patternRepo) Update(ctx context.Context, tx *gorm.DB, pattern *domain.Pattern) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).Save(pattern).Error
}

func (r *patternRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Pattern, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var results []*domain.Pattern
	if len(ids) == 0 {
		return results, nil
	}
	if err := t.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *patternRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*domain.Pattern, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var result domain.Pattern
	err := t.WithContext(ctx).
		Where("slug = ?", slug).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
