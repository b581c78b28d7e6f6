package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/driftfly/driftfly-backend/internal/domain"
	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
)

type MaterialRepo interface {
	// Create inserts one material. A unique-constraint violation on the
	// case-insensitive name index surfaces as gorm.ErrDuplicatedKey; the
	// caller treats that as "someone else just created it".
	Create(ctx context.Context, tx *gorm.DB, material *domain.Material) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Material, error)
	GetByNameFold(ctx context.Context, tx *gorm.DB, name string) (*domain.Material, error)
}

type materialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	return &materialRepo{db: db, log: baseLog.With("repo", "MaterialRepo")}
}

func (r *materialRepo) Create(ctx context.Context, tx *gorm.DB, material *domain.Material) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).Create(material).Error
}

func (r *materialRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Material, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var results []*domain.Material
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

func (r *materialRepo) GetByNameFold(ctx context.Context, tx *gorm.DB, name string) (*domain.Material, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var result domain.Material
	err := t.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
