package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/driftfly/driftfly-backend/internal/domain"
	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
)

type StagedSourceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sources []*domain.StagedSource) ([]*domain.StagedSource, error)
	// UpsertByURL inserts the source or, when the URL already exists,
	// refreshes its discovery metadata without duplicating the row.
	UpsertByURL(ctx context.Context, tx *gorm.DB, source *domain.StagedSource) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.StagedSource, error)
	GetByURL(ctx context.Context, tx *gorm.DB, url string) (*domain.StagedSource, error)
	UpdateStatusByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, status string) error
	CountByStatus(ctx context.Context, tx *gorm.DB) (map[string]int64, error)
}

type stagedSourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStagedSourceRepo(db *gorm.DB, baseLog *logger.Logger) StagedSourceRepo {
	return &stagedSourceRepo{db: db, log: baseLog.With("repo", "StagedSourceRepo")}
}

func (r *stagedSourceRepo) Create(ctx context.Context, tx *gorm.DB, sources []*domain.StagedSource) ([]*domain.StagedSource, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(sources) == 0 {
		return []*domain.StagedSource{}, nil
	}
	if err := t.WithContext(ctx).Create(&sources).Error; err != nil {
		return nil, err
	}
	return sources, nil
}

func (r *stagedSourceRepo) UpsertByURL(ctx context.Context, tx *gorm.DB, source *domain.StagedSource) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "url"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"kind",
				"title",
				"creator",
				"platform",
				"search_query",
				"updated_at",
			}),
		}).
		Create(source).Error
}

func (r *stagedSourceRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.StagedSource, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var results []*domain.StagedSource
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

func (r *stagedSourceRepo) GetByURL(ctx context.Context, tx *gorm.DB, url string) (*domain.StagedSource, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var result domain.StagedSource
	err := t.WithContext(ctx).
		Where("url = ?", url).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *stagedSourceRepo) UpdateStatusByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, status string) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Model(&domain.StagedSource{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"status": status}).Error
}

func (r *stagedSourceRepo) CountByStatus(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var rows []struct {
		Status string
		Count  int64
	}
	if err := t.WithContext(ctx).
		Model(&domain.StagedSource{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
