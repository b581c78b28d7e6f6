package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/driftfly/driftfly-backend/internal/domain"
	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
)

type StagedExtractionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, extractions []*domain.StagedExtraction) ([]*domain.StagedExtraction, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.StagedExtraction, error)
	GetBySourceIDs(ctx context.Context, tx *gorm.DB, sourceIDs []uuid.UUID) ([]*domain.StagedExtraction, error)
	// GetApprovedBySlug returns every approved extraction in one
	// consensus group, oldest first.
	GetApprovedBySlug(ctx context.Context, tx *gorm.DB, slug string) ([]*domain.StagedExtraction, error)
	ListByStatus(ctx context.Context, tx *gorm.DB, status string, limit, offset int) ([]*domain.StagedExtraction, error)
	UpdateReview(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string, notes *string, reviewedAt time.Time) error
	MarkIngestedByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	CountByStatus(ctx context.Context, tx *gorm.DB) (map[string]int64, error)
	// CountByConfidence splits extractions into high/low buckets at the
	// given threshold (confidence >= threshold is high).
	CountByConfidence(ctx context.Context, tx *gorm.DB, threshold float64) (high int64, low int64, err error)
}

type stagedExtractionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStagedExtractionRepo(db *gorm.DB, baseLog *logger.Logger) StagedExtractionRepo {
	return &stagedExtractionRepo{db: db, log: baseLog.With("repo", "StagedExtractionRepo")}
}

func (r *stagedExtractionRepo) Create(ctx context.Context, tx *gorm.DB, extractions []*domain.StagedExtraction) ([]*domain.StagedExtraction, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(extractions) == 0 {
		return []*domain.StagedExtraction{}, nil
	}
	if err := t.WithContext(ctx).Create(&extractions).Error; err != nil {
		return nil, err
	}
	return extractions, nil
}

func (r *stagedExtractionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.StagedExtraction, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var results []*domain.StagedExtraction
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

func (r *stagedExtractionRepo) GetBySourceIDs(ctx context.Context, tx *gorm.DB, sourceIDs []uuid.UUID) ([]*domain.StagedExtraction, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var results []*domain.StagedExtraction
	if len(sourceIDs) == 0 {
		return results, nil
	}
	if err := t.WithContext(ctx).
		Where("source_id IN ?", sourceIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *stagedExtractionRepo) GetApprovedBySlug(ctx context.Context, tx *gorm.DB, slug string) ([]*domain.StagedExtraction, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var results []*domain.StagedExtraction
	if err := t.WithContext(ctx).
		Where("normalized_slug = ? AND status = ?", slug, domain.ExtractionStatusApproved).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *stagedExtractionRepo) ListByStatus(ctx context.Context, tx *gorm.DB, status string, limit, offset int) ([]*domain.StagedExtraction, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(ctx).Model(&domain.StagedExtraction{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var results []*domain.StagedExtraction
	if err := q.Order("created_at ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *stagedExtractionRepo) UpdateReview(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string, notes *string, reviewedAt time.Time) error {
	t := tx
	if t == nil {
		t = r.db
	}
	updates := map[string]interface{}{
		"status":      status,
		"reviewed_at": reviewedAt,
	}
	if notes != nil {
		updates["review_notes"] = *notes
	}
	return t.WithContext(ctx).
		Model(&domain.StagedExtraction{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *stagedExtractionRepo) MarkIngestedByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Model(&domain.StagedExtraction{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"status": domain.ExtractionStatusIngested}).Error
}

func (r *stagedExtractionRepo) CountByStatus(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var rows []struct {
		Status string
		Count  int64
	}
	if err := t.WithContext(ctx).
		Model(&domain.StagedExtraction{}).
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

func (r *stagedExtractionRepo) CountByConfidence(ctx context.Context, tx *gorm.DB, threshold float64) (int64, int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var row struct {
		High int64
		Low  int64
	}
	if err := t.WithContext(ctx).
		Model(&domain.StagedExtraction{}).
		Select(
			"COALESCE(SUM(CASE WHEN confidence >= ? THEN 1 ELSE 0 END), 0) AS high, COALESCE(SUM(CASE WHEN confidence < ? THEN 1 ELSE 0 END), 0) AS low",
			threshold, threshold,
		).
		Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return row.High, row.Low, nil
}
