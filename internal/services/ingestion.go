package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/driftfly/driftfly-backend/internal/consensus"
	"github.com/driftfly/driftfly-backend/internal/domain"
	pkgerrors "github.com/driftfly/driftfly-backend/internal/pkg/errors"
	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
	"github.com/driftfly/driftfly-backend/internal/repos"
)

// IngestionError reports a failed catalog write with its underlying
// cause. The whole write is rolled back, so retrying the triggering
// approval is always safe.
type IngestionError struct {
	Slug string
	Err  error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest %q: %v", e.Slug, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// Attribution is the citation metadata for one contributing source,
// persisted alongside the pattern for display.
type Attribution struct {
	URL      string
	Kind     string
	Title    string
	Creator  string
	Platform string
}

// IngestionService commits one consensus pattern into the production
// catalog: pattern upsert, ordered material links, resources and source
// attributions, all inside one transaction.
type IngestionService interface {
	// Ingest writes the consensus. When tx is nil a transaction is
	// opened internally; otherwise the caller owns the atomic unit.
	Ingest(ctx context.Context, tx *gorm.DB, cons *consensus.Pattern, attributions []Attribution) (*domain.Pattern, error)
}

type ingestionService struct {
	db                  *gorm.DB
	log                 *logger.Logger
	patternRepo         repos.PatternRepo
	patternMaterialRepo repos.PatternMaterialRepo
	patternResourceRepo repos.PatternResourceRepo
	patternSourceRepo   repos.PatternSourceRepo
	materialResolver    MaterialResolver
}

func NewIngestionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	patternRepo repos.PatternRepo,
	patternMaterialRepo repos.PatternMaterialRepo,
	patternResourceRepo repos.PatternResourceRepo,
	patternSourceRepo repos.PatternSourceRepo,
	materialResolver MaterialResolver,
) IngestionService {
	return &ingestionService{
		db:                  db,
		log:                 baseLog.With("service", "IngestionService"),
		patternRepo:         patternRepo,
		patternMaterialRepo: patternMaterialRepo,
		patternResourceRepo: patternResourceRepo,
		patternSourceRepo:   patternSourceRepo,
		materialResolver:    materialResolver,
	}
}

func (s *ingestionService) Ingest(ctx context.Context, tx *gorm.DB, cons *consensus.Pattern, attributions []Attribution) (*domain.Pattern, error) {
	if cons == nil || strings.TrimSpace(cons.Name) == "" || cons.Slug == "" {
		return nil, &IngestionError{Slug: slugOf(cons), Err: fmt.Errorf("consensus pattern name: %w", pkgerrors.ErrInvalidArgument)}
	}

	var pattern *domain.Pattern
	run := func(t *gorm.DB) error {
		p, err := s.ingestInTx(ctx, t, cons, attributions)
		if err != nil {
			return err
		}
		pattern = p
		return nil
	}

	var err error
	if tx != nil {
		err = run(tx)
	} else {
		err = s.db.WithContext(ctx).Transaction(run)
	}
	if err != nil {
		var ingErr *IngestionError
		if !errors.As(err, &ingErr) {
			err = &IngestionError{Slug: cons.Slug, Err: err}
		}
		s.log.Error("ingestion failed", "slug", cons.Slug, "error", err)
		return nil, err
	}

	s.log.Info("ingested consensus pattern",
		"pattern_id", pattern.ID,
		"slug", pattern.Slug,
		"materials", len(cons.Materials),
		"sources_used", cons.SourcesUsed,
	)
	return pattern, nil
}

func (s *ingestionService) ingestInTx(ctx context.Context, tx *gorm.DB, cons *consensus.Pattern, attributions []Attribution) (*domain.Pattern, error) {
	pattern, err := s.upsertPattern(ctx, tx, cons)
	if err != nil {
		return nil, err
	}
	if err := s.writeMaterialLinks(ctx, tx, pattern.ID, cons.Materials); err != nil {
		return nil, err
	}
	if err := s.writeResources(ctx, tx, pattern.ID, cons.Resources); err != nil {
		return nil, err
	}
	if err := s.writeAttributions(ctx, tx, pattern.ID, attributions); err != nil {
		return nil, err
	}
	return pattern, nil
}

// upsertPattern replaces the pattern's scalar fields wholesale when the
// slug already belongs to this conceptual pattern, and disambiguates
// with a uniqueness token when the slug is taken by an unrelated one.
func (s *ingestionService) upsertPattern(ctx context.Context, tx *gorm.DB, cons *consensus.Pattern) (*domain.Pattern, error) {
	existing, err := s.patternRepo.GetBySlug(ctx, tx, cons.Slug)
	if err != nil {
		return nil, fmt.Errorf("lookup pattern by slug: %w", err)
	}

	steps, err := marshalJSON(cons.Steps)
	if err != nil {
		return nil, err
	}
	variations, err := marshalJSON(cons.Variations)
	if err != nil {
		return nil, err
	}

	if existing != nil && consensus.Slugify(existing.Name) == cons.Slug {
		existing.Name = cons.Name
		existing.Category = cons.Category
		existing.Difficulty = cons.Difficulty
		existing.WaterType = cons.WaterType
		existing.Description = cons.Description
		existing.Steps = steps
		existing.Variations = variations
		existing.SourcesUsed = cons.SourcesUsed
		if err := s.patternRepo.Update(ctx, tx, existing); err != nil {
			return nil, fmt.Errorf("update pattern: %w", err)
		}
		return existing, nil
	}

	slug := cons.Slug
	if existing != nil {
		slug = fmt.Sprintf("%s-%s", cons.Slug, uuid.NewString()[:8])
		s.log.Warn("slug taken by unrelated pattern, suffixing", "slug", cons.Slug, "new_slug", slug)
	}

	pattern := &domain.Pattern{
		ID:          uuid.New(),
		Name:        cons.Name,
		Slug:        slug,
		Category:    cons.Category,
		Difficulty:  cons.Difficulty,
		WaterType:   cons.WaterType,
		Description: cons.Description,
		Steps:       steps,
		Variations:  variations,
		SourcesUsed: cons.SourcesUsed,
	}
	if err := s.patternRepo.Create(ctx, tx, pattern); err != nil {
		return nil, fmt.Errorf("create pattern: %w", err)
	}
	return pattern, nil
}

func (s *ingestionService) writeMaterialLinks(ctx context.Context, tx *gorm.DB, patternID uuid.UUID, materials []consensus.Material) error {
	if err := s.patternMaterialRepo.FullDeleteByPatternIDs(ctx, tx, []uuid.UUID{patternID}); err != nil {
		return fmt.Errorf("clear material links: %w", err)
	}
	links := make([]*domain.PatternMaterial, 0, len(materials))
	for i, m := range materials {
		mat, err := s.materialResolver.Resolve(ctx, tx, m.Name, m.Type)
		if err != nil {
			return fmt.Errorf("resolve material %q: %w", m.Name, err)
		}
		links = append(links, &domain.PatternMaterial{
			ID:         uuid.New(),
			PatternID:  patternID,
			MaterialID: mat.ID,
			Position:   i + 1,
			Required:   m.Required,
			Color:      m.Color,
			Size:       m.Size,
		})
	}
	if _, err := s.patternMaterialRepo.Create(ctx, tx, links); err != nil {
		return fmt.Errorf("write material links: %w", err)
	}
	return nil
}

func (s *ingestionService) writeResources(ctx context.Context, tx *gorm.DB, patternID uuid.UUID, resources []domain.ExtractedResource) error {
	if err := s.patternResourceRepo.FullDeleteByPatternIDs(ctx, tx, []uuid.UUID{patternID}); err != nil {
		return fmt.Errorf("clear resources: %w", err)
	}
	rows := make([]*domain.PatternResource, 0, len(resources))
	for _, res := range resources {
		rows = append(rows, &domain.PatternResource{
			ID:        uuid.New(),
			PatternID: patternID,
			URL:       res.URL,
			Kind:      res.Kind,
			Title:     res.Title,
		})
	}
	if _, err := s.patternResourceRepo.Create(ctx, tx, rows); err != nil {
		return fmt.Errorf("write resources: %w", err)
	}
	return nil
}

func (s *ingestionService) writeAttributions(ctx context.Context, tx *gorm.DB, patternID uuid.UUID, attributions []Attribution) error {
	if err := s.patternSourceRepo.FullDeleteByPatternIDs(ctx, tx, []uuid.UUID{patternID}); err != nil {
		return fmt.Errorf("clear attributions: %w", err)
	}
	rows := make([]*domain.PatternSource, 0, len(attributions))
	for _, a := range attributions {
		rows = append(rows, &domain.PatternSource{
			ID:        uuid.New(),
			PatternID: patternID,
			URL:       a.URL,
			Kind:      a.Kind,
			Title:     a.Title,
			Creator:   a.Creator,
			Platform:  a.Platform,
		})
	}
	if _, err := s.patternSourceRepo.Create(ctx, tx, rows); err != nil {
		return fmt.Errorf("write attributions: %w", err)
	}
	return nil
}

func marshalJSON(v interface{}) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func slugOf(cons *consensus.Pattern) string {
	if cons == nil {
		return ""
	}
	return cons.Slug
}
