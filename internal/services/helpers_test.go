package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/driftfly/driftfly-backend/internal/domain"
	"github.com/driftfly/driftfly-backend/internal/locks"
	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
	"github.com/driftfly/driftfly-backend/internal/repos"
	"github.com/driftfly/driftfly-backend/internal/repos/testutil"
)

// testEnv wires the full service stack over an in-memory database, the
// same way internal/app does for production.
type testEnv struct {
	db  *gorm.DB
	log *logger.Logger

	sourceRepo          repos.StagedSourceRepo
	extractionRepo      repos.StagedExtractionRepo
	patternRepo         repos.PatternRepo
	materialRepo        repos.MaterialRepo
	patternMaterialRepo repos.PatternMaterialRepo
	patternResourceRepo repos.PatternResourceRepo
	patternSourceRepo   repos.PatternSourceRepo

	materials MaterialResolver
	ingestion IngestionService
	review    ReviewService
	stats     StatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.DB(t)
	log := testutil.Logger(t)

	e := &testEnv{
		db:                  db,
		log:                 log,
		sourceRepo:          repos.NewStagedSourceRepo(db, log),
		extractionRepo:      repos.NewStagedExtractionRepo(db, log),
		patternRepo:         repos.NewPatternRepo(db, log),
		materialRepo:        repos.NewMaterialRepo(db, log),
		patternMaterialRepo: repos.NewPatternMaterialRepo(db, log),
		patternResourceRepo: repos.NewPatternResourceRepo(db, log),
		patternSourceRepo:   repos.NewPatternSourceRepo(db, log),
	}
	e.materials = NewMaterialResolver(db, log, e.materialRepo)
	e.ingestion = NewIngestionService(db, log, e.patternRepo, e.patternMaterialRepo, e.patternResourceRepo, e.patternSourceRepo, e.materials)
	e.review = NewReviewService(db, log, e.extractionRepo, e.sourceRepo, e.patternRepo, e.ingestion, locks.NewKeyedMutex())
	e.stats = NewStatsService(db, log, e.sourceRepo, e.extractionRepo, HighConfidenceThreshold)
	return e
}

func (e *testEnv) seedSource(t *testing.T, url string) *domain.StagedSource {
	t.Helper()
	src := &domain.StagedSource{
		ID:       uuid.New(),
		Kind:     "video",
		URL:      url,
		Title:    "Tying tutorial",
		Creator:  "Fly Shop",
		Platform: "youtube",
		Status:   domain.SourceStatusNormalized,
	}
	if _, err := e.sourceRepo.Create(context.Background(), nil, []*domain.StagedSource{src}); err != nil {
		t.Fatalf("seed source: %v", err)
	}
	return src
}

func (e *testEnv) seedExtraction(t *testing.T, src *domain.StagedSource, p domain.ExtractedPattern, slug, status string, confidence float64, createdAt time.Time) *domain.StagedExtraction {
	t.Helper()
	ext := &domain.StagedExtraction{
		ID:             uuid.New(),
		SourceID:       src.ID,
		PatternName:    p.PatternName,
		NormalizedSlug: slug,
		Confidence:     confidence,
		Status:         status,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	if err := ext.SetPattern(p); err != nil {
		t.Fatalf("encode payload: %v", err)
	}
	if _, err := e.extractionRepo.Create(context.Background(), nil, []*domain.StagedExtraction{ext}); err != nil {
		t.Fatalf("seed extraction: %v", err)
	}
	return ext
}

func woollyBugger(materials ...domain.ExtractedMaterial) domain.ExtractedPattern {
	return domain.ExtractedPattern{
		PatternName: "Woolly Bugger",
		Category:    "streamer",
		Difficulty:  "beginner",
		WaterType:   "freshwater",
		Description: "A classic marabou streamer.",
		Materials:   materials,
		Steps: []domain.ExtractedStep{
			{Position: 1, Title: "Start thread", Description: "Attach thread behind the eye."},
			{Position: 2, Title: "Tie in tail", Description: "Marabou, one shank length."},
		},
		Resources: []domain.ExtractedResource{
			{URL: "https://example.com/woolly-bugger", Kind: "video", Title: "Tying the Woolly Bugger"},
		},
	}
}

func standardMaterials() []domain.ExtractedMaterial {
	return []domain.ExtractedMaterial{
		{Type: "hook", Name: "Streamer Hook", Size: "6-10", Required: true},
		{Type: "thread", Name: "Black Thread", Required: true},
		{Type: "tail", Name: "Marabou", Color: "olive", Required: true},
	}
}
