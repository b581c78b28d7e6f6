package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/driftfly/driftfly-backend/internal/consensus"
	"github.com/driftfly/driftfly-backend/internal/domain"
	"github.com/driftfly/driftfly-backend/internal/locks"
	pkgerrors "github.com/driftfly/driftfly-backend/internal/pkg/errors"
	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
	"github.com/driftfly/driftfly-backend/internal/platform/apierr"
	"github.com/driftfly/driftfly-backend/internal/repos"
)

// IngestResult is what ApproveAndIngest reports back to the reviewer.
type IngestResult struct {
	PatternID   uuid.UUID `json:"pattern_id"`
	PatternName string    `json:"pattern_name"`
	Slug        string    `json:"slug"`
	SourcesUsed int       `json:"sources_used"`
}

// ReviewService is the human-facing gate over staged extractions:
// extracted -> normalized -> (approved | rejected) -> ingested.
// Rejected and ingested are terminal. Rejection removes an extraction
// from all future consensus builds but never deletes the row.
type ReviewService interface {
	Approve(ctx context.Context, extractionID uuid.UUID, notes *string) error
	Reject(ctx context.Context, extractionID uuid.UUID, notes *string) error
	// ApproveAndIngest approves the extraction, gathers every approved
	// sibling of its slug, builds consensus and commits the catalog
	// write. All contributing extractions flip to ingested atomically
	// with the write.
	ApproveAndIngest(ctx context.Context, extractionID uuid.UUID, notes *string) (*IngestResult, error)
	GetExtraction(ctx context.Context, extractionID uuid.UUID) (*domain.StagedExtraction, error)
	ListExtractions(ctx context.Context, status string, limit, offset int) ([]*domain.StagedExtraction, error)
}

type reviewService struct {
	db             *gorm.DB
	log            *logger.Logger
	extractionRepo repos.StagedExtractionRepo
	sourceRepo     repos.StagedSourceRepo
	patternRepo    repos.PatternRepo
	ingestion      IngestionService
	slugLock       locks.SlugLocker
}

func NewReviewService(
	db *gorm.DB,
	baseLog *logger.Logger,
	extractionRepo repos.StagedExtractionRepo,
	sourceRepo repos.StagedSourceRepo,
	patternRepo repos.PatternRepo,
	ingestion IngestionService,
	slugLock locks.SlugLocker,
) ReviewService {
	return &reviewService{
		db:             db,
		log:            baseLog.With("service", "ReviewService"),
		extractionRepo: extractionRepo,
		sourceRepo:     sourceRepo,
		patternRepo:    patternRepo,
		ingestion:      ingestion,
		slugLock:       slugLock,
	}
}

func (s *reviewService) Approve(ctx context.Context, extractionID uuid.UUID, notes *string) error {
	extraction, err := s.getOne(ctx, extractionID)
	if err != nil {
		return err
	}
	return s.transition(ctx, extraction, domain.ExtractionStatusApproved, notes)
}

func (s *reviewService) Reject(ctx context.Context, extractionID uuid.UUID, notes *string) error {
	extraction, err := s.getOne(ctx, extractionID)
	if err != nil {
		return err
	}
	return s.transition(ctx, extraction, domain.ExtractionStatusRejected, notes)
}

// transition enforces the state machine. Re-applying the current status
// is a no-op rather than an error.
func (s *reviewService) transition(ctx context.Context, extraction *domain.StagedExtraction, target string, notes *string) error {
	if extraction.Status == target {
		return nil
	}
	if extraction.Status != domain.ExtractionStatusNormalized {
		switch extraction.Status {
		case domain.ExtractionStatusExtracted:
			return apierr.New(http.StatusConflict, "extraction_not_normalized", pkgerrors.ErrInvalidTransition)
		default:
			return apierr.New(http.StatusConflict, "extraction_status_terminal", pkgerrors.ErrInvalidTransition)
		}
	}
	if err := s.extractionRepo.UpdateReview(ctx, nil, extraction.ID, target, notes, time.Now()); err != nil {
		return fmt.Errorf("update review status: %w", err)
	}
	s.log.Info("extraction reviewed", "extraction_id", extraction.ID, "slug", extraction.NormalizedSlug, "status", target)
	return nil
}

func (s *reviewService) ApproveAndIngest(ctx context.Context, extractionID uuid.UUID, notes *string) (*IngestResult, error) {
	extraction, err := s.getOne(ctx, extractionID)
	if err != nil {
		return nil, err
	}
	// An already-ingested extraction means a concurrent (or earlier)
	// ingestion swept it up; fall through and report that result
	// instead of double-writing.
	if extraction.Status != domain.ExtractionStatusIngested {
		if err := s.transition(ctx, extraction, domain.ExtractionStatusApproved, notes); err != nil {
			return nil, err
		}
	}

	slug := extraction.NormalizedSlug
	if slug == "" {
		return nil, apierr.New(http.StatusBadRequest, "extraction_missing_slug", pkgerrors.ErrInvalidArgument)
	}

	// One ingestion per slug at a time: read-approved, build consensus
	// and write must be a single serialized unit.
	release, err := s.slugLock.Acquire(ctx, slug)
	if err != nil {
		return nil, &IngestionError{Slug: slug, Err: fmt.Errorf("acquire slug lock: %w", err)}
	}
	defer release()

	var result *IngestResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		approved, err := s.extractionRepo.GetApprovedBySlug(ctx, tx, slug)
		if err != nil {
			return fmt.Errorf("load approved extractions: %w", err)
		}

		candidates, contributorIDs, sourceIDs := s.usableCandidates(approved)
		if len(candidates) == 0 {
			if r, ok, err := s.alreadyIngested(ctx, tx, extractionID, slug); err != nil {
				return err
			} else if ok {
				result = r
				return nil
			}
			return apierr.New(http.StatusUnprocessableEntity, "no_usable_extractions",
				fmt.Errorf("no approved extraction with a pattern name for slug %q", slug))
		}

		cons, err := consensus.Build(candidates)
		if err != nil {
			return fmt.Errorf("build consensus: %w", err)
		}
		if len(cons.MissingFields) > 0 {
			s.log.Warn("consensus has unresolved fields", "slug", slug, "missing", cons.MissingFields)
		}

		attributions, err := s.attributions(ctx, tx, sourceIDs)
		if err != nil {
			return err
		}

		pattern, err := s.ingestion.Ingest(ctx, tx, cons, attributions)
		if err != nil {
			return err
		}

		// Every contributor flips to ingested with the write, so
		// "approved but not ingested" cannot outlive a successful
		// ingestion.
		if err := s.extractionRepo.MarkIngestedByIDs(ctx, tx, contributorIDs); err != nil {
			return fmt.Errorf("mark extractions ingested: %w", err)
		}
		if err := s.sourceRepo.UpdateStatusByIDs(ctx, tx, sourceIDs, domain.SourceStatusIngested); err != nil {
			return fmt.Errorf("mark sources ingested: %w", err)
		}

		result = &IngestResult{
			PatternID:   pattern.ID,
			PatternName: pattern.Name,
			Slug:        pattern.Slug,
			SourcesUsed: cons.SourcesUsed,
		}
		return nil
	})
	if err != nil {
		var apiErr *apierr.Error
		var ingErr *IngestionError
		if errors.As(err, &apiErr) || errors.As(err, &ingErr) {
			return nil, err
		}
		return nil, &IngestionError{Slug: slug, Err: err}
	}

	s.log.Info("approve-and-ingest complete",
		"extraction_id", extractionID,
		"pattern_id", result.PatternID,
		"slug", result.Slug,
		"sources_used", result.SourcesUsed,
	)
	return result, nil
}

func (s *reviewService) GetExtraction(ctx context.Context, extractionID uuid.UUID) (*domain.StagedExtraction, error) {
	return s.getOne(ctx, extractionID)
}

func (s *reviewService) ListExtractions(ctx context.Context, status string, limit, offset int) ([]*domain.StagedExtraction, error) {
	return s.extractionRepo.ListByStatus(ctx, nil, status, limit, offset)
}

func (s *reviewService) getOne(ctx context.Context, extractionID uuid.UUID) (*domain.StagedExtraction, error) {
	rows, err := s.extractionRepo.GetByIDs(ctx, nil, []uuid.UUID{extractionID})
	if err != nil {
		return nil, fmt.Errorf("load extraction: %w", err)
	}
	if len(rows) == 0 {
		return nil, apierr.New(http.StatusNotFound, "extraction_not_found", pkgerrors.ErrNotFound)
	}
	return rows[0], nil
}

// alreadyIngested resolves the losing side of a same-slug race: the
// extraction was ingested by another run, so the caller gets that run's
// pattern back.
func (s *reviewService) alreadyIngested(ctx context.Context, tx *gorm.DB, extractionID uuid.UUID, slug string) (*IngestResult, bool, error) {
	rows, err := s.extractionRepo.GetByIDs(ctx, tx, []uuid.UUID{extractionID})
	if err != nil {
		return nil, false, fmt.Errorf("reload extraction: %w", err)
	}
	if len(rows) == 0 || rows[0].Status != domain.ExtractionStatusIngested {
		return nil, false, nil
	}
	pattern, err := s.patternRepo.GetBySlug(ctx, tx, slug)
	if err != nil {
		return nil, false, fmt.Errorf("lookup ingested pattern: %w", err)
	}
	if pattern == nil {
		return nil, false, nil
	}
	return &IngestResult{
		PatternID:   pattern.ID,
		PatternName: pattern.Name,
		Slug:        pattern.Slug,
		SourcesUsed: pattern.SourcesUsed,
	}, true, nil
}

// usableCandidates decodes the approved extractions, dropping any with
// an empty pattern name or an unreadable payload before the consensus
// builder runs.
func (s *reviewService) usableCandidates(approved []*domain.StagedExtraction) ([]consensus.Candidate, []uuid.UUID, []uuid.UUID) {
	candidates := make([]consensus.Candidate, 0, len(approved))
	contributorIDs := make([]uuid.UUID, 0, len(approved))
	sourceSeen := make(map[uuid.UUID]bool)
	var sourceIDs []uuid.UUID

	for _, e := range approved {
		p, err := e.Pattern()
		if err != nil {
			s.log.Warn("skipping extraction with bad payload", "extraction_id", e.ID, "error", err)
			continue
		}
		if p.PatternName == "" {
			s.log.Warn("skipping extraction with empty pattern name", "extraction_id", e.ID)
			continue
		}
		candidates = append(candidates, consensus.Candidate{
			ExtractionID: e.ID,
			SourceID:     e.SourceID,
			Pattern:      p,
			Confidence:   e.Confidence,
			CreatedAt:    e.CreatedAt,
		})
		contributorIDs = append(contributorIDs, e.ID)
		if !sourceSeen[e.SourceID] {
			sourceSeen[e.SourceID] = true
			sourceIDs = append(sourceIDs, e.SourceID)
		}
	}
	return candidates, contributorIDs, sourceIDs
}

func (s *reviewService) attributions(ctx context.Context, tx *gorm.DB, sourceIDs []uuid.UUID) ([]Attribution, error) {
	sources, err := s.sourceRepo.GetByIDs(ctx, tx, sourceIDs)
	if err != nil {
		return nil, fmt.Errorf("load source attributions: %w", err)
	}
	attributions := make([]Attribution, 0, len(sources))
	for _, src := range sources {
		attributions = append(attributions, Attribution{
			URL:      src.URL,
			Kind:     src.Kind,
			Title:    src.Title,
			Creator:  src.Creator,
			Platform: src.Platform,
		})
	}
	return attributions, nil
}
