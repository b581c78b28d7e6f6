package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/driftfly/driftfly-backend/internal/domain"
	pkgerrors "github.com/driftfly/driftfly-backend/internal/pkg/errors"
	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
	"github.com/driftfly/driftfly-backend/internal/repos"
)

// MaterialResolver maps a free-text material mention to an existing
// catalog material, creating one on first sight. Lookup is a
// case-insensitive exact name match; no fuzzy matching, so re-ingesting
// the same consensus never mints a second material for the same name.
type MaterialResolver interface {
	Resolve(ctx context.Context, tx *gorm.DB, name, materialType string) (*domain.Material, error)
}

type materialResolver struct {
	db           *gorm.DB
	log          *logger.Logger
	materialRepo repos.MaterialRepo
}

func NewMaterialResolver(db *gorm.DB, baseLog *logger.Logger, materialRepo repos.MaterialRepo) MaterialResolver {
	return &materialResolver{
		db:           db,
		log:          baseLog.With("service", "MaterialResolver"),
		materialRepo: materialRepo,
	}
}

func (m *materialResolver) Resolve(ctx context.Context, tx *gorm.DB, name, materialType string) (*domain.Material, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("material name: %w", pkgerrors.ErrInvalidArgument)
	}

	t := tx
	if t == nil {
		t = m.db
	}

	existing, err := m.materialRepo.GetByNameFold(ctx, tx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup material %q: %w", name, err)
	}
	if existing != nil {
		return existing, nil
	}

	mat := &domain.Material{
		ID:   uuid.New(),
		Name: name,
		Type: strings.TrimSpace(materialType),
	}
	// The insert runs in its own savepoint: a unique violation on
	// postgres aborts the enclosing transaction otherwise, and the
	// refetch below has to run inside the caller's transaction.
	err = t.Transaction(func(sp *gorm.DB) error {
		return m.materialRepo.Create(ctx, sp, mat)
	})
	if err == nil {
		m.log.Info("created catalog material", "material_id", mat.ID, "name", name)
		return mat, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("create material %q: %w", name, err)
	}

	// Lost a create race on the unique name index: someone else just
	// created it. Re-fetch and use theirs.
	existing, ferr := m.materialRepo.GetByNameFold(ctx, tx, name)
	if ferr != nil {
		return nil, fmt.Errorf("refetch material %q after duplicate: %w", name, ferr)
	}
	if existing == nil {
		return nil, fmt.Errorf("create material %q: %w", name, err)
	}
	return existing, nil
}
