package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/driftfly/driftfly-backend/internal/domain"
	pkgerrors "github.com/driftfly/driftfly-backend/internal/pkg/errors"
	"github.com/driftfly/driftfly-backend/internal/repos"
)

func TestMaterialResolverCreatesThenReuses(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	first, err := e.materials.Resolve(ctx, nil, "Marabou", "tail")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// Case and surrounding whitespace do not mint a second material.
	second, err := e.materials.Resolve(ctx, nil, "  marabou ", "tail")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("resolver minted a duplicate: %s vs %s", first.ID, second.ID)
	}

	var count int64
	if err := e.db.Model(&domain.Material{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("material rows = %d, want 1", count)
	}
}

func TestMaterialResolverRejectsEmptyName(t *testing.T) {
	e := newTestEnv(t)
	if _, err := e.materials.Resolve(context.Background(), nil, "   ", "tail"); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

// raceMaterialRepo simulates losing a create race: the first lookup
// misses, the create hits the unique index, the refetch finds the row
// the winner inserted.
type raceMaterialRepo struct {
	winner  *domain.Material
	lookups int
}

func (r *raceMaterialRepo) Create(ctx context.Context, tx *gorm.DB, material *domain.Material) error {
	return gorm.ErrDuplicatedKey
}

func (r *raceMaterialRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Material, error) {
	return nil, nil
}

func (r *raceMaterialRepo) GetByNameFold(ctx context.Context, tx *gorm.DB, name string) (*domain.Material, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, nil
	}
	return r.winner, nil
}

func TestMaterialResolverRecoversFromCreateRace(t *testing.T) {
	e := newTestEnv(t)
	winner := &domain.Material{ID: uuid.New(), Name: "Marabou", Type: "tail"}
	resolver := NewMaterialResolver(e.db, e.log, &raceMaterialRepo{winner: winner})

	got, err := resolver.Resolve(context.Background(), nil, "Marabou", "tail")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != winner.ID {
		t.Fatalf("resolved %s, want the winner's row %s", got.ID, winner.ID)
	}
}

// blindFirstLookupRepo delegates to the real repo but misses the first
// lookup, reproducing the window where another transaction commits the
// row between lookup and insert.
type blindFirstLookupRepo struct {
	repos.MaterialRepo
	lookups int
}

func (r *blindFirstLookupRepo) GetByNameFold(ctx context.Context, tx *gorm.DB, name string) (*domain.Material, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, nil
	}
	return r.MaterialRepo.GetByNameFold(ctx, tx, name)
}

func TestMaterialResolverDuplicateInsertKeepsTransactionUsable(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	winner, err := e.materials.Resolve(ctx, nil, "Marabou", "tail")
	if err != nil {
		t.Fatalf("seed winner: %v", err)
	}

	resolver := NewMaterialResolver(e.db, e.log, &blindFirstLookupRepo{MaterialRepo: repos.NewMaterialRepo(e.db, e.log)})

	// The duplicate insert hits the unique index inside the caller's
	// transaction; the savepoint confines the failure so the refetch and
	// everything after it still run in that transaction.
	err = e.db.Transaction(func(tx *gorm.DB) error {
		got, err := resolver.Resolve(ctx, tx, "Marabou", "tail")
		if err != nil {
			return err
		}
		if got.ID != winner.ID {
			t.Fatalf("resolved %s, want the winner's row %s", got.ID, winner.ID)
		}
		var count int64
		return tx.Model(&domain.Material{}).Count(&count).Error
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	var count int64
	if err := e.db.Model(&domain.Material{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("material rows = %d, want 1", count)
	}
}
