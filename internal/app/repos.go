package app

import (
	"gorm.io/gorm"

	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
	"github.com/driftfly/driftfly-backend/internal/repos"
)

type Repos struct {
	StagedSource     repos.StagedSourceRepo
	StagedExtraction repos.StagedExtractionRepo
	Pattern          repos.PatternRepo
	Material         repos.MaterialRepo
	PatternMaterial  repos.PatternMaterialRepo
	PatternResource  repos.PatternResourceRepo
	PatternSource    repos.PatternSourceRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		StagedSource:     repos.NewStagedSourceRepo(db, log),
		StagedExtraction: repos.NewStagedExtractionRepo(db, log),
		Pattern:          repos.NewPatternRepo(db, log),
		Material:         repos.NewMaterialRepo(db, log),
		PatternMaterial:  repos.NewPatternMaterialRepo(db, log),
		PatternResource:  repos.NewPatternResourceRepo(db, log),
		PatternSource:    repos.NewPatternSourceRepo(db, log),
	}
}
