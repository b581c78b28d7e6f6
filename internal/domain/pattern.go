package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Pattern is the production catalog entity a consensus record is
// ingested into. Scalar fields and the material list are replaced
// wholesale on re-ingestion.
type Pattern struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Slug        string    `gorm:"column:slug;uniqueIndex;not null" json:"slug"`
	Category    string    `gorm:"column:category" json:"category"`
	Difficulty  string    `gorm:"column:difficulty" json:"difficulty"`
	WaterType   string    `gorm:"column:water_type" json:"water_type"`
	Description string    `gorm:"column:description" json:"description"`
	Steps       datatypes.JSON `gorm:"column:steps;type:jsonb" json:"steps,omitempty"`
	Variations  datatypes.JSON `gorm:"column:variations;type:jsonb" json:"variations,omitempty"`
	SourcesUsed int            `gorm:"column:sources_used;not null;default:0" json:"sources_used"`

	Materials []*PatternMaterial `gorm:"foreignKey:PatternID;references:ID" json:"materials,omitempty"`
	Resources []*PatternResource `gorm:"foreignKey:PatternID;references:ID" json:"resources,omitempty"`
	Sources   []*PatternSource   `gorm:"foreignKey:PatternID;references:ID" json:"sources,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Pattern) TableName() string { return "pattern" }
