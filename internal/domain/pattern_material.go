package domain

import (
	"time"

	"github.com/google/uuid"
)

// PatternMaterial is one ordered material link on a pattern. Position is
// a dense 1..N sequence per pattern; the composite unique index rejects
// duplicate positions.
type PatternMaterial struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PatternID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_pattern_material_position" json:"pattern_id"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null;index" json:"material_id"`
	Material   *Material `gorm:"foreignKey:MaterialID;references:ID" json:"material,omitempty"`
	Position   int       `gorm:"column:position;not null;uniqueIndex:ux_pattern_material_position" json:"position"`
	Required   bool      `gorm:"column:required;not null;default:false" json:"required"`
	Color      string    `gorm:"column:color" json:"color,omitempty"`
	Size       string    `gorm:"column:size" json:"size,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PatternMaterial) TableName() string { return "pattern_material" }
