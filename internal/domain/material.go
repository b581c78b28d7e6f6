package domain

import (
	"time"

	"github.com/google/uuid"
)

// Material is a shared catalog entity referenced by many patterns.
// Names are deduplicated case-insensitively (unique index on
// LOWER(name), created in db.AutoMigrateAll). Materials carry no
// delete path: they must never disappear while a pattern links them.
type Material struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"column:name;not null" json:"name"`
	Type string    `gorm:"column:type;not null" json:"type"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Material) TableName() string { return "material" }
