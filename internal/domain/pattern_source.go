package domain

import (
	"time"

	"github.com/google/uuid"
)

// PatternSource is the citation metadata for one staged source that
// contributed to a pattern's current consensus. Rewritten on every
// ingestion of the pattern.
type PatternSource struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PatternID uuid.UUID `gorm:"type:uuid;not null;index" json:"pattern_id"`
	URL       string    `gorm:"column:url;not null" json:"url"`
	Kind      string    `gorm:"column:kind" json:"kind"`
	Title     string    `gorm:"column:title" json:"title"`
	Creator   string    `gorm:"column:creator" json:"creator"`
	Platform  string    `gorm:"column:platform" json:"platform"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PatternSource) TableName() string { return "pattern_source" }
