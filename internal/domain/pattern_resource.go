package domain

import (
	"time"

	"github.com/google/uuid"
)

// PatternResource is an external link (video, article) attached to a
// pattern by ingestion, deduplicated by URL within one consensus.
type PatternResource struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PatternID uuid.UUID `gorm:"type:uuid;not null;index" json:"pattern_id"`
	URL       string    `gorm:"column:url;not null" json:"url"`
	Kind      string    `gorm:"column:kind" json:"kind"`
	Title     string    `gorm:"column:title" json:"title"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PatternResource) TableName() string { return "pattern_resource" }
