package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Staged source lifecycle statuses.
const (
	SourceStatusDiscovered = "discovered"
	SourceStatusScraped    = "scraped"
	SourceStatusExtracted  = "extracted"
	SourceStatusNormalized = "normalized"
	SourceStatusApproved   = "approved"
	SourceStatusIngested   = "ingested"
)

// StagedSource is one discovered external document (video, blog page,
// PDF). The URL is globally unique; re-discovery upserts metadata.
type StagedSource struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Kind        string    `gorm:"column:kind;not null" json:"kind"`
	URL         string    `gorm:"column:url;uniqueIndex;not null" json:"url"`
	Title       string    `gorm:"column:title" json:"title"`
	Creator     string    `gorm:"column:creator" json:"creator"`
	Platform    string    `gorm:"column:platform" json:"platform"`
	SearchQuery string    `gorm:"column:search_query" json:"search_query"`
	RawContent  *string   `gorm:"column:raw_content" json:"raw_content,omitempty"`
	Status      string    `gorm:"column:status;not null;default:'discovered';index" json:"status"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (StagedSource) TableName() string { return "staged_source" }
