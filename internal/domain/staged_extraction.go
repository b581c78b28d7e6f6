package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Staged extraction review statuses. Rejected and ingested are terminal.
const (
	ExtractionStatusExtracted  = "extracted"
	ExtractionStatusNormalized = "normalized"
	ExtractionStatusApproved   = "approved"
	ExtractionStatusRejected   = "rejected"
	ExtractionStatusIngested   = "ingested"
)

// StagedExtraction is one candidate structured pattern derived from
// exactly one staged source. Rows are retained indefinitely for audit,
// including after rejection or ingestion.
type StagedExtraction struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	SourceID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"source_id"`
	Source         *StagedSource `gorm:"constraint:OnDelete:CASCADE;foreignKey:SourceID;references:ID" json:"source,omitempty"`
	PatternName    string        `gorm:"column:pattern_name;not null" json:"pattern_name"`
	NormalizedSlug string        `gorm:"column:normalized_slug;not null;index" json:"normalized_slug"`
	Payload        datatypes.JSON `gorm:"column:payload;type:jsonb;not null" json:"payload"`
	Confidence     float64        `gorm:"column:confidence;not null" json:"confidence"`
	Status         string         `gorm:"column:status;not null;default:'extracted';index" json:"status"`
	ReviewNotes    *string        `gorm:"column:review_notes" json:"review_notes,omitempty"`
	ReviewedAt     *time.Time     `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (StagedExtraction) TableName() string { return "staged_extraction" }

// Pattern decodes the jsonb payload.
func (e *StagedExtraction) Pattern() (ExtractedPattern, error) {
	var p ExtractedPattern
	if len(e.Payload) == 0 {
		return p, fmt.Errorf("staged extraction %s has empty payload", e.ID)
	}
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return p, fmt.Errorf("decode staged extraction payload: %w", err)
	}
	return p, nil
}

// SetPattern encodes the payload.
func (e *StagedExtraction) SetPattern(p ExtractedPattern) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode staged extraction payload: %w", err)
	}
	e.Payload = datatypes.JSON(raw)
	return nil
}
