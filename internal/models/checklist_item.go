package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChecklistItem is one onboarding task of a day. Items are never hard-deleted;
// IsActive=false hides them while keeping progress and log references valid.
type ChecklistItem struct {
	ID         string                      `gorm:"size:36;primaryKey" json:"id"`
	Day        int                         `gorm:"not null;index:idx_checklist_items_day_order,priority:1" json:"day"`
	Category   string                      `gorm:"size:50;not null" json:"category"`
	Title      string                      `gorm:"size:200;not null" json:"title"`
	Summary    string                      `gorm:"type:text;not null" json:"summary"`
	Steps      datatypes.JSONSlice[string] `gorm:"type:jsonb;not null" json:"steps"`
	Notes      *string                     `gorm:"type:text" json:"notes"`
	OrderIndex int                         `gorm:"not null;default:0;index:idx_checklist_items_day_order,priority:2" json:"order_index"`
	IsActive   bool                        `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}

func (i *ChecklistItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

func (ChecklistItem) TableName() string {
	return "checklist_items"
}
