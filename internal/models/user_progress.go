package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Progress statuses. A missing row means StatusPending.
const (
	StatusPending    = "pending"
	StatusResolved   = "resolved"
	StatusUnresolved = "unresolved"
)

// UserProgress is a user's resolution state for one checklist item.
// ResolvedAt is set iff Status is StatusResolved.
type UserProgress struct {
	ID              string         `gorm:"size:36;primaryKey" json:"id"`
	UserID          string         `gorm:"size:36;not null;uniqueIndex:idx_user_progress_user_item,priority:1" json:"user_id"`
	ChecklistItemID string         `gorm:"size:36;not null;uniqueIndex:idx_user_progress_user_item,priority:2;index" json:"checklist_item_id"`
	Status          string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Notes           *string        `gorm:"type:text" json:"notes"`
	ResolvedAt      *time.Time     `json:"resolved_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	User            *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ChecklistItem   *ChecklistItem `gorm:"foreignKey:ChecklistItemID;constraint:OnDelete:CASCADE" json:"-"`
}

func (p *UserProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// IsValidStatus reports whether s is one of the three progress statuses.
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusResolved, StatusUnresolved:
		return true
	}
	return false
}
