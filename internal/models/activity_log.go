package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionView         = "view"
	ActionResolve      = "resolve"
	ActionUnresolve    = "unresolve"
	ActionContactClick = "contact_click"
	ActionShareLink    = "share_link"
)

// ActivityLog is an append-only usage event consumed by the admin dashboard.
type ActivityLog struct {
	ID              string         `gorm:"size:36;primaryKey" json:"id"`
	UserID          string         `gorm:"size:36;not null;index" json:"user_id"`
	ChecklistItemID *string        `gorm:"size:36;index" json:"checklist_item_id"`
	Action          string         `gorm:"size:30;not null;index" json:"action"`
	Metadata        datatypes.JSON `gorm:"type:jsonb" json:"metadata"` // empty is stored as NULL
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
	User            *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (l *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// MetadataMap decodes the metadata object, returning nil when none was stored.
func (l *ActivityLog) MetadataMap() map[string]any {
	if len(l.Metadata) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(l.Metadata, &m); err != nil {
		return nil
	}
	return m
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

// IsValidAction reports whether a is one of the known activity kinds.
func IsValidAction(a string) bool {
	switch a {
	case ActionView, ActionResolve, ActionUnresolve, ActionContactClick, ActionShareLink:
		return true
	}
	return false
}
