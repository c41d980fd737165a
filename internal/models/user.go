package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an onboarding participant, trainer or administrator.
// PasswordHash is nil for users who only sign in through Entra ID.
type User struct {
	ID           string     `gorm:"size:36;primaryKey" json:"id"`
	Name         string     `gorm:"size:100;not null" json:"name"`
	Email        string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash *string    `gorm:"size:255" json:"-"`
	EntraID      *string    `gorm:"size:255;uniqueIndex" json:"-"`
	Role         string     `gorm:"size:20;not null;default:'user'" json:"role"`
	Department   *string    `gorm:"size:100" json:"department"`
	JoinDate     *time.Time `gorm:"type:date" json:"join_date"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = "user"
	}
	return nil
}

func (User) TableName() string {
	return "users"
}
