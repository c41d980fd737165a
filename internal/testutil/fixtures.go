package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/kakpu/IT-onboarding/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var emailCounter atomic.Int64

// TestPassword is the plain-text password of every user created by CreateUser.
const TestPassword = "password123"

type UserOption func(*models.User)

func WithRole(role string) UserOption {
	return func(u *models.User) { u.Role = role }
}

func WithEmail(email string) UserOption {
	return func(u *models.User) { u.Email = email }
}

func WithName(name string) UserOption {
	return func(u *models.User) { u.Name = name }
}

func WithUserID(id string) UserOption {
	return func(u *models.User) { u.ID = id }
}

// CreateUser inserts a user with a bcrypt hash of TestPassword.
func CreateUser(t testing.TB, db *gorm.DB, opts ...UserOption) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	h := string(hash)
	n := emailCounter.Add(1)
	u := &models.User{
		Name:         fmt.Sprintf("User %d", n),
		Email:        fmt.Sprintf("user%d@example.com", n),
		PasswordHash: &h,
		Role:         "user",
	}
	for _, opt := range opts {
		opt(u)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

type ItemOption func(*models.ChecklistItem)

func WithDay(day int) ItemOption {
	return func(i *models.ChecklistItem) { i.Day = day }
}

func WithOrder(order int) ItemOption {
	return func(i *models.ChecklistItem) { i.OrderIndex = order }
}

func WithTitle(title string) ItemOption {
	return func(i *models.ChecklistItem) { i.Title = title }
}

func WithItemID(id string) ItemOption {
	return func(i *models.ChecklistItem) { i.ID = id }
}

func Inactive() ItemOption {
	return func(i *models.ChecklistItem) { i.IsActive = false }
}

// CreateItem inserts an active day-1 checklist item. Inactive items are written
// with an explicit update because the column default would override false.
func CreateItem(t testing.TB, db *gorm.DB, opts ...ItemOption) *models.ChecklistItem {
	t.Helper()
	item := &models.ChecklistItem{
		Day:      1,
		Category: "login",
		Title:    "Sign in to your PC",
		Summary:  "First login",
		Steps:    datatypes.NewJSONSlice([]string{"Power on", "Enter password"}),
		IsActive: true,
	}
	for _, opt := range opts {
		opt(item)
	}
	active := item.IsActive
	item.IsActive = true
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create item: %v", err)
	}
	if !active {
		if err := db.Model(item).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate item: %v", err)
		}
		item.IsActive = false
	}
	return item
}

// CreateProgress inserts a progress row directly, bypassing the service.
func CreateProgress(t testing.TB, db *gorm.DB, userID, itemID, status string) *models.UserProgress {
	t.Helper()
	p := &models.UserProgress{UserID: userID, ChecklistItemID: itemID, Status: status}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create progress: %v", err)
	}
	return p
}
