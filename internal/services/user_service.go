package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/kakpu/IT-onboarding/internal/authz"
	"github.com/kakpu/IT-onboarding/internal/dto"
	"github.com/kakpu/IT-onboarding/internal/models"
	"gorm.io/gorm"
)

const (
	DefaultPage      = 1
	DefaultPageSize  = 20
	MaxPageSize      = 100
	maxSearchLength  = 100
	likeEscapeClause = " ESCAPE '\\'"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ListUsers pages through users newest first. search matches name or email
// case-insensitively as a substring.
func (s *UserService) ListUsers(ctx context.Context, page, limit int, search string) (*dto.UsersResponse, error) {
	var errs fieldErrors
	if page < 1 {
		errs.add("page", "must be 1 or greater")
	}
	if limit < 1 || limit > MaxPageSize {
		errs.add("limit", fmt.Sprintf("must be between 1 and %d", MaxPageSize))
	}
	search = strings.TrimSpace(search)
	if utf8.RuneCountInString(search) > maxSearchLength {
		errs.add("search", fmt.Sprintf("must be at most %d characters", maxSearchLength))
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	filter := func(tx *gorm.DB) *gorm.DB {
		if search == "" {
			return tx
		}
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		return tx.Where(
			"LOWER(name) LIKE ?"+likeEscapeClause+" OR LOWER(email) LIKE ?"+likeEscapeClause,
			pattern, pattern,
		)
	}

	tx := s.db.WithContext(ctx)
	var total int64
	if err := tx.Model(&models.User{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	var users []models.User
	if err := tx.Scopes(filter).
		Order("created_at DESC, id ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	rates, err := s.progressRates(ctx, users)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AdminUser, 0, len(users))
	for _, u := range users {
		out = append(out, dto.AdminUser{
			ID:           u.ID,
			Name:         u.Name,
			Email:        u.Email,
			Role:         u.Role,
			Department:   u.Department,
			JoinDate:     u.JoinDate,
			CreatedAt:    u.CreatedAt,
			ProgressRate: rates[u.ID],
		})
	}

	return &dto.UsersResponse{
		Users: out,
		Pagination: dto.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		},
	}, nil
}

// progressRates returns resolved/total as a rounded percent per user in one
// grouped query. Users without rows are absent, which reads as 0.
func (s *UserService) progressRates(ctx context.Context, users []models.User) (map[string]int, error) {
	rates := make(map[string]int, len(users))
	if len(users) == 0 {
		return rates, nil
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	var rows []struct {
		UserID   string
		Total    int64
		Resolved int64
	}
	err := s.db.WithContext(ctx).Model(&models.UserProgress{}).
		Select("user_id, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS resolved", models.StatusResolved).
		Where("user_id IN ?", ids).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load progress rates: %w", err)
	}
	for _, r := range rows {
		if r.Total > 0 {
			rates[r.UserID] = int(math.Round(float64(r.Resolved) / float64(r.Total) * 100))
		}
	}
	return rates, nil
}

// UpdateUserRole changes targetID's role. The actor's role is read from the
// database rather than trusted from the session token.
func (s *UserService) UpdateUserRole(ctx context.Context, actorID, targetID, role string) (*dto.UserResponse, error) {
	tx := s.db.WithContext(ctx)

	var actor models.User
	if err := tx.Select("id", "role").First(&actor, "id = ?", actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("load actor: %w", err)
	}
	if !authz.Can(authz.Role(actor.Role), authz.CapManageRoles) {
		return nil, ErrForbidden
	}

	var errs fieldErrors
	if strings.TrimSpace(targetID) == "" {
		errs.add("id", "is required")
	}
	newRole, ok := authz.ParseRole(role)
	if !ok {
		errs.add("role", "must be one of user, trainer, admin")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	var target models.User
	if err := tx.First(&target, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := tx.Model(&target).Update("role", string(newRole)).Error; err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	target.Role = string(newRole)

	return &dto.UserResponse{
		ID:    target.ID,
		Email: target.Email,
		Name:  target.Name,
		Role:  target.Role,
	}, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
