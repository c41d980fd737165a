package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kakpu/IT-onboarding/internal/dto"
	"github.com/kakpu/IT-onboarding/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActivityDispatcher accepts best-effort activity events.
type ActivityDispatcher interface {
	Dispatch(userID, action string, itemID *string, metadata map[string]any)
}

type ProgressService struct {
	db       *gorm.DB
	activity ActivityDispatcher
	now      func() time.Time
}

// NewProgressService wires a progress tracker. activity may be nil.
func NewProgressService(db *gorm.DB, activity ActivityDispatcher) *ProgressService {
	return &ProgressService{
		db:       db,
		activity: activity,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetStatus upserts the caller's row for itemID, last write wins. resolved_at
// is set when the status is resolved and cleared otherwise; repeating a
// resolve keeps the original timestamp. Notes are only overwritten when given.
func (s *ProgressService) SetStatus(ctx context.Context, userID, itemID, status string, notes *string) (*models.UserProgress, error) {
	if !models.IsValidStatus(status) {
		return nil, &ValidationError{Fields: []dto.FieldError{{
			Field:   "status",
			Message: "must be one of pending, resolved, unresolved",
		}}}
	}

	var stored models.UserProgress
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.ChecklistItem{}).Where("id = ?", itemID).Count(&n).Error; err != nil {
			return fmt.Errorf("check checklist item: %w", err)
		}
		if n == 0 {
			return ErrItemNotFound
		}

		var existing []models.UserProgress
		if err := tx.Where("user_id = ? AND checklist_item_id = ?", userID, itemID).
			Limit(1).Find(&existing).Error; err != nil {
			return fmt.Errorf("load progress: %w", err)
		}

		row := models.UserProgress{
			UserID:          userID,
			ChecklistItemID: itemID,
			Status:          status,
			Notes:           notes,
		}
		if status == models.StatusResolved {
			resolvedAt := s.now()
			if len(existing) == 1 && existing[0].Status == models.StatusResolved && existing[0].ResolvedAt != nil {
				resolvedAt = *existing[0].ResolvedAt
			}
			row.ResolvedAt = &resolvedAt
		}

		columns := []string{"status", "resolved_at", "updated_at"}
		if notes != nil {
			columns = append(columns, "notes")
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "checklist_item_id"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("upsert progress: %w", err)
		}

		return tx.Where("user_id = ? AND checklist_item_id = ?", userID, itemID).First(&stored).Error
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(userID, itemID, status)
	return &stored, nil
}

func (s *ProgressService) dispatch(userID, itemID, status string) {
	if s.activity == nil {
		return
	}
	var action string
	switch status {
	case models.StatusResolved:
		action = models.ActionResolve
	case models.StatusUnresolved:
		action = models.ActionUnresolve
	default:
		return
	}
	id := itemID
	s.activity.Dispatch(userID, action, &id, nil)
}

// ListForUser returns every progress row of userID.
func (s *ProgressService) ListForUser(ctx context.Context, userID string) ([]dto.ProgressRow, error) {
	var rows []models.UserProgress
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("checklist_item_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	out := make([]dto.ProgressRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ProgressRow{
			ChecklistItemID: r.ChecklistItemID,
			Status:          r.Status,
			ResolvedAt:      r.ResolvedAt,
			Notes:           r.Notes,
		})
	}
	return out, nil
}

// SummaryForUser computes per-day completion over the currently active items.
func (s *ProgressService) SummaryForUser(ctx context.Context, userID string) (*dto.ProgressSummary, error) {
	tx := s.db.WithContext(ctx)

	var items []struct {
		ID  string
		Day int
	}
	if err := tx.Model(&models.ChecklistItem{}).
		Select("id", "day").
		Where("is_active = ?", true).
		Scan(&items).Error; err != nil {
		return nil, fmt.Errorf("load active items: %w", err)
	}

	var resolvedIDs []string
	if err := tx.Model(&models.UserProgress{}).
		Where("user_id = ? AND status = ?", userID, models.StatusResolved).
		Pluck("checklist_item_id", &resolvedIDs).Error; err != nil {
		return nil, fmt.Errorf("load resolved progress: %w", err)
	}
	resolved := make(map[string]struct{}, len(resolvedIDs))
	for _, id := range resolvedIDs {
		resolved[id] = struct{}{}
	}

	summary := &dto.ProgressSummary{Days: make([]dto.DayProgress, 0, MaxDay)}
	for day := MinDay; day <= MaxDay; day++ {
		summary.Days = append(summary.Days, dto.DayProgress{Day: day})
	}
	for _, item := range items {
		if item.Day < MinDay || item.Day > MaxDay {
			continue
		}
		d := &summary.Days[item.Day-MinDay]
		d.Total++
		summary.Total++
		if _, ok := resolved[item.ID]; ok {
			d.Resolved++
			summary.Resolved++
		}
	}
	for i := range summary.Days {
		summary.Days[i].Rate = ratio(summary.Days[i].Resolved, summary.Days[i].Total)
	}
	summary.Rate = ratio(summary.Resolved, summary.Total)
	return summary, nil
}

// ProgressForUser is the admin view of another user's rows.
func (s *ProgressService) ProgressForUser(ctx context.Context, userID string) ([]dto.ProgressRow, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if n == 0 {
		return nil, ErrUserNotFound
	}
	return s.ListForUser(ctx, userID)
}

// ratio is part/total rounded to two decimals, 0 when total is 0.
func ratio[T int | int64](part, total T) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*100) / 100
}
