package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kakpu/IT-onboarding/internal/dto"
	"github.com/kakpu/IT-onboarding/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MinDay            = 1
	MaxDay            = 3
	maxCategoryLength = 50
	maxTitleLength    = 200
)

// ItemFilter narrows ListItems. Nil fields do not filter.
type ItemFilter struct {
	Day    *int
	Active *bool
}

type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListItems returns items ordered by day, then order_index, then id.
func (s *CatalogService) ListItems(ctx context.Context, filter ItemFilter) ([]models.ChecklistItem, error) {
	q := s.db.WithContext(ctx).Model(&models.ChecklistItem{})
	if filter.Day != nil {
		q = q.Where("day = ?", *filter.Day)
	}
	if filter.Active != nil {
		q = q.Where("is_active = ?", *filter.Active)
	}

	items := make([]models.ChecklistItem, 0)
	if err := q.Order("day ASC, order_index ASC, id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list checklist items: %w", err)
	}
	return items, nil
}

func (s *CatalogService) ListActiveForDay(ctx context.Context, day int) ([]models.ChecklistItem, error) {
	active := true
	return s.ListItems(ctx, ItemFilter{Day: &day, Active: &active})
}

func (s *CatalogService) GetActiveItem(ctx context.Context, id string) (*models.ChecklistItem, error) {
	var item models.ChecklistItem
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get checklist item: %w", err)
	}
	return &item, nil
}

// CountActiveByDay reports, for each day that has active items, how many there
// are and their ids in display order.
func (s *CatalogService) CountActiveByDay(ctx context.Context) ([]dto.DayCount, error) {
	active := true
	items, err := s.ListItems(ctx, ItemFilter{Active: &active})
	if err != nil {
		return nil, err
	}

	counts := make([]dto.DayCount, 0, MaxDay)
	for _, item := range items {
		if n := len(counts); n == 0 || counts[n-1].Day != item.Day {
			counts = append(counts, dto.DayCount{Day: item.Day, ItemIDs: []string{}})
		}
		last := &counts[len(counts)-1]
		last.Count++
		last.ItemIDs = append(last.ItemIDs, item.ID)
	}
	return counts, nil
}

func (s *CatalogService) CreateItem(ctx context.Context, req *dto.CreateItemRequest) (*models.ChecklistItem, error) {
	var errs fieldErrors
	validateDay(&errs, req.Day)
	validateCategory(&errs, req.Category)
	validateTitle(&errs, req.Title)
	validateSummary(&errs, req.Summary)
	validateSteps(&errs, req.Steps)
	validateOrderIndex(&errs, req.OrderIndex)
	if err := errs.err(); err != nil {
		return nil, err
	}

	item := models.ChecklistItem{
		Day:        req.Day,
		Category:   strings.TrimSpace(req.Category),
		Title:      strings.TrimSpace(req.Title),
		Summary:    req.Summary,
		Steps:      datatypes.NewJSONSlice(req.Steps),
		Notes:      req.Notes,
		OrderIndex: req.OrderIndex,
		IsActive:   true,
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	// Select("*") so an explicit is_active=false is not replaced by the column default.
	if err := s.db.WithContext(ctx).Select("*").Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create checklist item: %w", err)
	}
	return &item, nil
}

// UpdateItem applies the non-nil fields of req to an existing item.
func (s *CatalogService) UpdateItem(ctx context.Context, req *dto.UpdateItemRequest) (*models.ChecklistItem, error) {
	var errs fieldErrors
	if strings.TrimSpace(req.ID) == "" {
		errs.add("id", "is required")
	}

	updates := map[string]any{}
	if req.Day != nil {
		validateDay(&errs, *req.Day)
		updates["day"] = *req.Day
	}
	if req.Category != nil {
		validateCategory(&errs, *req.Category)
		updates["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Title != nil {
		validateTitle(&errs, *req.Title)
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Summary != nil {
		validateSummary(&errs, *req.Summary)
		updates["summary"] = *req.Summary
	}
	if req.Steps != nil {
		validateSteps(&errs, *req.Steps)
		updates["steps"] = datatypes.NewJSONSlice(*req.Steps)
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.OrderIndex != nil {
		validateOrderIndex(&errs, *req.OrderIndex)
		updates["order_index"] = *req.OrderIndex
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 && len(errs) == 0 {
		errs.add("body", "no fields to update")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx)
	var item models.ChecklistItem
	if err := tx.First(&item, "id = ?", req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("load checklist item: %w", err)
	}

	if err := tx.Model(&item).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update checklist item: %w", err)
	}
	if err := tx.First(&item, "id = ?", req.ID).Error; err != nil {
		return nil, fmt.Errorf("reload checklist item: %w", err)
	}
	return &item, nil
}

// DeactivateItem soft-deletes an item. Deactivating an inactive item is a no-op.
func (s *CatalogService) DeactivateItem(ctx context.Context, id string) (*models.ChecklistItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &ValidationError{Fields: []dto.FieldError{{Field: "id", Message: "is required"}}}
	}

	tx := s.db.WithContext(ctx)
	var item models.ChecklistItem
	if err := tx.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("load checklist item: %w", err)
	}
	if !item.IsActive {
		return &item, nil
	}

	if err := tx.Model(&item).Update("is_active", false).Error; err != nil {
		return nil, fmt.Errorf("deactivate checklist item: %w", err)
	}
	item.IsActive = false
	return &item, nil
}

// TitlesByID resolves item titles in one query. Unknown ids are absent from
// the result.
func (s *CatalogService) TitlesByID(ctx context.Context, ids []string) (map[string]string, error) {
	titles := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}

	var rows []struct {
		ID    string
		Title string
	}
	err := s.db.WithContext(ctx).Model(&models.ChecklistItem{}).
		Select("id", "title").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("lookup item titles: %w", err)
	}
	for _, r := range rows {
		titles[r.ID] = r.Title
	}
	return titles, nil
}

func validateDay(errs *fieldErrors, day int) {
	if day < MinDay || day > MaxDay {
		errs.add("day", fmt.Sprintf("must be between %d and %d", MinDay, MaxDay))
	}
}

func validateCategory(errs *fieldErrors, category string) {
	c := strings.TrimSpace(category)
	switch {
	case c == "":
		errs.add("category", "is required")
	case utf8.RuneCountInString(c) > maxCategoryLength:
		errs.add("category", fmt.Sprintf("must be at most %d characters", maxCategoryLength))
	}
}

func validateTitle(errs *fieldErrors, title string) {
	t := strings.TrimSpace(title)
	switch {
	case t == "":
		errs.add("title", "is required")
	case utf8.RuneCountInString(t) > maxTitleLength:
		errs.add("title", fmt.Sprintf("must be at most %d characters", maxTitleLength))
	}
}

func validateSummary(errs *fieldErrors, summary string) {
	if strings.TrimSpace(summary) == "" {
		errs.add("summary", "is required")
	}
}

func validateSteps(errs *fieldErrors, steps []string) {
	if len(steps) == 0 {
		errs.add("steps", "must contain at least one step")
		return
	}
	for i, step := range steps {
		if strings.TrimSpace(step) == "" {
			errs.add(fmt.Sprintf("steps[%d]", i), "must not be empty")
		}
	}
}

func validateOrderIndex(errs *fieldErrors, orderIndex int) {
	if orderIndex < 0 {
		errs.add("orderIndex", "must be 0 or greater")
	}
}
