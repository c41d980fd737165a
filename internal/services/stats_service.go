package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kakpu/IT-onboarding/internal/cache"
	"github.com/kakpu/IT-onboarding/internal/dto"
	"github.com/kakpu/IT-onboarding/internal/models"
	"gorm.io/gorm"
)

const (
	statsCacheKey   = "admin:stats"
	rankingLimit    = 5
	activeWindow    = 7 * 24 * time.Hour
	unknownItemName = "Unknown item"
)

type rankRow struct {
	ChecklistItemID string
	Total           int64
}

// StatsService computes the admin dashboard. The sub-queries are independent
// reads, so a result may mix slightly different moments under concurrent writes.
type StatsService struct {
	db      *gorm.DB
	catalog *CatalogService
	store   cache.Store
	policy  cache.Policy
	now     func() time.Time
}

// NewStatsService builds the aggregator. store may be nil, which disables
// caching regardless of policy.
func NewStatsService(db *gorm.DB, catalog *CatalogService, store cache.Store, policy cache.Policy) *StatsService {
	return &StatsService{
		db:      db,
		catalog: catalog,
		store:   store,
		policy:  policy,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Compute returns the dashboard, from cache when allowed. fresh forces a
// recomputation and refreshes the cached copy.
func (s *StatsService) Compute(ctx context.Context, fresh bool) (*dto.StatsResponse, error) {
	cached := s.store != nil && s.policy.Enabled()

	if cached && !fresh {
		if raw, ok, err := s.store.Get(ctx, statsCacheKey); err != nil {
			slog.Warn("stats cache read failed", "error", err)
		} else if ok {
			var stats dto.StatsResponse
			if err := json.Unmarshal(raw, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if cached {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.store.Set(ctx, statsCacheKey, raw, s.policy.MaxAge); err != nil {
				slog.Warn("stats cache write failed", "error", err)
			}
		}
	}
	return stats, nil
}

// Invalidate drops the cached dashboard so the next Compute reflects catalog
// edits immediately instead of after MaxAge.
func (s *StatsService) Invalidate(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, statsCacheKey); err != nil {
		slog.Warn("stats cache invalidation failed", "error", err)
	}
}

func (s *StatsService) compute(ctx context.Context) (*dto.StatsResponse, error) {
	tx := s.db.WithContext(ctx)
	now := s.now()
	stats := &dto.StatsResponse{GeneratedAt: now}

	if err := tx.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	if err := tx.Model(&models.ActivityLog{}).
		Where("created_at >= ?", now.Add(-activeWindow)).
		Distinct("user_id").
		Count(&stats.ActiveUsers).Error; err != nil {
		return nil, fmt.Errorf("count active users: %w", err)
	}

	var totalRows, resolvedRows int64
	if err := tx.Model(&models.UserProgress{}).Count(&totalRows).Error; err != nil {
		return nil, fmt.Errorf("count progress: %w", err)
	}
	if err := tx.Model(&models.UserProgress{}).
		Where("status = ?", models.StatusResolved).
		Count(&resolvedRows).Error; err != nil {
		return nil, fmt.Errorf("count resolved progress: %w", err)
	}
	stats.CompletionRate = ratio(resolvedRows, totalRows)

	var unresolved []rankRow
	if err := tx.Model(&models.UserProgress{}).
		Select("checklist_item_id, COUNT(*) AS total").
		Where("status = ?", models.StatusUnresolved).
		Group("checklist_item_id").
		Order("total DESC, checklist_item_id ASC").
		Limit(rankingLimit).
		Scan(&unresolved).Error; err != nil {
		return nil, fmt.Errorf("rank unresolved items: %w", err)
	}

	var viewed []rankRow
	if err := tx.Model(&models.ActivityLog{}).
		Select("checklist_item_id, COUNT(*) AS total").
		Where("action = ? AND checklist_item_id IS NOT NULL", models.ActionView).
		Group("checklist_item_id").
		Order("total DESC, checklist_item_id ASC").
		Limit(rankingLimit).
		Scan(&viewed).Error; err != nil {
		return nil, fmt.Errorf("rank viewed items: %w", err)
	}

	ids := make([]string, 0, len(unresolved)+len(viewed))
	seen := make(map[string]struct{}, cap(ids))
	for _, r := range append(append([]rankRow{}, unresolved...), viewed...) {
		if _, ok := seen[r.ChecklistItemID]; !ok {
			seen[r.ChecklistItemID] = struct{}{}
			ids = append(ids, r.ChecklistItemID)
		}
	}
	titles, err := s.catalog.TitlesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	stats.TopUnresolvedItems = ranked(unresolved, titles)
	stats.MostViewedItems = ranked(viewed, titles)
	return stats, nil
}

func ranked(rows []rankRow, titles map[string]string) []dto.RankedItem {
	out := make([]dto.RankedItem, 0, len(rows))
	for _, r := range rows {
		if r.Total <= 0 {
			continue
		}
		title, ok := titles[r.ChecklistItemID]
		if !ok {
			title = unknownItemName
		}
		out = append(out, dto.RankedItem{ChecklistItemID: r.ChecklistItemID, Title: title, Count: r.Total})
	}
	return out
}
