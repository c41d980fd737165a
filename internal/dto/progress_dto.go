package dto

import "time"

type UpdateProgressRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

// ProgressRow is the per-item view returned to the owning user.
type ProgressRow struct {
	ChecklistItemID string     `json:"checklist_item_id"`
	Status          string     `json:"status"`
	ResolvedAt      *time.Time `json:"resolved_at"`
	Notes           *string    `json:"notes"`
}

type DayProgress struct {
	Day      int     `json:"day"`
	Total    int     `json:"total"`
	Resolved int     `json:"resolved"`
	Rate     float64 `json:"rate"`
}

type ProgressSummary struct {
	Days     []DayProgress `json:"days"`
	Total    int           `json:"total"`
	Resolved int           `json:"resolved"`
	Rate     float64       `json:"rate"`
}

type CreateLogRequest struct {
	ChecklistItemID *string        `json:"checklistItemId"`
	Action          string         `json:"action"`
	Metadata        map[string]any `json:"metadata"`
}

type LogResponse struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	ChecklistItemID *string        `json:"checklistItemId"`
	Action          string         `json:"action"`
	Metadata        map[string]any `json:"metadata"`
	CreatedAt       time.Time      `json:"createdAt"`
}
