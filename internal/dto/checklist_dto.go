package dto

import "github.com/kakpu/IT-onboarding/internal/models"

type CreateItemRequest struct {
	Day        int      `json:"day"`
	Category   string   `json:"category"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Steps      []string `json:"steps"`
	Notes      *string  `json:"notes"`
	OrderIndex int      `json:"orderIndex"`
	IsActive   *bool    `json:"isActive"`
}

// UpdateItemRequest carries only the fields the caller wants to change.
type UpdateItemRequest struct {
	ID         string    `json:"id"`
	Day        *int      `json:"day"`
	Category   *string   `json:"category"`
	Title      *string   `json:"title"`
	Summary    *string   `json:"summary"`
	Steps      *[]string `json:"steps"`
	Notes      *string   `json:"notes"`
	OrderIndex *int      `json:"orderIndex"`
	IsActive   *bool     `json:"isActive"`
}

type ItemsResponse struct {
	Items []models.ChecklistItem `json:"items"`
}

type DayCount struct {
	Day     int      `json:"day"`
	Count   int      `json:"count"`
	ItemIDs []string `json:"itemIds"`
}

type ClientConfigResponse struct {
	ContactURL   string            `json:"contactUrl"`
	ContactLabel string            `json:"contactLabel"`
	CachePolicy  ClientCachePolicy `json:"cachePolicy"`
}

type ClientCachePolicy struct {
	StaleTimeSeconds     int  `json:"staleTimeSeconds"`
	RefetchOnWindowFocus bool `json:"refetchOnWindowFocus"`
}
