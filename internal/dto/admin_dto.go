package dto

import "time"

type RankedItem struct {
	ChecklistItemID string `json:"checklistItemId"`
	Title           string `json:"title"`
	Count           int64  `json:"count"`
}

type StatsResponse struct {
	TotalUsers         int64        `json:"totalUsers"`
	ActiveUsers        int64        `json:"activeUsers"`
	CompletionRate     float64      `json:"completionRate"`
	TopUnresolvedItems []RankedItem `json:"topUnresolvedItems"`
	MostViewedItems    []RankedItem `json:"mostViewedItems"`
	GeneratedAt        time.Time    `json:"generatedAt"`
}

type AdminUser struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	Department   *string    `json:"department"`
	JoinDate     *time.Time `json:"join_date"`
	CreatedAt    time.Time  `json:"created_at"`
	ProgressRate int        `json:"progressRate"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type UsersResponse struct {
	Users      []AdminUser `json:"users"`
	Pagination Pagination  `json:"pagination"`
}

type UpdateRoleRequest struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}
