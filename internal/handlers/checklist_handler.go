package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/kakpu/IT-onboarding/internal/dto"
	"github.com/kakpu/IT-onboarding/internal/services"
)

// ChecklistHandler serves the employee-facing catalog: active items only.
type ChecklistHandler struct {
	catalog *services.CatalogService
}

func NewChecklistHandler(catalog *services.CatalogService) *ChecklistHandler {
	return &ChecklistHandler{catalog: catalog}
}

func (h *ChecklistHandler) List(c *fiber.Ctx) error {
	day, ok := parseDay(c.Query("day"))
	if !ok {
		return badQuery(c, "day", fmt.Sprintf("must be between %d and %d", services.MinDay, services.MaxDay))
	}

	items, err := h.catalog.ListActiveForDay(c.UserContext(), day)
	if err != nil {
		return respondError(c, err, "list_checklist_items")
	}
	return c.JSON(dto.ItemsResponse{Items: items})
}

func (h *ChecklistHandler) Count(c *fiber.Ctx) error {
	counts, err := h.catalog.CountActiveByDay(c.UserContext())
	if err != nil {
		return respondError(c, err, "count_checklist_items")
	}
	return c.JSON(counts)
}

func (h *ChecklistHandler) Get(c *fiber.Ctx) error {
	item, err := h.catalog.GetActiveItem(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "get_checklist_item")
	}
	return c.JSON(item)
}

func parseDay(raw string) (int, bool) {
	day, err := strconv.Atoi(raw)
	if err != nil || day < services.MinDay || day > services.MaxDay {
		return 0, false
	}
	return day, true
}
