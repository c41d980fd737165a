package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/kakpu/IT-onboarding/internal/dto"
	"github.com/kakpu/IT-onboarding/internal/services"
)

// AdminItemsHandler manages checklist content for admins and trainers. Every
// successful edit drops the cached dashboard, whose rankings carry item titles.
type AdminItemsHandler struct {
	catalog *services.CatalogService
	stats   *services.StatsService
}

func NewAdminItemsHandler(catalog *services.CatalogService, stats *services.StatsService) *AdminItemsHandler {
	return &AdminItemsHandler{catalog: catalog, stats: stats}
}

// List accepts ?day=1..3 and ?status=active|inactive; both optional.
func (h *AdminItemsHandler) List(c *fiber.Ctx) error {
	var filter services.ItemFilter

	if raw := c.Query("day"); raw != "" {
		day, ok := parseDay(raw)
		if !ok {
			return badQuery(c, "day", fmt.Sprintf("must be between %d and %d", services.MinDay, services.MaxDay))
		}
		filter.Day = &day
	}

	switch c.Query("status") {
	case "", "all":
	case "active":
		active := true
		filter.Active = &active
	case "inactive":
		active := false
		filter.Active = &active
	default:
		return badQuery(c, "status", "must be active, inactive or all")
	}

	items, err := h.catalog.ListItems(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err, "admin_list_items")
	}
	return c.JSON(dto.ItemsResponse{Items: items})
}

func (h *AdminItemsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	item, err := h.catalog.CreateItem(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err, "admin_create_item")
	}
	h.stats.Invalidate(c.UserContext())
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *AdminItemsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	item, err := h.catalog.UpdateItem(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err, "admin_update_item")
	}
	h.stats.Invalidate(c.UserContext())
	return c.JSON(item)
}

// Delete soft-deletes ?id=.
func (h *AdminItemsHandler) Delete(c *fiber.Ctx) error {
	item, err := h.catalog.DeactivateItem(c.UserContext(), c.Query("id"))
	if err != nil {
		return respondError(c, err, "admin_deactivate_item")
	}
	h.stats.Invalidate(c.UserContext())
	return c.JSON(item)
}
