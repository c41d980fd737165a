package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/kakpu/IT-onboarding/internal/dto"
	"github.com/kakpu/IT-onboarding/internal/identity"
	"github.com/kakpu/IT-onboarding/internal/services"
)

type AdminHandler struct {
	stats *services.StatsService
	users *services.UserService
}

func NewAdminHandler(stats *services.StatsService, users *services.UserService) *AdminHandler {
	return &AdminHandler{stats: stats, users: users}
}

// Stats serves the dashboard; ?fresh=true bypasses the cache.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	fresh := c.QueryBool("fresh", false)

	stats, err := h.stats.Compute(c.UserContext(), fresh)
	if err != nil {
		return respondError(c, err, "admin_stats")
	}
	return c.JSON(stats)
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, err := queryInt(c, "page", services.DefaultPage)
	if err != nil {
		return badQuery(c, "page", "must be an integer")
	}
	limit, err := queryInt(c, "limit", services.DefaultPageSize)
	if err != nil {
		return badQuery(c, "limit", "must be an integer")
	}

	resp, err := h.users.ListUsers(c.UserContext(), page, limit, c.Query("search"))
	if err != nil {
		return respondError(c, err, "admin_list_users")
	}
	return c.JSON(resp)
}

func (h *AdminHandler) UpdateRole(c *fiber.Ctx) error {
	actorID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	user, err := h.users.UpdateUserRole(c.UserContext(), actorID, req.ID, req.Role)
	if err != nil {
		return respondError(c, err, "admin_update_role")
	}
	return c.JSON(user)
}

func queryInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
