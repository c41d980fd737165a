package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kakpu/IT-onboarding/internal/dto"
	"github.com/kakpu/IT-onboarding/internal/identity"
	"github.com/kakpu/IT-onboarding/internal/services"
)

type ProgressHandler struct {
	progress *services.ProgressService
}

func NewProgressHandler(progress *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// Update upserts the caller's status for :itemId.
func (h *ProgressHandler) Update(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	row, err := h.progress.SetStatus(c.UserContext(), userID, c.Params("itemId"), req.Status, req.Notes)
	if err != nil {
		return respondError(c, err, "set_progress")
	}
	return c.JSON(row)
}

func (h *ProgressHandler) Mine(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	rows, err := h.progress.ListForUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "list_progress")
	}
	return c.JSON(rows)
}

func (h *ProgressHandler) Summary(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	summary, err := h.progress.SummaryForUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "progress_summary")
	}
	return c.JSON(summary)
}

// ForUser is the admin view of another user's progress.
func (h *ProgressHandler) ForUser(c *fiber.Ctx) error {
	rows, err := h.progress.ProgressForUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "user_progress")
	}
	return c.JSON(rows)
}
