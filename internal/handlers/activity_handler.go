package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kakpu/IT-onboarding/internal/dto"
	"github.com/kakpu/IT-onboarding/internal/identity"
	"github.com/kakpu/IT-onboarding/internal/services"
)

type ActivityHandler struct {
	activity *services.ActivityService
}

func NewActivityHandler(activity *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

func (h *ActivityHandler) Create(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateLogRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	entry, err := h.activity.Record(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err, "record_activity")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.LogResponse{
		ID:              entry.ID,
		UserID:          entry.UserID,
		ChecklistItemID: entry.ChecklistItemID,
		Action:          entry.Action,
		Metadata:        entry.MetadataMap(),
		CreatedAt:       entry.CreatedAt,
	})
}
