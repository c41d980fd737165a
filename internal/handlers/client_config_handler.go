package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kakpu/IT-onboarding/internal/config"
	"github.com/kakpu/IT-onboarding/internal/dto"
)

// ClientConfigHandler hands the UI its contact target and the cache policy
// its data-fetching layer should apply.
type ClientConfigHandler struct {
	cfg *config.Config
}

func NewClientConfigHandler(cfg *config.Config) *ClientConfigHandler {
	return &ClientConfigHandler{cfg: cfg}
}

func (h *ClientConfigHandler) Get(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "private, max-age=300")
	return c.JSON(dto.ClientConfigResponse{
		ContactURL:   h.cfg.ContactURL,
		ContactLabel: h.cfg.ContactLabel,
		CachePolicy: dto.ClientCachePolicy{
			StaleTimeSeconds:     int(h.cfg.ClientStaleTime.Seconds()),
			RefetchOnWindowFocus: false,
		},
	})
}
