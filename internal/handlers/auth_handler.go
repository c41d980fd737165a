package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kakpu/IT-onboarding/internal/config"
	"github.com/kakpu/IT-onboarding/internal/dto"
	"github.com/kakpu/IT-onboarding/internal/middleware"
	"github.com/kakpu/IT-onboarding/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	user, err := h.authService.Signup(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err, "signup")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SignupResponse{Success: true, User: *user})
}

func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var req dto.SigninRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.Signin(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err, "signin")
	}

	h.setSessionCookie(c, resp.AccessToken)
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err, "refresh")
	}

	h.setSessionCookie(c, resp.AccessToken)
	return c.JSON(resp)
}

func (h *AuthHandler) Signout(c *fiber.Ctx) error {
	var req dto.SignoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badBody(c)
		}
	}

	if err := h.authService.Signout(c.UserContext(), &req); err != nil {
		return respondError(c, err, "signout")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"message": "Signed out successfully"})
}

func (h *AuthHandler) EntraSignin(c *fiber.Ctx) error {
	var req dto.EntraSigninRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.EntraSignin(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err, "entra_signin")
	}

	h.setSessionCookie(c, resp.AccessToken)
	return c.JSON(resp)
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, accessToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    accessToken,
		Path:     "/",
		Expires:  time.Now().Add(h.cfg.JWTAccessExpiry),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
