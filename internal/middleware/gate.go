package middleware

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kakpu/IT-onboarding/internal/authz"
	"github.com/kakpu/IT-onboarding/internal/dto"
	"github.com/kakpu/IT-onboarding/internal/identity"
)

const (
	SignInPath    = "/auth/signin"
	ForbiddenPath = "/403"
)

// Access is the minimum caller state a path requires.
type Access int

const (
	AccessPublic Access = iota
	AccessAuthenticated
	AccessPrivileged
)

// State is the caller's position in the gate state machine.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticatedUser
	StateAuthenticatedPrivileged
)

var publicPrefixes = []string{
	"/auth",
	"/api/auth",
	"/api/health",
	ForbiddenPath,
	"/favicon.ico",
	"/robots.txt",
	"/assets",
}

var privilegedPrefixes = []string{
	"/admin",
	"/api/admin",
}

// Classify maps a request path to the access it requires.
func Classify(path string) Access {
	p := strings.ToLower(path)
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	for _, prefix := range publicPrefixes {
		if underPrefix(p, prefix) {
			return AccessPublic
		}
	}
	for _, prefix := range privilegedPrefixes {
		if underPrefix(p, prefix) {
			return AccessPrivileged
		}
	}
	return AccessAuthenticated
}

// StateOf derives the caller state from the identity set by Identify.
func StateOf(c *fiber.Ctx) State {
	id, ok := identity.FromContext(c)
	if !ok {
		return StateUnauthenticated
	}
	if authz.IsPrivileged(id.Role) {
		return StateAuthenticatedPrivileged
	}
	return StateAuthenticatedUser
}

// Gate enforces path-level access. Page requests are redirected (sign-in for
// anonymous callers, the forbidden page for unprivileged ones); API requests
// get 401/403 JSON instead.
func Gate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		need := Classify(c.Path())
		if need == AccessPublic {
			return c.Next()
		}

		state := StateOf(c)
		if state == StateUnauthenticated {
			return deny(c, fiber.StatusUnauthorized)
		}
		if need == AccessPrivileged && state != StateAuthenticatedPrivileged {
			return deny(c, fiber.StatusForbidden)
		}
		return c.Next()
	}
}

func deny(c *fiber.Ctx, status int) error {
	if underPrefix(strings.ToLower(c.Path()), "/api") {
		message := "Authentication required"
		if status == fiber.StatusForbidden {
			message = "Insufficient privileges"
		}
		return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
	}

	if status == fiber.StatusUnauthorized {
		target := SignInPath + "?callbackUrl=" + url.QueryEscape(c.OriginalURL())
		return c.Redirect(target, fiber.StatusSeeOther)
	}
	return c.Redirect(ForbiddenPath, fiber.StatusSeeOther)
}

func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
