package identity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/kakpu/IT-onboarding/internal/authz"
)

// LocalsKey is where the JWT middleware stores the parsed *jwt.Token.
const LocalsKey = "user"

var ErrNoIdentity = errors.New("no authenticated identity in context")

// Identity is the acting user as asserted by a verified access token.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   authz.Role
}

// FromContext extracts the identity from JWT claims in Fiber locals.
func FromContext(c *fiber.Ctx) (Identity, bool) {
	token, ok := c.Locals(LocalsKey).(*jwt.Token)
	if !ok || token == nil || !token.Valid {
		return Identity{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, false
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, false
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)

	return Identity{
		UserID: sub,
		Email:  email,
		Name:   name,
		Role:   authz.Role(role),
	}, true
}

// GetUserID returns the acting user's id or ErrNoIdentity.
func GetUserID(c *fiber.Ctx) (string, error) {
	id, ok := FromContext(c)
	if !ok {
		return "", ErrNoIdentity
	}
	return id.UserID, nil
}
