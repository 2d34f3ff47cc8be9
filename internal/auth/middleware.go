package auth

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
)

const SessionCookie = "postline_session"

// CurrentUser reads the session cookie and stores the signed-in user in
// locals. It never blocks the request; public pages use it to know the
// viewer.
func CurrentUser(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token == "" {
			return c.Next()
		}

		claims, err := parseClaims(token, secretBytes)
		if err != nil {
			return c.Next()
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("username", claims.Username)
		return c.Next()
	}
}

// RequireLogin redirects anonymous requests to the login page, preserving
// the requested path in the next parameter.
func RequireLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserID(c) == "" {
			return c.Redirect("/auth/login/?next=" + url.QueryEscape(c.Path()))
		}
		return c.Next()
	}
}

func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func Username(c *fiber.Ctx) string {
	name, _ := c.Locals("username").(string)
	return name
}
