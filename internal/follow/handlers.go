package follow

import (
	"errors"

	"backend-postline/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

// RegisterRoutes must run before the username wildcard routes so that
// /<username>/follow/ wins over /<username>/<post_id>/.
func RegisterRoutes(r fiber.Router, svc *Service, users *auth.Service, requireLogin fiber.Handler) {
	r.Get("/:username/follow/", requireLogin, func(c *fiber.Ctx) error {
		author, err := users.UserByUsername(c.Context(), c.Params("username"))
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.ErrNotFound
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		if err := svc.Follow(c.Context(), auth.UserID(c), author.ID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Redirect("/" + author.Username + "/")
	})

	r.Get("/:username/unfollow/", requireLogin, func(c *fiber.Ctx) error {
		author, err := users.UserByUsername(c.Context(), c.Params("username"))
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.ErrNotFound
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		if err := svc.Unfollow(c.Context(), auth.UserID(c), author.ID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Redirect("/" + author.Username + "/")
	})
}
