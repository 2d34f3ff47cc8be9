package about

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(r fiber.Router) {
	r.Get("/author/", func(c *fiber.Ctx) error {
		return c.Render("about/author", fiber.Map{})
	})

	r.Get("/tech/", func(c *fiber.Ctx) error {
		return c.Render("about/tech", fiber.Map{})
	})
}
