package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/login/", func(c *fiber.Ctx) error {
		return c.Render("login", fiber.Map{"Next": c.Query("next")})
	})

	r.Post("/login/", func(c *fiber.Ctx) error {
		req := LoginRequest{
			Username: c.FormValue("username"),
			Password: c.FormValue("password"),
		}
		user, err := svc.Login(c.Context(), req)
		if err != nil {
			return c.Render("login", fiber.Map{
				"Next":     c.FormValue("next"),
				"Username": req.Username,
				"Error":    "incorrect username or password",
			})
		}

		if err := setSessionCookie(c, svc, user); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		next := c.FormValue("next")
		if next == "" {
			next = "/"
		}
		return c.Redirect(next)
	})

	r.Get("/signup/", func(c *fiber.Ctx) error {
		return c.Render("signup", fiber.Map{})
	})

	r.Post("/signup/", func(c *fiber.Ctx) error {
		req := SignupRequest{
			Username: c.FormValue("username"),
			Email:    c.FormValue("email"),
			Password: c.FormValue("password"),
		}
		user, err := svc.Register(c.Context(), req)
		if err != nil {
			return c.Render("signup", fiber.Map{
				"Username": req.Username,
				"Email":    req.Email,
				"Error":    err.Error(),
			})
		}

		if err := setSessionCookie(c, svc, user); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Redirect("/")
	})

	r.Get("/logout/", func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
		})
		return c.Redirect("/")
	})
}

func setSessionCookie(c *fiber.Ctx, svc *Service, user User) error {
	token, err := svc.SessionToken(user)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(sessionTTL),
		HTTPOnly: true,
	})
	return nil
}
