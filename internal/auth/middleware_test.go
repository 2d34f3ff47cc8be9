package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestRequireLoginRedirectsWithNext(t *testing.T) {
	app := fiber.New()
	app.Use(CurrentUser("secret"))
	app.Get("/new/", RequireLogin(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/new/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/auth/login/?next=%2Fnew%2F" {
		t.Fatalf("unexpected location: %s", loc)
	}
}

func TestCurrentUserPopulatesLocals(t *testing.T) {
	svc := NewService("secret", nil)
	token, err := svc.SessionToken(User{ID: "user-1", Username: "leo"})
	if err != nil {
		t.Fatalf("session token: %v", err)
	}

	app := fiber.New()
	app.Use(CurrentUser("secret"))
	app.Get("/whoami", RequireLogin(), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c) + ":" + Username(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ok, got %d", resp.StatusCode)
	}
}

func TestCurrentUserIgnoresBadCookie(t *testing.T) {
	app := fiber.New()
	app.Use(CurrentUser("secret"))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		if UserID(c) != "" {
			t.Errorf("expected empty user id")
		}
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ok, got %d", resp.StatusCode)
	}
}
