package about

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"backend-postline/internal/views"

	"github.com/gofiber/fiber/v2"
)

func TestStaticPages(t *testing.T) {
	app := fiber.New(fiber.Config{Views: views.Engine()})
	RegisterRoutes(app.Group("/about"))

	for _, path := range []string{"/about/author/", "/about/tech/"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}
