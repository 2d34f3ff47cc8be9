package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"backend-postline/internal/views"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func newAuthApp(svc *Service) *fiber.App {
	app := fiber.New(fiber.Config{Views: views.Engine()})
	RegisterRoutes(app.Group("/auth"), svc)
	return app
}

func TestLoginPage(t *testing.T) {
	app := newAuthApp(NewService("secret", nil))

	req := httptest.NewRequest(http.MethodGet, "/auth/login/?next=%2Fnew%2F", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ok, got %d", resp.StatusCode)
	}
}

func TestLoginSuccessSetsCookieAndRedirects(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService("secret", mock)

	createdAt := time.Now()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "leo", "leo@example.com", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	user, err := svc.Register(context.Background(), SignupRequest{Username: "leo", Email: "leo@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	mock.ExpectQuery(`SELECT id, username, email, password_hash, created_at`).
		WithArgs("leo").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at"}).
			AddRow(user.ID, user.Username, user.Email, user.PasswordHash, createdAt))

	app := newAuthApp(svc)

	form := url.Values{}
	form.Set("username", "leo")
	form.Set("password", "password123")
	form.Set("next", "/follow/")
	req := httptest.NewRequest(http.MethodPost, "/auth/login/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/follow/" {
		t.Fatalf("unexpected location: %s", loc)
	}

	var sessionSet bool
	for _, cookie := range resp.Cookies() {
		if cookie.Name == SessionCookie && cookie.Value != "" {
			sessionSet = true
		}
	}
	if !sessionSet {
		t.Fatalf("expected session cookie")
	}
}

func TestLoginFailureRedisplaysForm(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, username, email, password_hash, created_at`).
		WithArgs("ghost").
		WillReturnError(errQuery)

	app := newAuthApp(NewService("secret", mock))

	form := url.Values{}
	form.Set("username", "ghost")
	form.Set("password", "nope")
	req := httptest.NewRequest(http.MethodPost, "/auth/login/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected form redisplay with 200, got %d", resp.StatusCode)
	}
}

func TestSignupCreatesUserAndRedirects(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "mila", "mila@example.com", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	app := newAuthApp(NewService("secret", mock))

	form := url.Values{}
	form.Set("username", "mila")
	form.Set("email", "mila@example.com")
	form.Set("password", "password123")
	req := httptest.NewRequest(http.MethodPost, "/auth/signup/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSignupMissingFieldsRedisplays(t *testing.T) {
	app := newAuthApp(NewService("secret", nil))

	form := url.Values{}
	form.Set("username", "mila")
	req := httptest.NewRequest(http.MethodPost, "/auth/signup/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected form redisplay with 200, got %d", resp.StatusCode)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	app := newAuthApp(NewService("secret", nil))

	req := httptest.NewRequest(http.MethodGet, "/auth/logout/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == SessionCookie && cookie.Value != "" {
			t.Fatalf("expected cleared session cookie")
		}
	}
}
