package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestJWTMiddleware(t *testing.T) {
	svc := NewService("mw-secret", nil)
	token, err := svc.signToken("user-7", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	app := fiber.New()
	app.Get("/private", JWTMiddleware("mw-secret"), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("user_id")})
	})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %v %v", resp.StatusCode, err)
	}
}

func TestJWTMiddlewareMissingToken(t *testing.T) {
	app := fiber.New()
	app.Get("/private", JWTMiddleware("mw-secret"), func(c *fiber.Ctx) error { return nil })

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401")
	}
}

func TestJWTMiddlewareBadToken(t *testing.T) {
	app := fiber.New()
	app.Get("/private", JWTMiddleware("mw-secret"), func(c *fiber.Ctx) error { return nil })

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401")
	}
}

func TestBearerFromHeader(t *testing.T) {
	if bearerFromHeader("Bearer abc") != "abc" {
		t.Fatalf("expected token")
	}
	if bearerFromHeader("Basic abc") != "" {
		t.Fatalf("expected empty for basic auth")
	}
	if bearerFromHeader("") != "" {
		t.Fatalf("expected empty for missing header")
	}
}
