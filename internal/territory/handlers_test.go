package territory

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

func passAuth(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	}
}

func TestAreaHandlerZeroForNewUser(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT area_km2 FROM territories`).
		WithArgs("user-1").
		WillReturnError(pgx.ErrNoRows)

	app := fiber.New()
	RegisterRoutes(app.Group("/territory"), NewService(mock), passAuth("user-1"))

	req := httptest.NewRequest(http.MethodGet, "/territory/area", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("area status: %v %v", resp.StatusCode, err)
	}
}

func TestLeaderboardHandler(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT t.user_id`).
		WithArgs(20).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "username", "area_km2"}).
			AddRow("user-1", "ann", 1.5))

	app := fiber.New()
	RegisterRoutes(app.Group("/territory"), NewService(mock), passAuth("user-1"))

	req := httptest.NewRequest(http.MethodGet, "/territory/leaderboard", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("leaderboard status: %v %v", resp.StatusCode, err)
	}
}
