package walk

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/TonniAndreev/doteworld-sub001/internal/paws"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func passAuth(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	}
}

func TestStartWalkHandler(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO walk_sessions`).
		WithArgs(pgxmock.AnyArg(), "dog-1", "user-1", "active").
		WillReturnRows(pgxmock.NewRows([]string{"started_at"}).AddRow(time.Now()))

	svc := NewService(mock, NewTracker(2.5), &fakeLedger{}, &fakeClaimer{}, &fakeRecorder{}, nil)
	app := fiber.New()
	RegisterRoutes(app.Group("/walks"), svc, passAuth("user-1"))

	req := httptest.NewRequest(http.MethodPost, "/walks/", strings.NewReader(`{"dog_id":"dog-1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("start status: %v %v", resp.StatusCode, err)
	}
}

func TestStartWalkHandlerOutOfPaws(t *testing.T) {
	svc := NewService(nil, NewTracker(2.5), &fakeLedger{debitErr: paws.ErrInsufficientPaws}, &fakeClaimer{}, &fakeRecorder{}, nil)
	app := fiber.New()
	RegisterRoutes(app.Group("/walks"), svc, passAuth("user-1"))

	req := httptest.NewRequest(http.MethodPost, "/walks/", strings.NewReader(`{"dog_id":"dog-1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("expected 402 when out of paws, got %d", resp.StatusCode)
	}
}

func TestStartWalkHandlerMissingDog(t *testing.T) {
	svc := NewService(nil, NewTracker(2.5), &fakeLedger{}, &fakeClaimer{}, &fakeRecorder{}, nil)
	app := fiber.New()
	RegisterRoutes(app.Group("/walks"), svc, passAuth("user-1"))

	req := httptest.NewRequest(http.MethodPost, "/walks/", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without dog_id, got %d", resp.StatusCode)
	}
}

func TestAddSampleHandlerInactive(t *testing.T) {
	svc := NewService(nil, NewTracker(2.5), &fakeLedger{}, &fakeClaimer{}, &fakeRecorder{}, nil)
	app := fiber.New()
	RegisterRoutes(app.Group("/walks"), svc, passAuth("user-1"))

	req := httptest.NewRequest(http.MethodPost, "/walks/missing/samples", strings.NewReader(`{"lat":42,"lng":23,"speed_mps":1}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for inactive session, got %d", resp.StatusCode)
	}
}

func TestStopWalkHandlerInactive(t *testing.T) {
	svc := NewService(nil, NewTracker(2.5), &fakeLedger{}, &fakeClaimer{}, &fakeRecorder{}, nil)
	app := fiber.New()
	RegisterRoutes(app.Group("/walks"), svc, passAuth("user-1"))

	req := httptest.NewRequest(http.MethodPost, "/walks/missing/stop", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 stopping an inactive session, got %d", resp.StatusCode)
	}
}

func TestStopWalkHandlerForeignUser(t *testing.T) {
	tracker := NewTracker(2.5)
	svc := NewService(nil, tracker, &fakeLedger{}, &fakeClaimer{}, &fakeRecorder{}, nil)
	_ = tracker.Begin("s1", "user-1", "dog-1", time.Now())

	app := fiber.New()
	RegisterRoutes(app.Group("/walks"), svc, passAuth("user-2"))

	req := httptest.NewRequest(http.MethodPost, "/walks/s1/stop", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 stopping another user's walk, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodPost, "/walks/s1/samples", strings.NewReader(`{"lat":42,"lng":23,"speed_mps":1}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 feeding another user's walk, got %d", resp.StatusCode)
	}
}

func TestSummaryHandlerActiveSession(t *testing.T) {
	tracker := NewTracker(2.5)
	svc := NewService(nil, tracker, &fakeLedger{}, &fakeClaimer{}, &fakeRecorder{}, nil)
	_ = tracker.Begin("s1", "user-1", "dog-1", time.Now())

	app := fiber.New()
	RegisterRoutes(app.Group("/walks"), svc, passAuth("user-1"))

	req := httptest.NewRequest(http.MethodGet, "/walks/s1/summary", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("summary status: %v %v", resp.StatusCode, err)
	}
}
