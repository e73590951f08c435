package notification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestNotifyStores(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, nil)

	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(pgxmock.AnyArg(), "user-1", "achievement", "Achievement earned", "First walk").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	if err := svc.Notify(context.Background(), "user-1", "achievement", "Achievement earned", "First walk"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMarkReadScopedToUser(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, nil)

	mock.ExpectExec(`UPDATE notifications SET read=true`).
		WithArgs("n-1", "intruder").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := svc.MarkRead(context.Background(), "intruder", "n-1")
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if ok {
		t.Fatalf("another user's notification must not be markable")
	}
}

func TestListUnreadOnly(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, nil)

	mock.ExpectQuery(`AND NOT read`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "kind", "title", "body", "read", "created_at"}).
			AddRow("n-1", "user-1", "dog_invite", "Dog ownership invite", "", false, time.Now()))

	notifications, err := svc.List(context.Background(), "user-1", true)
	if err != nil || len(notifications) != 1 {
		t.Fatalf("list: %v %v", notifications, err)
	}
}

func passAuth(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	}
}

func TestMarkReadHandlerNotFound(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`UPDATE notifications SET read=true`).
		WithArgs("n-404", "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	app := fiber.New()
	RegisterRoutes(app.Group("/notifications"), NewService(mock, nil), passAuth("user-1"))

	req := httptest.NewRequest(http.MethodPost, "/notifications/n-404/read", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign notification, got %d", resp.StatusCode)
	}
}

func TestReadAllHandler(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`UPDATE notifications SET read=true`).
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	app := fiber.New()
	RegisterRoutes(app.Group("/notifications"), NewService(mock, nil), passAuth("user-1"))

	req := httptest.NewRequest(http.MethodPost, "/notifications/read-all", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("read-all status: %v %v", resp.StatusCode, err)
	}
}
