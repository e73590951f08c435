package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/TonniAndreev/doteworld-sub001/internal/db"
	"github.com/TonniAndreev/doteworld-sub001/internal/stream"

	"github.com/google/uuid"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	db  db.Querier
	hub *stream.Hub
}

func NewService(q db.Querier, hub *stream.Hub) *Service {
	return &Service{db: q, hub: hub}
}

// Notify stores the notification and pushes it on the user's live
// channel.
func (s *Service) Notify(ctx context.Context, userID, kind, title, body string) error {
	n := Notification{
		ID:     uuid.NewString(),
		UserID: userID,
		Kind:   kind,
		Title:  title,
		Body:   body,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, kind, title, body)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, n.ID, n.UserID, n.Kind, n.Title, n.Body)
	if err := row.Scan(&n.CreatedAt); err != nil {
		return err
	}

	if s.hub != nil {
		payload, _ := json.Marshal(n)
		s.hub.Broadcast(stream.UserChannel(userID), payload)
	}
	return nil
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	query := `
		SELECT id, user_id, kind, title, body, read, created_at
		FROM notifications WHERE user_id=$1
	`
	if unreadOnly {
		query += ` AND NOT read`
	}
	query += ` ORDER BY created_at DESC LIMIT 100`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

// MarkRead flags one notification; the user filter keeps one user from
// acking another's.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE notifications SET read=true WHERE id=$1 AND user_id=$2
	`, notificationID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkAllRead flags everything unread for the user.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE notifications SET read=true WHERE user_id=$1 AND NOT read
	`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
