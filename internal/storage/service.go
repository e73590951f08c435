package storage

import (
	"context"
	"encoding/json"

	"github.com/TonniAndreev/doteworld-sub001/internal/db"
	"github.com/TonniAndreev/doteworld-sub001/internal/stream"

	"github.com/google/uuid"
)

// Photo kinds.
const (
	KindProfile = "profile"
	KindDog     = "dog"
)

type Service struct {
	db      db.Querier
	hub     *stream.Hub
	baseURL string
}

func NewService(q db.Querier, hub *stream.Hub, baseURL string) *Service {
	if baseURL == "" {
		baseURL = "https://storage.doteworld.app/"
	}
	return &Service{db: q, hub: hub, baseURL: baseURL}
}

// SavePhoto registers an uploaded photo and points the target record
// at it. Profile photo changes are pushed on the user's live channel so
// open clients refresh the avatar.
func (s *Service) SavePhoto(ctx context.Context, userID, kind, targetID, fileName string) (string, string, error) {
	if fileName == "" {
		fileName = "photo"
	}
	id := uuid.NewString()
	url := s.baseURL + id + "/" + fileName

	if _, err := s.db.Exec(ctx, `
		INSERT INTO photos (id, user_id, kind, target_id, url)
		VALUES ($1,$2,$3,$4,$5)
	`, id, userID, kind, targetID, url); err != nil {
		return "", "", err
	}

	switch kind {
	case KindDog:
		if _, err := s.db.Exec(ctx, `UPDATE dogs SET photo_url=$2 WHERE id=$1`, targetID, url); err != nil {
			return "", "", err
		}
	case KindProfile:
		if _, err := s.db.Exec(ctx, `UPDATE profiles SET avatar_url=$2, updated_at=now() WHERE id=$1`, userID, url); err != nil {
			return "", "", err
		}
		if s.hub != nil {
			payload, _ := json.Marshal(map[string]string{"event": "photo_updated", "user_id": userID, "url": url})
			s.hub.Broadcast(stream.UserChannel(userID), payload)
		}
	}
	return id, url, nil
}
