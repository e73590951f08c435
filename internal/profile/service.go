package profile

import (
	"context"
	"errors"

	"github.com/TonniAndreev/doteworld-sub001/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// Notifier delivers the achievement-earned notification.
type Notifier interface {
	Notify(ctx context.Context, userID, kind, title, body string) error
}

type Service struct {
	db       db.Querier
	notifier Notifier
}

func NewService(q db.Querier, notifier Notifier) *Service {
	return &Service{db: q, notifier: notifier}
}

func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, email, username, COALESCE(full_name,''), COALESCE(avatar_url,''), created_at
		FROM profiles WHERE id=$1
	`, userID)
	var p Profile
	if err := row.Scan(&p.ID, &p.Email, &p.Username, &p.FullName, &p.AvatarURL, &p.CreatedAt); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, userID string, patch Profile) (Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if patch.Username != "" {
		p.Username = patch.Username
	}
	if patch.FullName != "" {
		p.FullName = patch.FullName
	}
	if patch.AvatarURL != "" {
		p.AvatarURL = patch.AvatarURL
	}
	_, err = s.db.Exec(ctx, `
		UPDATE profiles SET username=$2, full_name=$3, avatar_url=$4, updated_at=now() WHERE id=$1
	`, userID, p.Username, p.FullName, p.AvatarURL)
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Statistics returns lifetime walk totals, zeroed when the user has
// never finished a walk.
func (s *Service) Statistics(ctx context.Context, userID string) (WalkStatistics, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, total_walks, total_distance_km, territory_km2, last_walk_at
		FROM user_walk_statistics WHERE user_id=$1
	`, userID)
	var st WalkStatistics
	if err := row.Scan(&st.UserID, &st.TotalWalks, &st.TotalDistanceKm, &st.TerritoryKm2, &st.LastWalkAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WalkStatistics{UserID: userID}, nil
		}
		return WalkStatistics{}, err
	}
	return st, nil
}

// RecordWalk folds a finished walk into the lifetime totals and grants
// any achievements the new totals unlock.
func (s *Service) RecordWalk(ctx context.Context, userID string, distanceKm, territoryKm2 float64) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO user_walk_statistics (user_id, total_walks, total_distance_km, territory_km2, last_walk_at)
		VALUES ($1, 1, $2, $3, now())
		ON CONFLICT (user_id) DO UPDATE SET
			total_walks = user_walk_statistics.total_walks + 1,
			total_distance_km = user_walk_statistics.total_distance_km + EXCLUDED.total_distance_km,
			territory_km2 = user_walk_statistics.territory_km2 + EXCLUDED.territory_km2,
			last_walk_at = now()
		RETURNING total_walks, total_distance_km, territory_km2
	`, userID, distanceKm, territoryKm2)
	var totalWalks int
	var totalKm, totalTerritory float64
	if err := row.Scan(&totalWalks, &totalKm, &totalTerritory); err != nil {
		return err
	}

	if totalWalks >= 1 {
		s.grant(ctx, userID, AchFirstWalk, "First walk")
	}
	if totalKm >= 10 {
		s.grant(ctx, userID, AchTenKilometers, "10 kilometers walked")
	}
	if totalTerritory > 0 {
		s.grant(ctx, userID, AchFirstTerritory, "First territory claimed")
	}
	return nil
}

func (s *Service) Achievements(ctx context.Context, userID string) ([]Achievement, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, key, title, earned_at
		FROM user_achievements WHERE user_id=$1
		ORDER BY earned_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []Achievement
	for rows.Next() {
		var a Achievement
		if err := rows.Scan(&a.UserID, &a.Key, &a.Title, &a.EarnedAt); err != nil {
			return nil, err
		}
		achievements = append(achievements, a)
	}
	return achievements, nil
}

// grant inserts the achievement once; the conflict target makes repeat
// grants no-ops, so notifications only fire on the first earn.
func (s *Service) grant(ctx context.Context, userID, key, title string) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO user_achievements (user_id, key, title)
		VALUES ($1,$2,$3)
		ON CONFLICT (user_id, key) DO NOTHING
	`, userID, key, title)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("achievement grant failed")
		return
	}
	if tag.RowsAffected() == 0 || s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, "achievement", "Achievement earned", title); err != nil {
		log.Error().Err(err).Str("key", key).Msg("achievement notification failed")
	}
}
