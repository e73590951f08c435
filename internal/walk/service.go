package walk

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/TonniAndreev/doteworld-sub001/internal/db"
	"github.com/TonniAndreev/doteworld-sub001/internal/shared/geo"
	"github.com/TonniAndreev/doteworld-sub001/internal/stream"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrNotSessionOwner rejects sample and stop requests for a session
// started by a different user.
var ErrNotSessionOwner = errors.New("walk session belongs to another user")

// PawLedger is what the walk lifecycle needs from the paws service.
type PawLedger interface {
	DebitWalkStart(ctx context.Context, userID string) error
	CreditWalkReward(ctx context.Context, userID string, distanceKm float64) (int, error)
}

// TerritoryClaimer merges a finished walk's points into claimed
// territory and reports the gained area in km².
type TerritoryClaimer interface {
	ClaimHull(ctx context.Context, userID string, points []geo.Point) (float64, error)
}

// WalkRecorder folds a finished walk into profile statistics and
// achievements.
type WalkRecorder interface {
	RecordWalk(ctx context.Context, userID string, distanceKm, territoryKm2 float64) error
}

type Service struct {
	db        db.Querier
	tracker   *Tracker
	paws      PawLedger
	territory TerritoryClaimer
	recorder  WalkRecorder
	hub       *stream.Hub
}

func NewService(q db.Querier, tracker *Tracker, ledger PawLedger, claimer TerritoryClaimer, recorder WalkRecorder, hub *stream.Hub) *Service {
	return &Service{
		db:        q,
		tracker:   tracker,
		paws:      ledger,
		territory: claimer,
		recorder:  recorder,
		hub:       hub,
	}
}

// Start debits the walk cost and opens an active session. A failed
// debit (out of paws) rejects the start before anything is created.
func (s *Service) Start(ctx context.Context, userID, dogID string) (Session, error) {
	if err := s.paws.DebitWalkStart(ctx, userID); err != nil {
		return Session{}, err
	}

	session := Session{
		ID:     uuid.NewString(),
		DogID:  dogID,
		UserID: userID,
		Status: "active",
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO walk_sessions (id, dog_id, user_id, status)
		VALUES ($1,$2,$3,$4)
		RETURNING started_at
	`, session.ID, session.DogID, session.UserID, session.Status)
	if err := row.Scan(&session.StartedAt); err != nil {
		return Session{}, err
	}

	if err := s.tracker.Begin(session.ID, userID, dogID, session.StartedAt); err != nil {
		return Session{}, err
	}
	return session, nil
}

// AddSample feeds one location fix into the active session. Samples at
// vehicle speed are rejected and contribute nothing; accepted samples
// extend the route, the cumulative distance and the live stream. Only
// the user who started the session may feed it.
func (s *Service) AddSample(ctx context.Context, sessionID, userID string, sample Sample) (bool, error) {
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = time.Now()
	}

	if snap, ok := s.tracker.Peek(sessionID); ok && snap.UserID != userID {
		return false, ErrNotSessionOwner
	}

	accepted, _, err := s.tracker.Apply(sessionID, sample, func(deltaKm float64) error {
		if _, err := s.db.Exec(ctx, `
			INSERT INTO walk_route_points (session_id, location, recorded_at, speed_mps)
			VALUES ($1, ST_SetSRID(ST_MakePoint($2,$3), 4326)::geography, $4, $5)
		`, sessionID, sample.Lng, sample.Lat, sample.RecordedAt, sample.SpeedMps); err != nil {
			return err
		}
		_, err := s.db.Exec(ctx, `
			UPDATE walk_sessions
			SET distance_km = COALESCE(distance_km,0) + $2,
			    points_count = COALESCE(points_count,0) + 1
			WHERE id=$1
		`, sessionID, deltaKm)
		return err
	})
	if err != nil {
		return false, err
	}

	if accepted && s.hub != nil {
		if snap, ok := s.tracker.Peek(sessionID); ok {
			payload, _ := json.Marshal(LiveUpdate{
				SessionID:  sessionID,
				Point:      geo.Point{Lat: sample.Lat, Lng: sample.Lng},
				DistanceKm: snap.DistanceKm,
				PointCount: len(snap.Points),
			})
			s.hub.Broadcast(stream.WalkChannel(sessionID), payload)
		}
	}
	return accepted, nil
}

// Stop finalizes the session: durable session record first, then
// territory claim, paws reward and denormalized statistics. The tracker
// entry survives a failed durable write, so Stop can be retried; once
// the write lands the entry is gone and rewards apply exactly once.
func (s *Service) Stop(ctx context.Context, sessionID, userID string) (Session, error) {
	session := Session{ID: sessionID, Status: "completed"}

	snap, err := s.tracker.Conclude(sessionID, func(snap Snapshot) error {
		if snap.UserID != userID {
			return ErrNotSessionOwner
		}
		row := s.db.QueryRow(ctx, `
			UPDATE walk_sessions
			SET ended_at = now(),
			    distance_km = $2,
			    duration_sec = EXTRACT(EPOCH FROM now() - started_at)::bigint,
			    points_count = $3,
			    status = 'completed'
			WHERE id = $1
			RETURNING ended_at, duration_sec
		`, sessionID, snap.DistanceKm, len(snap.Points))
		return row.Scan(&session.EndedAt, &session.DurationSec)
	})
	if err != nil {
		return Session{}, err
	}

	session.DogID = snap.DogID
	session.UserID = snap.UserID
	session.StartedAt = snap.StartedAt
	session.DistanceKm = snap.DistanceKm
	session.PointsCount = len(snap.Points)

	gainedKm2, err := s.territory.ClaimHull(ctx, snap.UserID, snap.Points)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("territory claim failed")
		gainedKm2 = 0
	}

	reward, err := s.paws.CreditWalkReward(ctx, snap.UserID, snap.DistanceKm)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("walk reward credit failed")
	}
	session.TerritoryGainedKm2 = gainedKm2
	session.PawsEarned = reward

	if _, err := s.db.Exec(ctx, `
		UPDATE walk_sessions SET territory_gained_km2 = $2, paws_earned = $3 WHERE id = $1
	`, sessionID, gainedKm2, reward); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("walk reward bookkeeping failed")
	}

	if s.recorder != nil {
		if err := s.recorder.RecordWalk(ctx, snap.UserID, snap.DistanceKm, gainedKm2); err != nil {
			log.Error().Err(err).Str("user_id", snap.UserID).Msg("walk statistics update failed")
		}
	}

	if s.hub != nil {
		payload, _ := json.Marshal(session)
		s.hub.Broadcast(stream.WalkChannel(sessionID), payload)
	}
	return session, nil
}

// Summary reports live accumulators for active sessions and the stored
// record for finished ones.
func (s *Service) Summary(ctx context.Context, sessionID string) (Summary, error) {
	if snap, ok := s.tracker.Peek(sessionID); ok {
		duration := time.Since(snap.StartedAt)
		avg := 0.0
		if duration.Seconds() > 0 {
			avg = snap.DistanceKm * 1000 / duration.Seconds()
		}
		return Summary{
			SessionID:       sessionID,
			Active:          true,
			PointCount:      len(snap.Points),
			DistanceKm:      snap.DistanceKm,
			DurationSec:     int64(duration.Seconds()),
			AverageSpeedMps: avg,
		}, nil
	}

	var sum Summary
	row := s.db.QueryRow(ctx, `
		SELECT id, COALESCE(points_count,0), COALESCE(distance_km,0), COALESCE(duration_sec,0), COALESCE(territory_gained_km2,0)
		FROM walk_sessions WHERE id=$1
	`, sessionID)
	if err := row.Scan(&sum.SessionID, &sum.PointCount, &sum.DistanceKm, &sum.DurationSec, &sum.TerritoryGainedKm2); err != nil {
		return Summary{}, err
	}
	if sum.DurationSec > 0 {
		sum.AverageSpeedMps = sum.DistanceKm * 1000 / float64(sum.DurationSec)
	}
	return sum, nil
}

// Points returns the persisted route of a session in recorded order.
func (s *Service) Points(ctx context.Context, sessionID string) ([]RoutePoint, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, session_id, ST_Y(location::geometry), ST_X(location::geometry), recorded_at, COALESCE(speed_mps,0), created_at
		FROM walk_route_points WHERE session_id=$1
		ORDER BY recorded_at
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []RoutePoint
	for rows.Next() {
		var p RoutePoint
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Lat, &p.Lng, &p.RecordedAt, &p.SpeedMps, &p.CreatedAt); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// ListForUser returns the user's walk history, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, dog_id, user_id, started_at, COALESCE(ended_at, 'epoch'::timestamptz),
		       COALESCE(distance_km,0), COALESCE(duration_sec,0), COALESCE(points_count,0),
		       COALESCE(territory_gained_km2,0), COALESCE(paws_earned,0), status
		FROM walk_sessions
		WHERE user_id=$1
		ORDER BY started_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.DogID, &sess.UserID, &sess.StartedAt, &sess.EndedAt,
			&sess.DistanceKm, &sess.DurationSec, &sess.PointsCount,
			&sess.TerritoryGainedKm2, &sess.PawsEarned, &sess.Status); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}
