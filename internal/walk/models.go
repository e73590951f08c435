package walk

import (
	"time"

	"github.com/TonniAndreev/doteworld-sub001/internal/shared/geo"
)

type Session struct {
	ID                 string    `json:"id"`
	DogID              string    `json:"dog_id"`
	UserID             string    `json:"user_id"`
	StartedAt          time.Time `json:"started_at"`
	EndedAt            time.Time `json:"ended_at,omitempty"`
	DistanceKm         float64   `json:"distance_km"`
	DurationSec        int64     `json:"duration_sec"`
	PointsCount        int       `json:"points_count"`
	TerritoryGainedKm2 float64   `json:"territory_gained_km2"`
	PawsEarned         int       `json:"paws_earned"`
	Status             string    `json:"status"`
}

// Sample is one device location fix. Transient: it either becomes a
// route point or is discarded by the speed gate.
type Sample struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	SpeedMps   float64   `json:"speed_mps"`
	RecordedAt time.Time `json:"recorded_at"`
}

type RoutePoint struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recorded_at"`
	SpeedMps   float64   `json:"speed_mps"`
	CreatedAt  time.Time `json:"created_at"`
}

type Summary struct {
	SessionID          string  `json:"session_id"`
	Active             bool    `json:"active"`
	PointCount         int     `json:"point_count"`
	DistanceKm         float64 `json:"distance_km"`
	DurationSec        int64   `json:"duration_sec"`
	AverageSpeedMps    float64 `json:"average_speed_mps"`
	TerritoryGainedKm2 float64 `json:"territory_gained_km2"`
}

// LiveUpdate is broadcast on the session's stream channel after every
// accepted sample.
type LiveUpdate struct {
	SessionID  string    `json:"session_id"`
	Point      geo.Point `json:"point"`
	DistanceKm float64   `json:"distance_km"`
	PointCount int       `json:"point_count"`
}
