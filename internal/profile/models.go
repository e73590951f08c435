package profile

import "time"

type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// WalkStatistics are denormalized lifetime totals, updated once per
// finished walk.
type WalkStatistics struct {
	UserID          string    `json:"user_id"`
	TotalWalks      int       `json:"total_walks"`
	TotalDistanceKm float64   `json:"total_distance_km"`
	TerritoryKm2    float64   `json:"territory_km2"`
	LastWalkAt      time.Time `json:"last_walk_at,omitempty"`
}

type Achievement struct {
	UserID   string    `json:"user_id"`
	Key      string    `json:"key"`
	Title    string    `json:"title"`
	EarnedAt time.Time `json:"earned_at"`
}

// Achievement keys.
const (
	AchFirstWalk      = "first_walk"
	AchTenKilometers  = "ten_kilometers"
	AchFirstTerritory = "first_territory"
)
