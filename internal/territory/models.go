package territory

import (
	"time"

	"github.com/TonniAndreev/doteworld-sub001/internal/shared/geo"
)

// Rendering is the map-ready view of a user's claimed territory:
// closed outer rings plus the aggregate area.
type Rendering struct {
	UserID   string        `json:"user_id"`
	AreaKm2  float64       `json:"area_km2"`
	AreaM2   float64       `json:"area_m2"`
	Polygons [][]geo.Point `json:"polygons"`
}

type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	UserID   string  `json:"user_id"`
	Username string  `json:"username"`
	AreaKm2  float64 `json:"area_km2"`
}

type CityStanding struct {
	CityID   string  `json:"city_id"`
	CityName string  `json:"city_name"`
	AreaKm2  float64 `json:"area_km2"`
}

type ResetRecord struct {
	ID      string    `json:"id"`
	UserID  string    `json:"user_id"`
	AreaKm2 float64   `json:"area_km2"`
	ResetAt time.Time `json:"reset_at"`
}
