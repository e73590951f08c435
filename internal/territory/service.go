package territory

import (
	"context"
	"errors"

	"github.com/TonniAndreev/doteworld-sub001/internal/db"
	"github.com/TonniAndreev/doteworld-sub001/internal/shared/geo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// cityAttributionRadiusM bounds how far a claim centroid may sit from a
// city center and still count toward that city's standings.
const cityAttributionRadiusM = 50000.0

// Service accumulates claimed territory per user. Exact polygon union
// and area live in PostGIS; the service ships convex-hull claims in and
// GeoJSON out, so claimed area never decreases between resets.
type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

// ClaimHull merges the convex hull of the walk's accepted points into
// the user's territory and returns the area gained in km². Fewer than
// three hull vertices carry no area and are skipped.
func (s *Service) ClaimHull(ctx context.Context, userID string, points []geo.Point) (float64, error) {
	hull := geo.ConvexHull(points)
	if len(hull) < 3 {
		return 0, nil
	}
	wkt := geo.PolygonWKT(hull)

	prev, err := s.TotalArea(ctx, userID)
	if err != nil {
		return 0, err
	}

	var area float64
	err = s.db.QueryRow(ctx, `
		INSERT INTO territories (user_id, geom, area_km2, updated_at)
		VALUES ($1, ST_Multi(ST_GeomFromText($2, 4326)), ST_Area(ST_GeogFromText($2)) / 1000000.0, now())
		ON CONFLICT (user_id) DO UPDATE
		SET geom = ST_Multi(ST_Union(territories.geom, EXCLUDED.geom)),
		    area_km2 = ST_Area(ST_Multi(ST_Union(territories.geom, EXCLUDED.geom))::geography) / 1000000.0,
		    updated_at = now()
		RETURNING area_km2
	`, userID, wkt).Scan(&area)
	if err != nil {
		return 0, err
	}

	gained := area - prev
	if gained < 0 {
		gained = 0
	}
	if gained > 0 {
		if err := s.attributeCity(ctx, userID, geo.Centroid(hull), gained); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("city attribution failed")
		}
	}
	return gained, nil
}

// TotalArea returns the user's claimed area in km² (0 without claims).
func (s *Service) TotalArea(ctx context.Context, userID string) (float64, error) {
	var area float64
	err := s.db.QueryRow(ctx, `
		SELECT area_km2 FROM territories WHERE user_id = $1
	`, userID).Scan(&area)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return area, nil
}

// PolygonsForRendering loads the territory geometry as closed
// coordinate rings for the map layer.
func (s *Service) PolygonsForRendering(ctx context.Context, userID string) (Rendering, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `
		SELECT ST_AsGeoJSON(geom) FROM territories WHERE user_id = $1
	`, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rendering{UserID: userID, Polygons: [][]geo.Point{}}, nil
	}
	if err != nil {
		return Rendering{}, err
	}

	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return Rendering{}, err
	}

	rings := ringsOf(g.Geometry())
	areaM2 := orbgeo.Area(g.Geometry())
	return Rendering{
		UserID:   userID,
		AreaKm2:  areaM2 / 1e6,
		AreaM2:   areaM2,
		Polygons: rings,
	}, nil
}

// Reset clears the user's territory at the end of a conquest period.
// The final area is archived before the geometry is dropped. Triggered
// by an external scheduler, not by the accumulator itself.
func (s *Service) Reset(ctx context.Context, userID string) (ResetRecord, error) {
	area, err := s.TotalArea(ctx, userID)
	if err != nil {
		return ResetRecord{}, err
	}

	record := ResetRecord{ID: uuid.NewString(), UserID: userID, AreaKm2: area}
	row := s.db.QueryRow(ctx, `
		INSERT INTO territory_resets (id, user_id, area_km2)
		VALUES ($1,$2,$3)
		RETURNING reset_at
	`, record.ID, record.UserID, record.AreaKm2)
	if err := row.Scan(&record.ResetAt); err != nil {
		return ResetRecord{}, err
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM territories WHERE user_id = $1`, userID); err != nil {
		return ResetRecord{}, err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM profile_cities WHERE user_id = $1`, userID); err != nil {
		return ResetRecord{}, err
	}
	return record, nil
}

// Leaderboard ranks users by claimed area, globally or within a city.
func (s *Service) Leaderboard(ctx context.Context, cityID string, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error
	if cityID == "" {
		rows, err = s.db.Query(ctx, `
			SELECT t.user_id, p.username, t.area_km2
			FROM territories t
			JOIN profiles p ON p.id = t.user_id
			ORDER BY t.area_km2 DESC
			LIMIT $1
		`, limit)
	} else {
		rows, err = s.db.Query(ctx, `
			SELECT pc.user_id, p.username, pc.area_km2
			FROM profile_cities pc
			JOIN profiles p ON p.id = pc.user_id
			WHERE pc.city_id = $1
			ORDER BY pc.area_km2 DESC
			LIMIT $2
		`, cityID, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.AreaKm2); err != nil {
			return nil, err
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, nil
}

// CityStandings lists the user's claimed area per city.
func (s *Service) CityStandings(ctx context.Context, userID string) ([]CityStanding, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.name, pc.area_km2
		FROM profile_cities pc
		JOIN cities c ON c.id = pc.city_id
		WHERE pc.user_id = $1
		ORDER BY pc.area_km2 DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var standings []CityStanding
	for rows.Next() {
		var cs CityStanding
		if err := rows.Scan(&cs.CityID, &cs.CityName, &cs.AreaKm2); err != nil {
			return nil, err
		}
		standings = append(standings, cs)
	}
	return standings, nil
}

func (s *Service) attributeCity(ctx context.Context, userID string, centroid geo.Point, gainedKm2 float64) error {
	var cityID string
	err := s.db.QueryRow(ctx, `
		SELECT id FROM cities
		WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1,$2), 4326)::geography, $3)
		ORDER BY ST_Distance(location, ST_SetSRID(ST_MakePoint($1,$2), 4326)::geography)
		LIMIT 1
	`, centroid.Lng, centroid.Lat, cityAttributionRadiusM).Scan(&cityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO profile_cities (user_id, city_id, area_km2)
		VALUES ($1,$2,$3)
		ON CONFLICT (user_id, city_id) DO UPDATE
		SET area_km2 = profile_cities.area_km2 + EXCLUDED.area_km2
	`, userID, cityID, gainedKm2)
	return err
}

func ringsOf(g orb.Geometry) [][]geo.Point {
	rings := [][]geo.Point{}
	switch geom := g.(type) {
	case orb.Polygon:
		if len(geom) > 0 {
			rings = append(rings, ringPoints(geom[0]))
		}
	case orb.MultiPolygon:
		for _, poly := range geom {
			if len(poly) > 0 {
				rings = append(rings, ringPoints(poly[0]))
			}
		}
	}
	return rings
}

func ringPoints(ring orb.Ring) []geo.Point {
	pts := make([]geo.Point, 0, len(ring))
	for _, p := range ring {
		pts = append(pts, geo.Point{Lat: p.Lat(), Lng: p.Lon()})
	}
	return pts
}
