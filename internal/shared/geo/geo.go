package geo

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const earthRadiusKm = 6371.0

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HaversineKm returns the great-circle distance between two coordinates.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// ImpliedSpeedMps returns the speed implied by covering distanceKm over
// elapsed seconds. Non-positive elapsed yields +Inf so callers reject it.
func ImpliedSpeedMps(distanceKm, elapsedSec float64) float64 {
	if elapsedSec <= 0 {
		return math.Inf(1)
	}
	return distanceKm * 1000 / elapsedSec
}

// ConvexHull computes the convex hull of the given points using the
// monotone chain algorithm. The returned ring is in counter-clockwise
// order and not closed. Fewer than three distinct non-collinear points
// yield a ring with fewer than three vertices.
func ConvexHull(points []Point) []Point {
	pts := dedupe(points)
	if len(pts) < 3 {
		return pts
	}

	sort.Slice(pts, func(i, j int) bool {
		if pts[i].Lng != pts[j].Lng {
			return pts[i].Lng < pts[j].Lng
		}
		return pts[i].Lat < pts[j].Lat
	})

	var lower []Point
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []Point
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	return hull
}

// PolygonWKT renders a ring as a WKT POLYGON, closing it if needed.
// Vertex order follows WKT convention: longitude first.
func PolygonWKT(ring []Point) string {
	if len(ring) < 3 {
		return ""
	}
	closed := ring
	if ring[0] != ring[len(ring)-1] {
		closed = append(append([]Point{}, ring...), ring[0])
	}

	coords := make([]string, 0, len(closed))
	for _, p := range closed {
		coords = append(coords, fmt.Sprintf("%f %f", p.Lng, p.Lat))
	}
	return "POLYGON((" + strings.Join(coords, ",") + "))"
}

// Centroid returns the arithmetic mean of the points.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var lat, lng float64
	for _, p := range points {
		lat += p.Lat
		lng += p.Lng
	}
	n := float64(len(points))
	return Point{Lat: lat / n, Lng: lng / n}
}

func cross(o, a, b Point) float64 {
	return (a.Lng-o.Lng)*(b.Lat-o.Lat) - (a.Lat-o.Lat)*(b.Lng-o.Lng)
}

func dedupe(points []Point) []Point {
	seen := map[Point]struct{}{}
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
