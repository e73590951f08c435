package geo

import (
	"math"
	"strings"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	// Sofia (42.6977, 23.3219) to Plovdiv (42.1354, 24.7453) ~ 130-135 km
	d := HaversineKm(42.6977, 23.3219, 42.1354, 24.7453)
	if d < 120 || d > 145 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestHaversineKmZero(t *testing.T) {
	if d := HaversineKm(42.7, 23.3, 42.7, 23.3); d != 0 {
		t.Fatalf("expected zero distance, got %v", d)
	}
}

func TestImpliedSpeed(t *testing.T) {
	// 10 meters over 8 seconds = 1.25 m/s
	v := ImpliedSpeedMps(0.01, 8)
	if math.Abs(v-1.25) > 1e-9 {
		t.Fatalf("unexpected speed: %v", v)
	}
	if !math.IsInf(ImpliedSpeedMps(0.01, 0), 1) {
		t.Fatalf("expected +Inf for zero elapsed")
	}
	if !math.IsInf(ImpliedSpeedMps(0.01, -1), 1) {
		t.Fatalf("expected +Inf for negative elapsed")
	}
}

func TestConvexHullSquare(t *testing.T) {
	pts := []Point{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 1},
		{Lat: 1, Lng: 1},
		{Lat: 1, Lng: 0},
		{Lat: 0.5, Lng: 0.5}, // interior, must be dropped
	}
	hull := ConvexHull(pts)
	if len(hull) != 4 {
		t.Fatalf("expected 4 hull vertices, got %d", len(hull))
	}
	for _, p := range hull {
		if p == (Point{Lat: 0.5, Lng: 0.5}) {
			t.Fatalf("interior point kept in hull")
		}
	}
}

func TestConvexHullDegenerate(t *testing.T) {
	if got := ConvexHull([]Point{{Lat: 1, Lng: 1}}); len(got) != 1 {
		t.Fatalf("expected single point back")
	}
	// collinear points collapse to endpoints
	line := []Point{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}}
	if got := ConvexHull(line); len(got) >= 3 {
		t.Fatalf("collinear points must not form a polygon, got %d", len(got))
	}
	dup := []Point{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 0}, {Lat: 1, Lng: 0}}
	if got := ConvexHull(dup); len(got) >= 3 {
		t.Fatalf("duplicates must not pad the hull, got %d", len(got))
	}
}

func TestPolygonWKT(t *testing.T) {
	ring := []Point{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 0}}
	wkt := PolygonWKT(ring)
	if !strings.HasPrefix(wkt, "POLYGON((") {
		t.Fatalf("unexpected wkt: %s", wkt)
	}
	if !strings.HasSuffix(wkt, "))") {
		t.Fatalf("unclosed wkt: %s", wkt)
	}
	// ring must be closed: first coordinate repeated at the end
	if strings.Count(wkt, "0.000000 0.000000") != 2 {
		t.Fatalf("expected closed ring: %s", wkt)
	}
	if PolygonWKT(ring[:2]) != "" {
		t.Fatalf("expected empty wkt for degenerate ring")
	}
}

func TestCentroid(t *testing.T) {
	c := Centroid([]Point{{Lat: 0, Lng: 0}, {Lat: 2, Lng: 4}})
	if c.Lat != 1 || c.Lng != 2 {
		t.Fatalf("unexpected centroid: %+v", c)
	}
	if Centroid(nil) != (Point{}) {
		t.Fatalf("expected zero centroid for empty input")
	}
}
