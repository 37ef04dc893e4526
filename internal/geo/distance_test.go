package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_Identity(t *testing.T) {
	points := []Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: 46.378, Lng: 13.837},
		{Lat: -90, Lng: 180},
		{Lat: 89.9999, Lng: -179.9999},
	}
	for _, p := range points {
		assert.Zero(t, Distance(p, p), "distance(%v,%v)", p, p)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	pairs := []struct{ a, b Coordinate }{
		{Coordinate{0, 0}, Coordinate{0, 180}},
		{Coordinate{46.378, 13.837}, Coordinate{44.258, 14.121}},
		{Coordinate{-33.8688, 151.2093}, Coordinate{51.5074, -0.1278}},
		{Coordinate{90, 0}, Coordinate{-90, 0}},
	}
	for _, p := range pairs {
		assert.InDelta(t, Distance(p.a, p.b), Distance(p.b, p.a), 1e-6)
	}
}

func TestDistance_HalfCircumference(t *testing.T) {
	got := Distance(Coordinate{0, 0}, Coordinate{0, 180})
	want := math.Pi * EarthRadiusMeters
	assert.InDelta(t, want, got, 1)
	assert.InDelta(t, 20_015_000, got, 1_000)
}

func TestDistance_KnownPair(t *testing.T) {
	// Bled to Rab
	got := Distance(Coordinate{Lat: 46.378, Lng: 13.837}, Coordinate{Lat: 44.258, Lng: 14.121})
	assert.InDelta(t, 236_777, got, 5)
}

func TestDistance_NonNegative(t *testing.T) {
	for lat := -90.0; lat <= 90; lat += 30 {
		for lng := -180.0; lng <= 180; lng += 45 {
			assert.GreaterOrEqual(t, Distance(Coordinate{10, 20}, Coordinate{lat, lng}), 0.0)
		}
	}
}

func TestKilometers(t *testing.T) {
	assert.Equal(t, 1.5, Kilometers(1500))
}
