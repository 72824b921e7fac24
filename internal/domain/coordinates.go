package domain

import "math"

// Immutable geographic coordinates in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Build coordinates from a [lon, lat] pair as returned by GeoJSON APIs.
func FromLonLat(lon, lat float64) Coordinates { return Coordinates{Lat: lat, Lon: lon} }

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) LonLat() []float64 { return []float64{c.Lon, c.Lat} }

// Report whether both components are finite numbers.
func (c Coordinates) Finite() bool {
	return isFinite(c.Lat) && isFinite(c.Lon)
}

// Report whether the coordinates are finite and inside lat [-90,90], lon [-180,180].
func (c Coordinates) InRange() bool {
	return c.Finite() && c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
