package services

import (
	"fmt"
	"geodistance-service/internal/domain"
	"math"
)

// Compute the distance in meters between two points using Hubeny's formula.
//
// The formula is a planar approximation around the mean latitude. It is
// accurate for regional distances and degrades for antipodal or
// pole-spanning pairs.
//
// Non-finite inputs fail with domain.ErrInvalidCoordinates; an ellipsoid
// outside the enum fails with domain.ErrUnknownEllipsoid.
func HubenyDistance(lat1, lon1, lat2, lon2 float64, ellipsoid domain.Ellipsoid) (float64, error) {
	from := domain.Coordinates{Lat: lat1, Lon: lon1}
	to := domain.Coordinates{Lat: lat2, Lon: lon2}
	if !from.Finite() || !to.Finite() {
		return 0, fmt.Errorf("hubeny distance %v -> %v: %w", from, to, domain.ErrInvalidCoordinates)
	}
	if !ellipsoid.Valid() {
		return 0, fmt.Errorf("hubeny distance: %w: %s", domain.ErrUnknownEllipsoid, ellipsoid)
	}

	if from == to {
		return 0, nil
	}

	p := ellipsoid.Params()
	e2 := p.EccentricitySquared()

	φ1 := toRadians(lat1)
	φ2 := toRadians(lat2)
	dφ := φ2 - φ1
	dλ := toRadians(lon2) - toRadians(lon1)
	φm := (φ1 + φ2) / 2

	sin, cos := math.Sincos(φm)
	w := 1 - e2*sin*sin
	m := p.SemiMajorAxis * (1 - e2) / math.Pow(w, 1.5) // meridional radius of curvature
	n := p.SemiMajorAxis / math.Sqrt(w)                // prime vertical radius of curvature

	return math.Hypot(m*dφ, n*cos*dλ), nil
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
