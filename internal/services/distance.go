package services

import (
	"context"
	"errors"
	"fmt"
	"geodistance-service/internal/domain"
	"geodistance-service/internal/platform/obs"
	"geodistance-service/internal/ports"
)

// DistanceFunc computes meters between two points on an ellipsoid.
type DistanceFunc func(lat1, lon1, lat2, lon2 float64, ellipsoid domain.Ellipsoid) (float64, error)

// DistanceService is the entry point for distance requests. Both endpoints
// must be coordinates, or both must be addresses.
type DistanceService struct {
	resolver ports.AddressResolver
	distance DistanceFunc
}

func NewDistanceService(resolver ports.AddressResolver) (*DistanceService, error) {
	if resolver == nil {
		return nil, errors.New("new distance service: resolver is nil")
	}
	return &DistanceService{resolver: resolver, distance: HubenyDistance}, nil
}

// RawDistance computes the distance between explicit coordinates.
func (s *DistanceService) RawDistance(lat1, lon1, lat2, lon2 float64, ellipsoid domain.Ellipsoid) (float64, error) {
	return s.distance(lat1, lon1, lat2, lon2, ellipsoid)
}

// ResolveAddress geocodes a single address.
func (s *DistanceService) ResolveAddress(ctx context.Context, address string) (domain.Coordinates, error) {
	return s.resolver.Resolve(ctx, address)
}

// GetDistance returns meters between from and to.
//
// Two coordinate endpoints are computed directly. Two address endpoints are
// resolved concurrently and the first failure is returned without waiting
// for the other resolution. Any other combination fails with
// domain.ErrInvalidArguments before any lookup.
func (s *DistanceService) GetDistance(ctx context.Context, from, to domain.Endpoint, ellipsoid domain.Ellipsoid) (_ float64, err error) {
	if fc, ok := from.Coordinates(); ok {
		tc, ok := to.Coordinates()
		if !ok {
			return 0, fmt.Errorf("get distance %s -> %s: %w", from, to, domain.ErrInvalidArguments)
		}
		return s.distance(fc.Lat, fc.Lon, tc.Lat, tc.Lon, ellipsoid)
	}

	fa, okFrom := from.Address()
	ta, okTo := to.Address()
	if !okFrom || !okTo {
		return 0, fmt.Errorf("get distance %s -> %s: %w", from, to, domain.ErrInvalidArguments)
	}
	if !ellipsoid.Valid() {
		return 0, fmt.Errorf("get distance: %w: %s", domain.ErrUnknownEllipsoid, ellipsoid)
	}

	defer obs.Time(ctx, "distance.GetDistance")(&err)

	fc, tc, err := s.resolvePair(ctx, fa, ta)
	if err != nil {
		return 0, fmt.Errorf("get distance %q -> %q: %w", fa, ta, err)
	}

	return s.distance(fc.Lat, fc.Lon, tc.Lat, tc.Lon, ellipsoid)
}

type resolved struct {
	index  int
	coords domain.Coordinates
	err    error
}

func (s *DistanceService) resolvePair(ctx context.Context, from, to string) (domain.Coordinates, domain.Coordinates, error) {
	// Buffered so a resolution finishing after an early return does not leak.
	resultsCh := make(chan resolved, 2)

	for i, addr := range [2]string{from, to} {
		go func() {
			c, err := s.resolver.Resolve(ctx, addr)
			resultsCh <- resolved{index: i, coords: c, err: err}
		}()
	}

	var out [2]domain.Coordinates
	for range 2 {
		res := <-resultsCh
		if res.err != nil {
			return domain.Coordinates{}, domain.Coordinates{}, res.err
		}
		out[res.index] = res.coords
	}

	return out[0], out[1], nil
}
