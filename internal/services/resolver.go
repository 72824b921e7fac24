package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"geodistance-service/internal/domain"
	"geodistance-service/internal/platform/obs"
	"geodistance-service/internal/ports"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// GeocodeCache is the in-process cache consulted before any lookup.
type GeocodeCache interface {
	Get(key string) (domain.Coordinates, bool)
	Set(key string, value domain.Coordinates, ttl time.Duration) error
}

const DefaultGeocodeTTL = 24 * time.Hour

// Resolver turns addresses into coordinates through a cache, an optional
// shared store, and the geocoding service.
//
// Only successful resolutions are cached. Concurrent lookups of the same
// uncached address share one geocoding call, which runs to completion even
// if every caller gives up waiting.
type Resolver struct {
	geocoder ports.Geocoder
	cache    GeocodeCache
	store    ports.GeocodeStore
	regions  domain.RegionFilter
	ttl      time.Duration
	group    singleflight.Group
}

type ResolverOption func(*Resolver)

// Reject addresses not starting with one of prefixes before any lookup.
func WithAllowedPrefixes(prefixes []string) ResolverOption {
	return func(r *Resolver) { r.regions = domain.NewRegionFilter(prefixes) }
}

// Consult and populate store between the cache and the geocoding service.
func WithStore(store ports.GeocodeStore) ResolverOption {
	return func(r *Resolver) { r.store = store }
}

func WithTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func NewResolver(geocoder ports.Geocoder, cache GeocodeCache, opts ...ResolverOption) (*Resolver, error) {
	if geocoder == nil {
		return nil, errors.New("new resolver: geocoder is nil")
	}
	if cache == nil {
		return nil, errors.New("new resolver: cache is nil")
	}

	r := &Resolver{
		geocoder: geocoder,
		cache:    cache,
		ttl:      DefaultGeocodeTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// NormalizeAddress trims surrounding whitespace. The result is both the
// cache key and the query sent to the geocoding service.
func NormalizeAddress(address string) string {
	return strings.TrimSpace(address)
}

// Resolve returns coordinates for address.
//
// Failures: domain.ErrAddressNotFound for an empty address,
// domain.ErrUnsupportedRegion when the allow-list rejects the address or the
// service returns no usable candidate, and *domain.TransportError when the
// service cannot be reached.
func (r *Resolver) Resolve(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	key := NormalizeAddress(address)
	if key == "" {
		return domain.Coordinates{}, fmt.Errorf("resolve address: empty address: %w", domain.ErrAddressNotFound)
	}

	if !r.regions.Allows(key) {
		return domain.Coordinates{}, fmt.Errorf("resolve address %q: not in an allowed region: %w", key, domain.ErrUnsupportedRegion)
	}

	if c, ok := r.cache.Get(key); ok {
		return c, nil
	}

	// The shared lookup outlives any single caller: abandoning ctx stops the
	// wait, not the request.
	ch := r.group.DoChan(key, func() (any, error) {
		return r.lookup(context.WithoutCancel(ctx), key)
	})

	select {
	case <-ctx.Done():
		return domain.Coordinates{}, fmt.Errorf("resolve address %q: %w", key, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.Coordinates{}, res.Err
		}
		return res.Val.(domain.Coordinates), nil
	}
}

func (r *Resolver) lookup(ctx context.Context, key string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "resolver.lookup")(&err)

	if c, ok := r.fromStore(ctx, key); ok {
		if err := r.cache.Set(key, c, r.ttl); err != nil {
			return domain.Coordinates{}, fmt.Errorf("resolve address %q: %w", key, err)
		}
		return c, nil
	}

	features, err := r.geocoder.Search(ctx, key)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("resolve address %q: %w", key, err)
	}

	c, err := firstCandidate(features)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("resolve address %q: %w", key, err)
	}

	if err := r.cache.Set(key, c, r.ttl); err != nil {
		return domain.Coordinates{}, fmt.Errorf("resolve address %q: %w", key, err)
	}

	if r.store != nil {
		if err := r.store.Put(ctx, key, c, r.ttl); err != nil {
			log.Printf("req_id=%s geocode store write failed: address=%q err=%v", obs.RequestID(ctx), key, err)
		}
	}

	return c, nil
}

// Store errors never fail a resolution; the geocoding service is the source of truth.
func (r *Resolver) fromStore(ctx context.Context, key string) (domain.Coordinates, bool) {
	if r.store == nil {
		return domain.Coordinates{}, false
	}

	c, ok, err := r.store.Get(ctx, key)
	if err != nil {
		log.Printf("req_id=%s geocode store read failed: address=%q err=%v", obs.RequestID(ctx), key, err)
		return domain.Coordinates{}, false
	}
	if !ok || !c.Finite() {
		return domain.Coordinates{}, false
	}
	return c, true
}

// firstCandidate validates the most relevant feature. Every malformed shape
// is reported as domain.ErrUnsupportedRegion.
func firstCandidate(features []ports.GeocodeFeature) (domain.Coordinates, error) {
	if len(features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results: %w", domain.ErrUnsupportedRegion)
	}

	g := features[0].Geometry
	if g == nil {
		return domain.Coordinates{}, fmt.Errorf("geocode result has no geometry: %w", domain.ErrUnsupportedRegion)
	}
	if len(g.Coordinates) < 2 {
		return domain.Coordinates{}, fmt.Errorf("geocode result has %d coordinate components: %w", len(g.Coordinates), domain.ErrUnsupportedRegion)
	}

	// GeoJSON order is [lon, lat].
	lon, okLon := numeric(g.Coordinates[0])
	lat, okLat := numeric(g.Coordinates[1])
	if !okLon || !okLat {
		return domain.Coordinates{}, fmt.Errorf("geocode result has non-numeric coordinates: %w", domain.ErrUnsupportedRegion)
	}

	c := domain.FromLonLat(lon, lat)
	if !c.InRange() {
		return domain.Coordinates{}, fmt.Errorf("geocode result has out-of-range coordinates %v: %w", c, domain.ErrUnsupportedRegion)
	}
	return c, nil
}

func numeric(raw json.RawMessage) (float64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" || s[0] == '"' {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}
